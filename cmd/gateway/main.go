// rcgatewayのエントリポイント。
// rclone RC APIの前段でブラウザ向けのHTTP APIを提供する。
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nao1215/rcgateway/internal/gateway"
	"github.com/nao1215/rcgateway/internal/rclone"
	"github.com/nao1215/rcgateway/pkg/logging"
)

// Version はビルド時に-ldflagsで埋め込まれる。
var Version = "dev"

// 環境変数名。
const (
	envRcloneURL  = "RCLONE_RC_URL"
	envRcloneUser = "RCLONE_RC_USER"
	envRclonePass = "RCLONE_RC_PASS"
)

const (
	defaultRcloneURL = "http://localhost:5572"
	defaultTimeout   = 30 * time.Second
	defaultShutdown  = 10 * time.Second
	probeTimeout     = 5 * time.Second
)

// options はコマンドラインから受け取る設定。
type options struct {
	bind            string
	rcloneURL       string
	username        string
	password        string
	timeout         time.Duration
	allowedOrigins  []string
	shutdownTimeout time.Duration
	logLevel        string
	logFormat       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd はルートコマンドを生成する。
func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "rcgateway",
		Short:   "rclone RC APIのHTTPゲートウェイ",
		Version: Version,
		Long: `rcgatewayはrclone RC APIの前段に立ち、ブラウザから扱いやすい
REST形式のAPIを提供します。バックエンドの失敗はすべてボディ無しの500として返します。`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyEnv(cmd, opts, os.LookupEnv)
			if err := opts.validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.bind, "bind", "b", gateway.DefaultBind, "リッスンアドレス（host:port）")
	flags.StringVarP(&opts.rcloneURL, "rclone-url", "r", defaultRcloneURL, "rclone RCサーバーのURL（環境変数 "+envRcloneURL+"）")
	flags.StringVarP(&opts.username, "username", "u", "", "rclone RCのユーザー名（環境変数 "+envRcloneUser+"）")
	flags.StringVarP(&opts.password, "password", "P", "", "rclone RCのパスワード（環境変数 "+envRclonePass+"）")
	flags.DurationVar(&opts.timeout, "timeout", defaultTimeout, "バックエンド呼び出しのタイムアウト")
	flags.StringSliceVar(&opts.allowedOrigins, "allowed-origin", []string{"*"}, "CORSで許可するオリジン（複数指定可、*ですべて許可）")
	flags.DurationVar(&opts.shutdownTimeout, "shutdown-timeout", defaultShutdown, "停止時に処理中のリクエストを待つ時間")
	flags.StringVar(&opts.logLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	flags.StringVar(&opts.logFormat, "log-format", "console", "ログ形式（json, console）")

	return cmd
}

// applyEnv はフラグで明示されなかった項目を環境変数で補う。
func applyEnv(cmd *cobra.Command, opts *options, lookup func(string) (string, bool)) {
	bindings := []struct {
		flag string
		env  string
		dst  *string
	}{
		{flag: "rclone-url", env: envRcloneURL, dst: &opts.rcloneURL},
		{flag: "username", env: envRcloneUser, dst: &opts.username},
		{flag: "password", env: envRclonePass, dst: &opts.password},
	}
	for _, b := range bindings {
		if cmd.Flags().Changed(b.flag) {
			continue
		}
		if v, ok := lookup(b.env); ok && v != "" {
			*b.dst = v
		}
	}
}

// validate は起動前に設定値を検証する。
func (o *options) validate() error {
	host, port, err := net.SplitHostPort(o.bind)
	if err != nil {
		return fmt.Errorf("リッスンアドレスが不正です（host:port形式で指定してください）: %q: %w", o.bind, err)
	}
	if host == "" || port == "" {
		return fmt.Errorf("リッスンアドレスにはホストとポートの両方が必要です: %q", o.bind)
	}

	u, err := url.Parse(o.rcloneURL)
	if err != nil {
		return fmt.Errorf("rclone RCのURLが不正です: %q: %w", o.rcloneURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("rclone RCのURLはhttp(s)の絶対URLで指定してください: %q", o.rcloneURL)
	}

	if o.timeout <= 0 {
		return fmt.Errorf("タイムアウトは正の値で指定してください: %s", o.timeout)
	}
	if o.shutdownTimeout <= 0 {
		return fmt.Errorf("シャットダウンのタイムアウトは正の値で指定してください: %s", o.shutdownTimeout)
	}
	for _, origin := range o.allowedOrigins {
		if origin == "" {
			return errors.New("許可するオリジンに空文字列は指定できません")
		}
	}
	return nil
}

// serverConfig はHTTPサーバーの設定を組み立てる。
func (o *options) serverConfig() gateway.Config {
	return gateway.Config{
		Bind:            o.bind,
		AllowedOrigins:  o.allowedOrigins,
		ShutdownTimeout: o.shutdownTimeout,
	}
}

// run はロガーとバックエンドを初期化し、ctxがキャンセルされるまでゲートウェイを動かす。
func run(ctx context.Context, opts *options) error {
	if err := logging.Init(logging.Config{Level: opts.logLevel, Format: opts.logFormat}); err != nil {
		return fmt.Errorf("ロガーの初期化に失敗: %w", err)
	}
	defer func() { _ = logging.Sync() }()
	logger := logging.L()

	gin.SetMode(gin.ReleaseMode)

	backend := rclone.New(rclone.Config{
		URL:      opts.rcloneURL,
		Username: opts.username,
		Password: opts.password,
		Timeout:  opts.timeout,
	})
	probeBackend(ctx, backend, logger)

	server := gateway.NewServer(opts.serverConfig(), backend, logger)
	return server.Run(ctx)
}

// probeBackend はバックエンドのバージョンを問い合わせてログに残す。
// 失敗しても起動は続ける。
func probeBackend(ctx context.Context, backend *rclone.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	version, err := backend.Version(ctx)
	if err != nil {
		logger.Warn("rclone RCサーバーに接続できません",
			zap.String("url", backend.URL()),
			zap.Error(err),
		)
		return
	}
	logger.Info("rclone RCサーバーに接続しました",
		zap.String("url", backend.URL()),
		zap.String("version", version.Version),
	)
}
