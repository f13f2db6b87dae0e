package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/rcgateway/internal/metrics"
	"github.com/nao1215/rcgateway/internal/rclone"
	"github.com/nao1215/rcgateway/pkg/middleware"
)

// DefaultBind はゲートウェイのデフォルトのリッスンアドレス。
const DefaultBind = "127.0.0.1:3001"

// defaultShutdownTimeout はグレースフルシャットダウンの待ち時間。
const defaultShutdownTimeout = 10 * time.Second

// Backend はゲートウェイが呼び出すrclone RC APIの操作。
// *rclone.Clientがこれを実装する。
type Backend interface {
	HealthCheck(ctx context.Context) error
	ListRemotes(ctx context.Context) ([]string, error)
	ListFiles(ctx context.Context, fs, remote string) ([]rclone.FileInfo, error)
	ConfigDump(ctx context.Context) (map[string]any, error)
	ListJobs(ctx context.Context) ([]rclone.JobInfo, error)
	JobStatus(ctx context.Context, id int64) (*rclone.JobStatus, error)
	ListMounts(ctx context.Context) ([]rclone.MountInfo, error)
	CreateMount(ctx context.Context, fs, mountPoint string) error
	Unmount(ctx context.Context, mountPoint string) error
	CopyFile(ctx context.Context, t rclone.Transfer) error
	MoveFile(ctx context.Context, t rclone.Transfer) error
	DeleteFile(ctx context.Context, fs, remote string) error
	CreateDirectory(ctx context.Context, fs, remote string) error
	Version(ctx context.Context) (*rclone.VersionInfo, error)
}

// Config はゲートウェイのHTTPサーバー設定。
type Config struct {
	// Bind はリッスンアドレス（host:port）。
	Bind string
	// AllowedOrigins はCORSで許可するオリジン。空の場合はすべて許可する。
	AllowedOrigins []string
	// ShutdownTimeout はシャットダウン時に処理中のリクエストを待つ時間。
	ShutdownTimeout time.Duration
}

// Server はゲートウェイのHTTPサーバー。
// backendは起動時に注入され、全リクエストから読み取り専用で共有される。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// bind はサーバーのリッスンアドレス。
	bind string
	// backend はrclone RC APIのクライアント。
	backend Backend
	// logger は構造化ロガー。
	logger *zap.Logger
	// shutdownTimeout はグレースフルシャットダウンの待ち時間。
	shutdownTimeout time.Duration
}

// NewServer は新しいゲートウェイサーバーを生成する。
func NewServer(cfg Config, backend Backend, logger *zap.Logger) *Server {
	if cfg.Bind == "" {
		cfg.Bind = DefaultBind
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{middleware.AllowAllOrigins}
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:          router,
		bind:            cfg.Bind,
		backend:         backend,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.setupRoutes()

	return s
}

// Handler はルーティング済みのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるまでリクエストを処理する。
// キャンセル後は処理中のリクエストの完了を待ってから戻る。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ゲートウェイを起動します", zap.String("bind", s.bind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("ゲートウェイを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		// 参照系
		api.GET("/remotes", s.handleListRemotes())
		api.GET("/files", s.handleListFiles())
		api.GET("/config", s.handleConfigDump())
		api.GET("/jobs", s.handleListJobs())
		api.GET("/jobs/:id", s.handleJobStatus())
		api.GET("/mounts", s.handleListMounts())
		api.GET("/version", s.handleVersion())

		// マウント
		api.POST("/mount", s.handleCreateMount())
		api.POST("/unmount", s.handleUnmount())

		// ファイル操作
		api.POST("/copy", s.handleCopyFile())
		api.POST("/move", s.handleMoveFile())
		api.POST("/delete", s.handleDeleteFile())
		api.POST("/mkdir", s.handleCreateDirectory())
	}

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())

	// Prometheusメトリクス
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
