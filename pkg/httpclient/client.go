package httpclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout はバックエンド呼び出しのデフォルトタイムアウト。
const defaultTimeout = 30 * time.Second

// Client はバックエンドのRPC-over-HTTP APIを呼び出すためのHTTPクライアント。
// 生成後は変更されないため、複数のgoroutineから同時に利用できる。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先のベースURL。末尾のスラッシュは除去済み。
	baseURL string
	// authHeader はAuthorizationヘッダーの値。認証情報が無い場合は空文字列。
	authHeader string
}

// Option はClientの生成時オプション。
type Option func(*Client)

// WithBasicAuth はBasic認証の資格情報を設定する。
// usernameとpasswordの両方が空でない場合にのみAuthorizationヘッダーを送信する。
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		if username == "" || password == "" {
			c.authHeader = ""
			return
		}
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		c.authHeader = "Basic " + credentials
	}
}

// WithTimeout は1回の呼び出しに適用するタイムアウトを設定する。
// 0以下の値は無視する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "http://localhost:5572"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON は指定エンドポイントにPOSTリクエストを送信する。
// bodyがnilの場合はリクエストボディを送らない。
// resultがnilでなければレスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, endpoint string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	// コンテキストからリクエストIDを伝播する
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
		// 1つ目のJSON値の後ろに余計なデータがあれば不正なレスポンスとする
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return errors.New("レスポンスボディのデシリアライズに失敗: JSON値の後ろに余分なデータがあります")
		}
	}
	return nil
}

// StatusError はバックエンドが2xx以外のステータスを返したことを表すエラー。
type StatusError struct {
	// StatusCode はバックエンドが返したHTTPステータスコード。
	StatusCode int
	// Body はバックエンドが返したレスポンスボディ。
	Body string
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, e.Body)
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// バックエンド呼び出し時にX-Request-IDヘッダーとして伝播される。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}
