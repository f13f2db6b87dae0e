package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のリクエスト/レスポンスペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// newRecordingServer は受信したリクエストを記録し、固定のJSONを返すテストサーバーを生成する。
func newRecordingServer(t *testing.T, received *testRequest) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Method = r.Method
		received.Path = r.URL.Path
		received.Body, _ = io.ReadAll(r.Body)
		received.Headers = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testPayload{Name: "response", Value: 200})
	}))
	t.Cleanup(ts.Close)
	return ts
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5572")
		if client == nil {
			t.Fatal("New()がnilを返した")
		}
		if client.BaseURL() != "http://localhost:5572" {
			t.Errorf("baseURL = %q, want %q", client.BaseURL(), "http://localhost:5572")
		}
		if client.httpClient == nil {
			t.Fatal("httpClientがnil")
		}
	})

	t.Run("末尾のスラッシュが除去されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5572//")
		if client.BaseURL() != "http://localhost:5572" {
			t.Errorf("baseURL = %q, want %q", client.BaseURL(), "http://localhost:5572")
		}
	})

	t.Run("タイムアウトのデフォルトが30秒であること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5572")
		if client.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})

	t.Run("WithTimeoutでタイムアウトを変更できること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5572", WithTimeout(5*time.Second))
		if client.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", client.httpClient.Timeout)
		}
	})

	t.Run("WithTimeoutに0を渡した場合はデフォルトのままであること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5572", WithTimeout(0))
		if client.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にPOSTリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL)
		body := testPayload{Name: "request", Value: 100}
		var result testPayload

		err := client.PostJSON(context.Background(), "operations/list", body, &result)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		// リクエストの検証
		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/operations/list" {
			t.Errorf("Path = %q, want %q", received.Path, "/operations/list")
		}

		var sentBody testPayload
		if err := json.Unmarshal(received.Body, &sentBody); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sentBody.Name != "request" || sentBody.Value != 100 {
			t.Errorf("sent body = %+v, want {request 100}", sentBody)
		}

		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		// レスポンスの検証
		if result.Name != "response" || result.Value != 200 {
			t.Errorf("result = %+v, want {response 200}", result)
		}
	})

	t.Run("先頭にスラッシュのあるエンドポイントでもパスが重複しないこと", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL + "/")
		if err := client.PostJSON(context.Background(), "/rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if received.Path != "/rc/noopauth" {
			t.Errorf("Path = %q, want %q", received.Path, "/rc/noopauth")
		}
	})

	t.Run("bodyがnilの場合はリクエストボディが送信されないこと", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL)
		var result testPayload
		if err := client.PostJSON(context.Background(), "config/listremotes", nil, &result); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if len(received.Body) != 0 {
			t.Errorf("リクエストボディが送信されている: %q", string(received.Body))
		}
	})

	t.Run("サーバーが400エラーを返した場合にStatusErrorが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad request"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload

		err := client.PostJSON(context.Background(), "operations/list", testPayload{}, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("エラーがStatusErrorではない: %v", err)
		}
		if statusErr.StatusCode != http.StatusBadRequest {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusBadRequest)
		}
		if statusErr.Body != `{"error":"bad request"}` {
			t.Errorf("Body = %q, want %q", statusErr.Body, `{"error":"bad request"}`)
		}
	})

	t.Run("サーバーが500エラーを返した場合にエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"internal server error"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.PostJSON(context.Background(), "operations/list", testPayload{}, nil)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("resultがnilの場合でもエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.PostJSON(context.Background(), "operations/mkdir", testPayload{Name: "no-result", Value: 1}, nil)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
	})

	t.Run("不正なJSONレスポンスでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{invalid json}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload

		err := client.PostJSON(context.Background(), "operations/list", nil, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("JSON値の後ろに余分なデータがあるとエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"response","value":200} trailing`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload

		err := client.PostJSON(context.Background(), "mount/mount", nil, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("末尾の空白や改行は許容されること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("{\"name\":\"response\",\"value\":200}\n  \n"))
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload

		if err := client.PostJSON(context.Background(), "operations/list", nil, &result); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if result.Name != "response" || result.Value != 200 {
			t.Errorf("result = %+v, want {response 200}", result)
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // 即座にキャンセル

		var result testPayload
		err := client.PostJSON(ctx, "operations/list", testPayload{Name: "cancelled"}, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("接続できないサーバーに対してエラーが返ること", func(t *testing.T) {
		t.Parallel()

		// 存在しないサーバーに接続を試みる
		client := New("http://127.0.0.1:1")
		var result testPayload

		err := client.PostJSON(context.Background(), "rc/noopauth", nil, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestWithBasicAuth はBasic認証ヘッダーの付与を検証する。
func TestWithBasicAuth(t *testing.T) {
	t.Parallel()

	t.Run("ユーザー名とパスワードが両方ある場合にAuthorizationヘッダーが送信されること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL, WithBasicAuth("admin", "secret"))
		if err := client.PostJSON(context.Background(), "rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		// base64("admin:secret") = YWRtaW46c2VjcmV0
		if got := received.Headers.Get("Authorization"); got != "Basic YWRtaW46c2VjcmV0" {
			t.Errorf("Authorization = %q, want %q", got, "Basic YWRtaW46c2VjcmV0")
		}
	})

	t.Run("パスワードが空の場合はAuthorizationヘッダーが送信されないこと", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL, WithBasicAuth("admin", ""))
		if err := client.PostJSON(context.Background(), "rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if _, ok := received.Headers["Authorization"]; ok {
			t.Errorf("Authorizationヘッダーが送信されている: %q", received.Headers.Get("Authorization"))
		}
	})

	t.Run("ユーザー名が空の場合はAuthorizationヘッダーが送信されないこと", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL, WithBasicAuth("", "secret"))
		if err := client.PostJSON(context.Background(), "rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if _, ok := received.Headers["Authorization"]; ok {
			t.Errorf("Authorizationヘッダーが送信されている: %q", received.Headers.Get("Authorization"))
		}
	})

	t.Run("認証情報を設定しない場合はAuthorizationヘッダーが送信されないこと", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL)
		if err := client.PostJSON(context.Background(), "rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if _, ok := received.Headers["Authorization"]; ok {
			t.Errorf("Authorizationヘッダーが送信されている: %q", received.Headers.Get("Authorization"))
		}
	})
}

// TestWithRequestID はWithRequestID関数を検証する。
func TestWithRequestID(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストのリクエストIDがX-Request-IDとして伝播されること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL)
		ctx := WithRequestID(context.Background(), "propagated-request-id")

		if err := client.PostJSON(ctx, "rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if got := received.Headers.Get("X-Request-ID"); got != "propagated-request-id" {
			t.Errorf("X-Request-ID = %q, want %q", got, "propagated-request-id")
		}
	})

	t.Run("WithRequestIDが設定されていない場合X-Request-IDヘッダーが空であること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := newRecordingServer(t, &received)

		client := New(ts.URL)
		if err := client.PostJSON(context.Background(), "rc/noopauth", nil, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if got := received.Headers.Get("X-Request-ID"); got != "" {
			t.Errorf("X-Request-ID = %q, want empty string", got)
		}
	})
}

// TestPostJSON_SerializationError はシリアライズ不可能なボディでエラーが返ることを検証する。
func TestPostJSON_SerializationError(t *testing.T) {
	t.Parallel()

	var received testRequest
	ts := newRecordingServer(t, &received)

	client := New(ts.URL)
	// json.Marshalでエラーになるチャネル型を渡す
	body := make(chan int)
	var result testPayload

	err := client.PostJSON(context.Background(), "operations/list", body, &result)
	if err == nil {
		t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
	}
}
