package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Form はリクエストのフォーム値。
	Form url.Values
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のレスポンスペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("末尾のスラッシュが取り除かれること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080/")
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:8080")
		}
	})

	t.Run("タイムアウトのデフォルトが30秒であること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if got := client.client.GetClient().Timeout; got != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", got)
		}
	})

	t.Run("WithTimeoutでタイムアウトを変更できること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080", WithTimeout(5*time.Second))
		if got := client.client.GetClient().Timeout; got != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", got)
		}
	})
}

// TestPostForm はPostForm関数を検証する。
func TestPostForm(t *testing.T) {
	t.Parallel()

	t.Run("フォームを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Path = r.URL.Path
			received.Headers = r.Header
			if err := r.ParseForm(); err != nil {
				t.Errorf("フォームのパースに失敗: %v", err)
			}
			received.Form = r.PostForm

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "response", Value: 201})
		}))
		defer ts.Close()

		client := New(ts.URL, WithBasicAuth("AC123", "secret"))
		form := url.Values{}
		form.Set("To", "+573001234567")
		form.Set("Body", "hello")
		var result testPayload

		if err := client.PostForm(context.Background(), "/Messages.json", form, &result); err != nil {
			t.Fatalf("PostForm()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/Messages.json" {
			t.Errorf("Path = %q, want %q", received.Path, "/Messages.json")
		}
		if got := received.Form.Get("To"); got != "+573001234567" {
			t.Errorf("To = %q, want %q", got, "+573001234567")
		}
		if got := received.Form.Get("Body"); got != "hello" {
			t.Errorf("Body = %q, want %q", got, "hello")
		}
		if result.Name != "response" || result.Value != 201 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("Basic認証ヘッダーが送信されること", func(t *testing.T) {
		t.Parallel()

		var user, pass string
		var ok bool
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok = r.BasicAuth()
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := New(ts.URL, WithBasicAuth("AC123", "secret"))
		if err := client.PostForm(context.Background(), "/", url.Values{}, nil); err != nil {
			t.Fatalf("PostForm()でエラーが発生: %v", err)
		}
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("BasicAuth = (%q, %q, %v), want (%q, %q, true)", user, pass, ok, "AC123", "secret")
		}
	})

	t.Run("2xx以外の場合にStatusErrorが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"Too Many Requests"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.PostForm(context.Background(), "/", url.Values{}, nil)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("StatusErrorが返るべき: %v", err)
		}
		if statusErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusTooManyRequests)
		}
		if string(statusErr.Body) != `{"message":"Too Many Requests"}` {
			t.Errorf("Body = %q", string(statusErr.Body))
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
		if err := client.PostForm(context.Background(), "/", url.Values{}, &result); err == nil {
			t.Fatal("PostForm()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("接続できないサーバーに対してエラーが返ること", func(t *testing.T) {
		t.Parallel()

		client := New("http://127.0.0.1:1")
		err := client.PostForm(context.Background(), "/", url.Values{}, nil)
		if err == nil {
			t.Fatal("PostForm()がエラーを返すべきだが、nilが返った")
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			t.Errorf("接続エラーはStatusErrorであるべきではない: %v", err)
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := client.PostForm(ctx, "/", url.Values{}, nil); err == nil {
			t.Fatal("PostForm()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestWithRequestID はリクエストIDの伝播を検証する。
func TestWithRequestID(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストのリクエストIDがヘッダーで伝播されること", func(t *testing.T) {
		t.Parallel()

		var receivedID string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedID = r.Header.Get("X-Request-ID")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		ctx := WithRequestID(context.Background(), "req-123")
		if err := client.PostForm(ctx, "/", url.Values{}, nil); err != nil {
			t.Fatalf("PostForm()でエラーが発生: %v", err)
		}
		if receivedID != "req-123" {
			t.Errorf("X-Request-ID = %q, want %q", receivedID, "req-123")
		}
	})

	t.Run("リクエストIDが未設定の場合はヘッダーが空であること", func(t *testing.T) {
		t.Parallel()

		var receivedID string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedID = r.Header.Get("X-Request-ID")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		if err := client.PostForm(context.Background(), "/", url.Values{}, nil); err != nil {
			t.Fatalf("PostForm()でエラーが発生: %v", err)
		}
		if receivedID != "" {
			t.Errorf("X-Request-ID = %q, want empty", receivedID)
		}
	})

	t.Run("空のリクエストIDは取得できないこと", func(t *testing.T) {
		t.Parallel()

		ctx := WithRequestID(context.Background(), "")
		if _, ok := RequestIDFromContext(ctx); ok {
			t.Error("空のリクエストIDが取得できてしまった")
		}
	})
}
