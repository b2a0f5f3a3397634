package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// defaultTimeout はリクエスト全体のデフォルトタイムアウト。
const defaultTimeout = 30 * time.Second

// headerKeyRequestID はリクエストIDを伝播するためのHTTPヘッダーキー。
const headerKeyRequestID = "X-Request-ID"

// Client は外部API呼び出し用のHTTPクライアント。
// リトライは行わない。
type Client struct {
	// client は内部で使用するrestyクライアント。
	client *resty.Client
	// baseURL は接続先のベースURL。
	baseURL string
}

// Option はClientの生成オプション。
type Option func(*resty.Client)

// WithTimeout はリクエストのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithBasicAuth はBasic認証の資格情報を設定する。
func WithBasicAuth(username, password string) Option {
	return func(c *resty.Client) {
		c.SetBasicAuth(username, password)
	}
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "https://api.twilio.com"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New()
	rc.SetTimeout(defaultTimeout)
	rc.SetRetryCount(0)
	rc.SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}

	return &Client{
		client:  rc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// StatusError は2xx以外のレスポンスを表すエラー。
type StatusError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// PostForm は指定パスにフォーム形式でPOSTリクエストを送信する。
// 2xxの場合はレスポンスボディをresultにデシリアライズし、それ以外は*StatusErrorを返す。
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, result any) error {
	req := c.client.R().
		SetContext(ctx).
		SetFormDataFromValues(form)

	if requestID, ok := RequestIDFromContext(ctx); ok {
		req.SetHeader(headerKeyRequestID, requestID)
	}

	resp, err := req.Post(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}

	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 外部API呼び出し時にX-Request-IDヘッダーとして伝播される。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFromContext はコンテキストからリクエストIDを取得する。
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(contextKeyRequestID).(string)
	if !ok || requestID == "" {
		return "", false
	}
	return requestID, true
}
