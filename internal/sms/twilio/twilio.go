// Package twilio はTwilio Messaging APIを使ったSMS送信ゲートウェイを提供する。
//
// 送信前に電話番号の形式を検証し、Twilio側のエラーや予期しないエラーを
// すべて失敗結果に変換する。プロセス起動時に一度だけ資格情報を設定し、
// 以降は読み取り専用として扱う。
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/order-notify/internal/domain"
	"github.com/nao1215/order-notify/internal/sms"
	"github.com/nao1215/order-notify/pkg/httpclient"
	"go.uber.org/zap"
)

// DefaultBaseURL はTwilio REST APIのベースURL。
const DefaultBaseURL = "https://api.twilio.com"

// ErrMissingCredentials は資格情報が設定されていないことを表す。
var ErrMissingCredentials = errors.New("twilio: 資格情報が設定されていません")

// Config はTwilioゲートウェイの設定。
type Config struct {
	// AccountSID はTwilioのアカウントSID。
	AccountSID string
	// AuthToken はTwilioの認証トークン。
	AuthToken string
	// MessagingServiceSID は送信に使うMessaging ServiceのSID。
	MessagingServiceSID string
	// BaseURL はREST APIのベースURL。空の場合はDefaultBaseURLを使う。
	BaseURL string
	// Timeout は1回の送信リクエストのタイムアウト。
	Timeout time.Duration
}

func (c Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.AccountSID) == "" {
		missing = append(missing, "account SID")
	}
	if strings.TrimSpace(c.AuthToken) == "" {
		missing = append(missing, "auth token")
	}
	if strings.TrimSpace(c.MessagingServiceSID) == "" {
		missing = append(missing, "messaging service SID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Gateway はTwilioを使ったdomain.SMSGatewayの実装。
type Gateway struct {
	// client はTwilio REST APIへのHTTPクライアント。
	client *httpclient.Client
	// messagesPath はアカウントのMessagesリソースのパス。
	messagesPath string
	// messagingServiceSID は送信に使うMessaging ServiceのSID。
	messagingServiceSID string
	// logger は送信結果を記録するロガー。
	logger *zap.Logger
}

var _ domain.SMSGateway = (*Gateway)(nil)

// New はTwilioゲートウェイを生成する。
// 資格情報が欠けている場合はErrMissingCredentialsを返し、ゲートウェイは生成しない。
func New(cfg Config, logger *zap.Logger) (*Gateway, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := httpclient.New(baseURL,
		httpclient.WithBasicAuth(cfg.AccountSID, cfg.AuthToken),
		httpclient.WithTimeout(cfg.Timeout),
	)

	logger.Info("Twilio SMSクライアントを初期化しました")
	return &Gateway{
		client:              client,
		messagesPath:        "/2010-04-01/Accounts/" + url.PathEscape(cfg.AccountSID) + "/Messages.json",
		messagingServiceSID: cfg.MessagingServiceSID,
		logger:              logger,
	}, nil
}

// messageResponse はMessagesリソース作成時のレスポンスのうち使用する項目。
type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// APIError はTwilioが返すエラーレスポンス。
type APIError struct {
	// Code はTwilioのエラーコード（例: 21211）。
	Code int `json:"code"`
	// Message はエラーの説明。
	Message string `json:"message"`
	// MoreInfo はエラーの詳細ドキュメントのURL。
	MoreInfo string `json:"more_info"`
	// Status はHTTPステータスコード。
	Status int `json:"status"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}

// SendSMS は電話番号の形式を検証したうえでTwilioにSMSを送信する。
// エラーは返さず、すべて失敗結果として返す。
func (g *Gateway) SendSMS(ctx context.Context, phoneNumber, body string) (result domain.NotificationResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Unexpected error sending SMS: %v", r)
			g.logger.Error("SMS送信中に予期しないエラーが発生", zap.Any("panic", r))
			result = domain.Failure(msg)
		}
	}()

	if !sms.ValidPhoneNumber(phoneNumber) {
		g.logger.Warn("電話番号の形式が不正です", zap.String("phone_number", phoneNumber))
		return domain.Failure(sms.InvalidPhoneNumberMessage)
	}

	g.logger.Info("SMSを送信します", zap.String("phone_number", phoneNumber))

	form := url.Values{}
	form.Set("To", phoneNumber)
	form.Set("MessagingServiceSid", g.messagingServiceSID)
	form.Set("Body", body)

	var resp messageResponse
	if err := g.client.PostForm(ctx, g.messagesPath, form, &resp); err != nil {
		if apiErr, ok := toAPIError(err); ok {
			msg := "Twilio API Error: " + apiErr.Error()
			g.logger.Error("Twilio APIエラー", zap.Int("code", apiErr.Code), zap.Int("status", apiErr.Status), zap.Error(apiErr))
			return domain.Failure(msg)
		}
		g.logger.Error("SMS送信中に予期しないエラーが発生", zap.Error(err))
		return domain.Failure("Unexpected error sending SMS: " + err.Error())
	}

	if resp.SID == "" {
		g.logger.Error("TwilioのレスポンスにSIDが含まれていません")
		return domain.Failure("Unexpected error sending SMS: missing message SID in provider response")
	}

	g.logger.Info("SMSを送信しました", zap.String("sid", resp.SID), zap.String("status", resp.Status))
	return domain.Success(resp.SID)
}

// toAPIError はTwilioが2xx以外で返したレスポンスをAPIErrorに変換する。
// ボディがTwilioのエラー形式でない場合もステータスコードからAPIErrorを組み立てる。
func toAPIError(err error) (*APIError, bool) {
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return nil, false
	}

	apiErr := &APIError{}
	if jsonErr := json.Unmarshal(statusErr.Body, apiErr); jsonErr != nil || apiErr.Message == "" {
		apiErr = &APIError{
			Message: fmt.Sprintf("provider returned status %d", statusErr.StatusCode),
		}
	}
	if apiErr.Status == 0 {
		apiErr.Status = statusErr.StatusCode
	}
	return apiErr, true
}
