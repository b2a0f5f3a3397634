// Package config は環境変数からサービスの設定を読み込む。
//
// カレントディレクトリに.envファイルがあれば先に読み込み、
// 既に設定されている環境変数は上書きしない。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SMSプロバイダーの種類。
const (
	ProviderTwilio = "twilio"
	ProviderMemory = "memory"
)

// Config はサービス全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// JWTSecret はトークン検証用の事前共有鍵。
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	// SMSProvider は使用するSMSプロバイダー（twilio または memory）。
	SMSProvider string `env:"SMS_PROVIDER" envDefault:"twilio"`
	// Twilio はTwilioの接続設定。
	Twilio TwilioConfig `envPrefix:"TWILIO_"`
	// CORSAllowedOrigins はCORSを許可するオリジンの一覧。
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// NotifyAllowedRoles は通知の送信を許可するロールの一覧。空の場合はロールを問わない。
	NotifyAllowedRoles []string `env:"NOTIFY_ALLOWED_ROLES" envSeparator:","`
	// DevTokenEnabled は開発用トークン発行エンドポイントを有効にするかどうか。
	DevTokenEnabled bool `env:"DEV_TOKEN_ENABLED" envDefault:"false"`
	// DevTokenTTL は開発用トークンの有効期間。
	DevTokenTTL time.Duration `env:"DEV_TOKEN_TTL" envDefault:"1h"`
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// TwilioConfig はTwilioの接続設定。
type TwilioConfig struct {
	AccountSID          string        `env:"ACCOUNT_SID"`
	AuthToken           string        `env:"AUTH_TOKEN"`
	MessagingServiceSID string        `env:"MESSAGING_SERVICE_SID"`
	BaseURL             string        `env:"BASE_URL" envDefault:"https://api.twilio.com"`
	Timeout             time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Load は.envファイルと環境変数から設定を読み込む。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".envファイルの読み込みに失敗: %w", err)
	}
	return Parse()
}

// Parse は環境変数のみから設定を読み込み、値の整合性を検証する。
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}

	cfg.SMSProvider = strings.ToLower(strings.TrimSpace(cfg.SMSProvider))
	switch cfg.SMSProvider {
	case ProviderTwilio, ProviderMemory:
	default:
		return nil, fmt.Errorf("SMS_PROVIDERの値が不正です: %q", cfg.SMSProvider)
	}

	cfg.CORSAllowedOrigins = compact(cfg.CORSAllowedOrigins)
	cfg.NotifyAllowedRoles = compact(cfg.NotifyAllowedRoles)

	return &cfg, nil
}

// compact は各要素の前後の空白を除き、空の要素を取り除く。
func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
