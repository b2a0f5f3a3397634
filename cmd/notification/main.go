// 注文準備完了通知サービスのエントリポイント。
// 認証済みの呼び出し元からの依頼を受け、顧客へSMSで受け取り用PINを通知する。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nao1215/order-notify/internal/config"
	"github.com/nao1215/order-notify/internal/domain"
	"github.com/nao1215/order-notify/internal/notification"
	"github.com/nao1215/order-notify/internal/observability"
	"github.com/nao1215/order-notify/internal/sms/memory"
	"github.com/nao1215/order-notify/internal/sms/twilio"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gateway, err := newGateway(cfg, logger)
	if err != nil {
		logger.Fatal("SMSゲートウェイの初期化に失敗", zap.Error(err))
	}

	server := notification.NewServer(notification.ServerConfig{
		Port:               cfg.Port,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedRoles:       cfg.NotifyAllowedRoles,
		DevTokenEnabled:    cfg.DevTokenEnabled,
		DevTokenTTL:        cfg.DevTokenTTL,
		ShutdownTimeout:    cfg.ShutdownTimeout,
	}, gateway, logger, observability.NewMetrics())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("通知サービスを起動します",
		zap.String("port", cfg.Port),
		zap.String("sms_provider", cfg.SMSProvider),
		zap.Bool("dev_token_enabled", cfg.DevTokenEnabled),
	)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("通知サービスの起動に失敗", zap.Error(err))
	}
	logger.Info("通知サービスを停止しました")
}

// newGateway は設定に応じたSMSゲートウェイを生成する。
func newGateway(cfg *config.Config, logger *zap.Logger) (domain.SMSGateway, error) {
	if cfg.SMSProvider == config.ProviderMemory {
		logger.Warn("インメモリSMSゲートウェイを使用します。SMSは実際には送信されません")
		return memory.New(), nil
	}
	return twilio.New(twilio.Config{
		AccountSID:          cfg.Twilio.AccountSID,
		AuthToken:           cfg.Twilio.AuthToken,
		MessagingServiceSID: cfg.Twilio.MessagingServiceSID,
		BaseURL:             cfg.Twilio.BaseURL,
		Timeout:             cfg.Twilio.Timeout,
	}, logger)
}
