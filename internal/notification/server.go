package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/nao1215/order-notify/internal/domain"
	"github.com/nao1215/order-notify/internal/observability"
	"github.com/nao1215/order-notify/pkg/middleware"
	"go.uber.org/zap"
)

// ServerConfig は通知サーバーの設定。
type ServerConfig struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン検証用の事前共有鍵。
	JWTSecret string
	// CORSAllowedOrigins はCORSを許可するオリジン。
	CORSAllowedOrigins []string
	// AllowedRoles は通知の送信を許可するロール。空の場合は認証済みであれば誰でも送信できる。
	AllowedRoles []string
	// DevTokenEnabled は開発用トークン発行エンドポイントを有効にするかどうか。
	DevTokenEnabled bool
	// DevTokenTTL は開発用トークンの有効期間。
	DevTokenTTL time.Duration
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration
}

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサーバーの設定。
	cfg ServerConfig
	// orchestrator は通知の検証・送信を行う。
	orchestrator *Orchestrator
	// logger は構造化ロガー。
	logger *zap.Logger
	// metrics はPrometheusメトリクス。
	metrics *observability.Metrics
}

var registerValidatorsOnce sync.Once

// registerValidators はGinのバインドで使う独自の検証タグを登録する。
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
				panic(fmt.Sprintf("検証タグnotblankの登録に失敗: %v", err))
			}
		}
	})
}

// NewServer は新しい通知サーバーを生成する。
// gatewayには本番用のTwilioゲートウェイか、インメモリゲートウェイを渡す。
func NewServer(cfg ServerConfig, gateway domain.SMSGateway, logger *zap.Logger, metrics *observability.Metrics) *Server {
	registerValidators()

	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger, metrics.ObserveHTTPRequest))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.Authenticate(middleware.NewTokenValidator(cfg.JWTSecret)))

	s := &Server{
		router:       router,
		cfg:          cfg,
		orchestrator: NewOrchestrator(&timedGateway{next: gateway, observe: metrics.ObserveSMSSend}),
		logger:       logger,
		metrics:      metrics,
	}
	s.setupRoutes()

	return s
}

// Handler はサーバーのHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("サーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("グレースフルシャットダウンに失敗: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuthenticated())
		if len(s.cfg.AllowedRoles) > 0 {
			notifications.Use(middleware.RequireRole(s.cfg.AllowedRoles...))
		}
		{
			// 注文準備完了通知の送信
			notifications.POST("/order-ready", s.handleOrderReady())
		}
	}

	// 開発用トークン発行（設定で有効にした場合のみ）
	if s.cfg.DevTokenEnabled {
		s.router.POST("/auth/dev-token", s.handleDevToken())
	}

	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "order-notify"})
	})
}

// handleOrderReady は注文準備完了SMSを送信するハンドラ。
func (s *Server) handleOrderReady() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderReadyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.metrics.IncNotificationFailed(s.abortBindError(c, err))
			return
		}

		result, err := s.orchestrator.SendOrderReadyNotification(c.Request.Context(), req.toMessage())
		if err != nil {
			// オーケストレーターが返すエラーは入力検証エラーのみ。
			s.metrics.IncNotificationFailed(observability.ReasonInvalidInput)
			middleware.AbortWithError(c, http.StatusBadRequest, middleware.LabelBadRequest, err.Error())
			return
		}

		if !result.Success {
			s.metrics.IncNotificationFailed(observability.ReasonGateway)
			s.logger.Warn("SMSの送信に失敗しました", zap.String("order_id", req.OrderID), zap.String("reason", result.ErrorMessage))
			c.JSON(http.StatusInternalServerError, toNotificationResponse(result))
			return
		}

		s.metrics.IncNotificationSent()
		s.logger.Info("注文準備完了通知を送信しました", zap.String("order_id", req.OrderID), zap.String("message_id", result.MessageID))
		c.JSON(http.StatusOK, toNotificationResponse(result))
	}
}

// abortBindError はリクエストボディのバインドエラーを400レスポンスに変換し、失敗理由のラベルを返す。
// 検証エラーの場合は検証順で最初に違反した項目のメッセージを返す。
func (s *Server) abortBindError(c *gin.Context, err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		msg, ok := fieldMessages[validationErrs[0].StructField()]
		if !ok {
			msg = "Input data validation error"
		}
		middleware.AbortWithError(c, http.StatusBadRequest, middleware.LabelValidationError, msg)
		return observability.ReasonInvalidInput
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		middleware.AbortWithError(c, http.StatusBadRequest, middleware.LabelBadRequest, "Malformed JSON request")
	default:
		middleware.AbortWithError(c, http.StatusBadRequest, middleware.LabelBadRequest, "Invalid request body")
	}
	return observability.ReasonBadRequest
}

// handleDevToken は開発用の署名付きトークンを発行するハンドラ。
// 本番環境では無効化すべき。
func (s *Server) handleDevToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, middleware.LabelValidationError, "subject and role are required")
			return
		}

		token, err := middleware.GenerateToken(s.cfg.JWTSecret, req.Subject, req.Role, req.UserID, s.cfg.DevTokenTTL)
		if err != nil {
			s.logger.Error("トークン生成に失敗", zap.Error(err))
			middleware.AbortWithError(c, http.StatusInternalServerError, middleware.LabelInternalServerError, "An unexpected error occurred")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"expiresIn": int64(s.cfg.DevTokenTTL.Seconds()),
		})
	}
}

// timedGateway はゲートウェイ呼び出しの所要時間を記録するデコレーター。
type timedGateway struct {
	next    domain.SMSGateway
	observe func(time.Duration)
}

func (g *timedGateway) SendSMS(ctx context.Context, phoneNumber, body string) domain.NotificationResult {
	start := time.Now()
	defer func() { g.observe(time.Since(start)) }()
	return g.next.SendSMS(ctx, phoneNumber, body)
}
