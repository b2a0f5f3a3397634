package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/order-notify/pkg/httpclient"
	"go.uber.org/zap"
)

// AccessLog はリクエストごとにアクセスログを出力するGinミドルウェアを返す。
// observeが指定された場合は、メトリクス記録用にメソッド・ルート・ステータスを渡す。
func AccessLog(logger *zap.Logger, observe func(method, route string, status int, elapsed time.Duration)) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if requestID, ok := httpclient.RequestIDFromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if identity, ok := CurrentIdentity(c); ok {
			fields = append(fields, zap.String("subject", identity.Subject))
		}
		logger.Info("request", fields...)

		if observe != nil {
			observe(c.Request.Method, route, status, elapsed)
		}
	}
}
