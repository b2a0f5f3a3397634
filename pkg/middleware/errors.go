package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// エラーレスポンスの分類ラベル。
const (
	LabelBadRequest          = "Bad Request"
	LabelValidationError     = "Validation Error"
	LabelUnauthorized        = "Unauthorized"
	LabelForbidden           = "Forbidden"
	LabelInternalServerError = "Internal Server Error"
)

// ErrorResponse はエラー時に返すJSONレスポンス。
type ErrorResponse struct {
	// Timestamp はエラー発生日時（RFC3339形式）。
	Timestamp string `json:"timestamp"`
	// Status はHTTPステータスコード。
	Status int `json:"status"`
	// Error は分類ラベル。
	Error string `json:"error"`
	// Message はエラー内容。
	Message string `json:"message"`
	// Path はリクエストパス。
	Path string `json:"path"`
}

// AbortWithError はエラーレスポンスを書き込み、以降のハンドラを中断する。
func AbortWithError(c *gin.Context, status int, label, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}
