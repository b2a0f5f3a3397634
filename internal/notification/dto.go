package notification

import (
	"github.com/nao1215/order-notify/internal/domain"
)

// successMessage は送信成功時にレスポンスへ含める説明。
const successMessage = "Notification sent successfully"

// orderReadyRequest は注文準備完了通知リクエストのJSON構造。
// フィールドの宣言順はオーケストレーターの検証順と揃えている。
type orderReadyRequest struct {
	// PhoneNumber は送信先の電話番号。
	PhoneNumber string `json:"phoneNumber" binding:"notblank"`
	// SecurityPIN は受け取り時に提示するセキュリティPIN。
	SecurityPIN string `json:"securityPin" binding:"notblank"`
	// OrderID は注文の識別子。
	OrderID string `json:"orderId" binding:"notblank"`
	// RestaurantName はレストラン名。
	RestaurantName string `json:"restaurantName" binding:"notblank"`
}

// fieldMessages はバインド時の検証エラーをフィールドごとのメッセージに変換する。
var fieldMessages = map[string]string{
	"PhoneNumber":    "Phone number is required",
	"SecurityPIN":    "Security PIN is required",
	"OrderID":        "Order ID is required",
	"RestaurantName": "Restaurant name is required",
}

// toMessage はリクエストをドメインの通知メッセージに変換する。
func (r orderReadyRequest) toMessage() *domain.NotificationMessage {
	return &domain.NotificationMessage{
		PhoneNumber:    r.PhoneNumber,
		OrderID:        r.OrderID,
		SecurityPIN:    r.SecurityPIN,
		RestaurantName: r.RestaurantName,
	}
}

// notificationResponse は通知送信結果のJSONレスポンス構造。
type notificationResponse struct {
	// Success は送信に成功したかどうか。
	Success bool `json:"success"`
	// MessageID はプロバイダーが採番したメッセージID（成功時のみ）。
	MessageID string `json:"messageId,omitempty"`
	// Message は結果の説明。失敗時は失敗理由。
	Message string `json:"message"`
}

// toNotificationResponse は送信結果をJSONレスポンスに変換する。
func toNotificationResponse(result domain.NotificationResult) notificationResponse {
	if result.Success {
		return notificationResponse{Success: true, MessageID: result.MessageID, Message: successMessage}
	}
	return notificationResponse{Success: false, Message: result.ErrorMessage}
}

// devTokenRequest は開発用トークン発行リクエストのJSON構造。
type devTokenRequest struct {
	// Subject はトークンのsubject（メールアドレス等）。
	Subject string `json:"subject" binding:"notblank"`
	// Role はトークンのロール。
	Role string `json:"role" binding:"notblank"`
	// UserID は数値ユーザーID。
	UserID int64 `json:"userId"`
}
