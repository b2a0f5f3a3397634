package domain

import "context"

// NotificationMessage は注文準備完了通知の1件分のメッセージを表す。
// リクエストごとに生成され、オーケストレーターの処理が終わると破棄される。
type NotificationMessage struct {
	// PhoneNumber は送信先の電話番号（E.164形式を想定）。
	PhoneNumber string
	// Content はテンプレートから生成されたSMS本文。呼び出し側ではなくオーケストレーターが設定する。
	Content string
	// OrderID は注文の識別子。
	OrderID string
	// SecurityPIN は受け取り時に提示するセキュリティPIN。
	SecurityPIN string
	// RestaurantName はレストラン名。
	RestaurantName string
}

// NotificationResult はSMS送信の正規化された結果。
// Successがtrueの場合はMessageIDのみ、falseの場合はErrorMessageのみが設定される。
type NotificationResult struct {
	// Success は送信に成功したかどうか。
	Success bool
	// MessageID はプロバイダーが採番したメッセージID。
	MessageID string
	// ErrorMessage は失敗理由。
	ErrorMessage string
}

// Success はプロバイダーのメッセージIDを持つ成功結果を生成する。
func Success(messageID string) NotificationResult {
	return NotificationResult{Success: true, MessageID: messageID}
}

// Failure は失敗理由を持つ失敗結果を生成する。
func Failure(errorMessage string) NotificationResult {
	return NotificationResult{Success: false, ErrorMessage: errorMessage}
}

// SMSGateway はSMSを送信する外部プロバイダーへのポート。
// 実装はプロバイダー側のエラーも含めて結果値として返し、panicやerrorを呼び出し側に漏らさない。
type SMSGateway interface {
	SendSMS(ctx context.Context, phoneNumber, body string) NotificationResult
}
