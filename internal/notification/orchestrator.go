package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/order-notify/internal/domain"
)

// orderReadyTemplate は注文準備完了SMSの本文テンプレート。
// 注文ID、レストラン名、セキュリティPINの順に埋め込む。
const orderReadyTemplate = "Hello! Your order #%s at %s is READY for pickup. " +
	"Your security PIN is: %s. " +
	"Please present this PIN to the employee to claim your order."

// ErrInvalidInput は通知メッセージの入力検証エラーを表す。
var ErrInvalidInput = errors.New("invalid notification input")

// InvalidInputError は違反した検証ルールを持つ入力検証エラー。
// errors.Is(err, ErrInvalidInput)で判定できる。
type InvalidInputError struct {
	// Message は違反したルールの説明。
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// requiredField は必須項目の検証ルール。
type requiredField struct {
	message string
	value   func(*domain.NotificationMessage) string
}

// requiredFields は必須項目の検証ルール。最初に違反したルールだけを報告するため順序に意味がある。
var requiredFields = []requiredField{
	{message: "Phone number is required", value: func(m *domain.NotificationMessage) string { return m.PhoneNumber }},
	{message: "Security PIN is required", value: func(m *domain.NotificationMessage) string { return m.SecurityPIN }},
	{message: "Order ID is required", value: func(m *domain.NotificationMessage) string { return m.OrderID }},
	{message: "Restaurant name is required", value: func(m *domain.NotificationMessage) string { return m.RestaurantName }},
}

// Orchestrator は注文準備完了通知の検証・本文生成・送信を行う。
type Orchestrator struct {
	// gateway はSMSの送信先ゲートウェイ。
	gateway domain.SMSGateway
}

// NewOrchestrator は新しいOrchestratorを生成する。
func NewOrchestrator(gateway domain.SMSGateway) *Orchestrator {
	return &Orchestrator{gateway: gateway}
}

// SendOrderReadyNotification は通知メッセージを検証し、本文を生成してSMSを送信する。
// 入力が不正な場合はゲートウェイを呼ばずにInvalidInputErrorを返す。
// ゲートウェイの結果は成功・失敗を問わずそのまま返し、リトライはしない。
func (o *Orchestrator) SendOrderReadyNotification(ctx context.Context, message *domain.NotificationMessage) (domain.NotificationResult, error) {
	if err := validateMessage(message); err != nil {
		return domain.NotificationResult{}, err
	}

	message.Content = RenderOrderReadyMessage(message.OrderID, message.RestaurantName, message.SecurityPIN)
	return o.gateway.SendSMS(ctx, message.PhoneNumber, message.Content), nil
}

// RenderOrderReadyMessage は注文準備完了SMSの本文を生成する。
func RenderOrderReadyMessage(orderID, restaurantName, securityPIN string) string {
	return fmt.Sprintf(orderReadyTemplate, orderID, restaurantName, securityPIN)
}

// validateMessage は通知メッセージの必須項目を決められた順序で検証する。
func validateMessage(message *domain.NotificationMessage) error {
	if message == nil {
		return &InvalidInputError{Message: "Notification message cannot be null"}
	}
	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(message)) == "" {
			return &InvalidInputError{Message: f.message}
		}
	}
	return nil
}
