// Package memory はネットワークを使わないインメモリのSMSゲートウェイを提供する。
//
// テストダブルとして送信内容を記録するほか、SMS_PROVIDER=memory の場合は
// ローカル開発用のゲートウェイとしても使用する。
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/nao1215/order-notify/internal/domain"
)

// SentMessage はゲートウェイが受け取った1件の送信要求。
type SentMessage struct {
	// PhoneNumber は送信先の電話番号。
	PhoneNumber string
	// Body はSMS本文。
	Body string
}

// Gateway は送信要求を記録し、設定された結果を返すSMSゲートウェイ。
type Gateway struct {
	mu     sync.Mutex
	sent   []SentMessage
	result *domain.NotificationResult
}

var _ domain.SMSGateway = (*Gateway)(nil)

// New は常に成功を返すゲートウェイを生成する。メッセージIDは送信ごとにUUIDで採番する。
func New() *Gateway {
	return &Gateway{}
}

// NewWithResult は常に指定した結果を返すゲートウェイを生成する。
func NewWithResult(result domain.NotificationResult) *Gateway {
	return &Gateway{result: &result}
}

// SendSMS は送信要求を記録して結果を返す。
func (g *Gateway) SendSMS(_ context.Context, phoneNumber, body string) domain.NotificationResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sent = append(g.sent, SentMessage{PhoneNumber: phoneNumber, Body: body})
	if g.result != nil {
		return *g.result
	}
	return domain.Success("MEM" + uuid.New().String())
}

// Sent はこれまでに記録した送信要求のコピーを返す。
func (g *Gateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]SentMessage, len(g.sent))
	copy(out, g.sent)
	return out
}

// Calls は送信要求の件数を返す。
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}
