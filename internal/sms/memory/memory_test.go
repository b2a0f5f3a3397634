package memory

import (
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/order-notify/internal/domain"
)

// TestGateway はインメモリゲートウェイの記録と結果返却を検証する。
func TestGateway(t *testing.T) {
	t.Parallel()

	t.Run("デフォルトでは成功結果とMEM接頭辞のIDが返ること", func(t *testing.T) {
		t.Parallel()

		g := New()
		got := g.SendSMS(t.Context(), "+573001234567", "hello")
		if !got.Success {
			t.Fatalf("Success = false, want true: %+v", got)
		}
		if !strings.HasPrefix(got.MessageID, "MEM") {
			t.Errorf("MessageID = %q, want prefix %q", got.MessageID, "MEM")
		}
		if g.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", g.Calls())
		}
	})

	t.Run("設定した失敗結果がそのまま返ること", func(t *testing.T) {
		t.Parallel()

		g := NewWithResult(domain.Failure("down"))
		got := g.SendSMS(t.Context(), "+573001234567", "hello")
		if got != domain.Failure("down") {
			t.Errorf("SendSMS() = %+v, want %+v", got, domain.Failure("down"))
		}
	})

	t.Run("送信内容が記録されること", func(t *testing.T) {
		t.Parallel()

		g := New()
		g.SendSMS(t.Context(), "+111", "first")
		g.SendSMS(t.Context(), "+222", "second")

		sent := g.Sent()
		if len(sent) != 2 {
			t.Fatalf("len(Sent()) = %d, want 2", len(sent))
		}
		if sent[0].PhoneNumber != "+111" || sent[0].Body != "first" {
			t.Errorf("sent[0] = %+v", sent[0])
		}
		if sent[1].PhoneNumber != "+222" || sent[1].Body != "second" {
			t.Errorf("sent[1] = %+v", sent[1])
		}
	})

	t.Run("並行して呼び出しても全件記録されること", func(t *testing.T) {
		t.Parallel()

		g := New()
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				g.SendSMS(t.Context(), "+573001234567", "hello")
			}()
		}
		wg.Wait()

		if g.Calls() != 50 {
			t.Errorf("Calls() = %d, want 50", g.Calls())
		}
	})
}
