package sms

import "testing"

// TestValidPhoneNumber は電話番号の形式チェックを検証する。
func TestValidPhoneNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{name: "国番号付きの番号は有効", phone: "+573001234567", want: true},
		{name: "プラス記号なしの番号は有効", phone: "573001234567", want: true},
		{name: "2桁の番号は有効", phone: "+12", want: true},
		{name: "15桁の番号は有効", phone: "+123456789012345", want: true},
		{name: "16桁の番号は無効", phone: "+1234567890123456", want: false},
		{name: "1桁の番号は無効", phone: "+1", want: false},
		{name: "先頭が0の番号は無効", phone: "+0123456789", want: false},
		{name: "空文字列は無効", phone: "", want: false},
		{name: "空白のみは無効", phone: "   ", want: false},
		{name: "英字を含む番号は無効", phone: "+57300abc4567", want: false},
		{name: "ハイフンを含む番号は無効", phone: "+57-300-123-4567", want: false},
		{name: "プラス記号のみは無効", phone: "+", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidPhoneNumber(tt.phone); got != tt.want {
				t.Errorf("ValidPhoneNumber(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}
