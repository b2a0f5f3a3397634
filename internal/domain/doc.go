// Package domain は注文準備完了通知のドメインモデルと送信ポートを定義する。
//
// 通知メッセージ、送信結果、SMS送信ゲートウェイのインターフェースを持つ。
// HTTPやSMSプロバイダーの具体的な実装には依存しない。
package domain
