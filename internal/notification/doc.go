// Package notification は注文準備完了通知サービスの内部実装を提供する。
//
// 通知リクエストを検証し、固定テンプレートからSMS本文を生成して
// SMSゲートウェイに送信を委譲するオーケストレーターと、
// それをHTTP APIとして公開するサーバーを含む。
// 送信済みメッセージの永続化、リトライ、配信状況のコールバックは行わない。
package notification
