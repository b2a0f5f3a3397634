// Package httpclient は外部APIを呼び出すためのHTTPクライアントを提供する。
//
// SMSプロバイダー等の外部サービスへのリクエストで使用する。
// Basic認証、タイムアウト、リクエストIDの伝播、2xx以外のレスポンスの
// エラー化といった共通処理をまとめる。
package httpclient
