// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 署名付きトークン（JWT）の検証と呼び出し元の識別、認可ガード、
// リクエストID、アクセスログ、パニックリカバリ、CORS設定を含む。
// 識別情報はリクエストのcontext.Contextに載せ、プロセス全体で共有しない。
package middleware
