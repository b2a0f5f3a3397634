// Package sms はSMS送信ゲートウェイの実装で共有する処理を提供する。
//
// プロバイダー固有の実装はサブパッケージ（twilio, memory）に置く。
package sms

import "regexp"

// InvalidPhoneNumberMessage は電話番号の形式チェックに失敗した場合の失敗理由。
const InvalidPhoneNumberMessage = "Invalid phone number format"

// phonePattern はE.164に準じた電話番号の形式。
// 先頭の"+"は任意で、その後に先頭が0以外の2〜15桁の数字が続く。
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ValidPhoneNumber は電話番号がプロバイダーに送信可能な形式かどうかを返す。
func ValidPhoneNumber(phoneNumber string) bool {
	return phonePattern.MatchString(phoneNumber)
}
