package middleware

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はGenerateTokenが署名するクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// Role は呼び出し元のロール（例: "CLIENT", "EMPLOYEE"）。
	Role string `json:"role"`
	// UserID は呼び出し元の数値ユーザーID。
	UserID *int64 `json:"userId,omitempty"`
}

// TokenValidator は事前共有鍵でトークンを検証し、クレームを取り出す。
// 有効かどうかは形式・署名・有効期限だけで決まる。独自クレームの型が
// 想定と異なる場合は、そのクレームの取り出しだけが「値なし」になる。
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenValidator は新しいTokenValidatorを生成する。
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			}),
			jwt.WithExpirationRequired(),
			jwt.WithJSONNumber(),
		),
	}
}

// parse はトークンを検証してクレームを返す。検証に失敗した場合はnilを返す。
func (v *TokenValidator) parse(tokenString string) jwt.MapClaims {
	if tokenString == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

// IsTokenValid はトークンの形式・署名・有効期限がすべて正しいかどうかを返す。
func (v *TokenValidator) IsTokenValid(tokenString string) bool {
	return v.parse(tokenString) != nil
}

// ExtractSubject はトークンのsubjectクレーム（メールアドレス等）を返す。
func (v *TokenValidator) ExtractSubject(tokenString string) (string, bool) {
	return stringClaim(v.parse(tokenString), "sub")
}

// ExtractRole はトークンのroleクレームを返す。
func (v *TokenValidator) ExtractRole(tokenString string) (string, bool) {
	return stringClaim(v.parse(tokenString), "role")
}

// ExtractUserID はトークンのuserIdクレームを返す。
// 整数として解釈できない値（文字列や小数）は値なしとして扱う。
func (v *TokenValidator) ExtractUserID(tokenString string) (int64, bool) {
	claims := v.parse(tokenString)
	if claims == nil {
		return 0, false
	}
	n, ok := claims["userId"].(json.Number)
	if !ok {
		return 0, false
	}
	userID, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// stringClaim はクレームから空でない文字列値を取り出す。
func stringClaim(claims jwt.MapClaims, name string) (string, bool) {
	if claims == nil {
		return "", false
	}
	value, ok := claims[name].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// GenerateToken は識別情報からHS256で署名したトークンを生成する。
// 開発用トークン発行エンドポイントとテストで使用する。
func GenerateToken(secret, subject, role string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role:   role,
		UserID: &userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}
