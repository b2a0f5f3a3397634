package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// headerAuthorization は認証トークンを運ぶHTTPヘッダー。
	headerAuthorization = "Authorization"
	// bearerPrefix はAuthorizationヘッダーのスキーム接頭辞。
	bearerPrefix = "Bearer "
	// RolePrefix はロールを権限名に変換する際の接頭辞。
	RolePrefix = "ROLE_"
	// ginKeyIdentity はGinコンテキストに識別情報を格納するキー。
	ginKeyIdentity = "identity"
)

// TokenVerifier はトークンの検証とクレームの取り出しを行う。
// *TokenValidatorが実装する。
type TokenVerifier interface {
	IsTokenValid(token string) bool
	ExtractSubject(token string) (string, bool)
	ExtractRole(token string) (string, bool)
	ExtractUserID(token string) (int64, bool)
}

// Identity はトークンから導出した呼び出し元の識別情報。
// 1リクエストの間だけ有効で、リクエスト間で共有しない。
type Identity struct {
	// Subject は呼び出し元の識別子（メールアドレス等）。
	Subject string
	// Role は呼び出し元のロール。
	Role string
	// UserID は呼び出し元の数値ユーザーID。
	UserID int64
}

// Authorities はロールから導出した権限名の一覧を返す。
// ロール"DRIVER"は権限"ROLE_DRIVER"になる。
func (i Identity) Authorities() []string {
	if i.Role == "" {
		return nil
	}
	return []string{RolePrefix + i.Role}
}

// HasAuthority は指定した権限を持つかどうかを返す。
func (i Identity) HasAuthority(authority string) bool {
	return slices.Contains(i.Authorities(), authority)
}

type identityKey struct{}

// WithIdentity はコンテキストに識別情報を設定する。
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext はコンテキストから識別情報を取得する。
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// CurrentIdentity はGinコンテキストから認証済みの識別情報を取得する。
// Authenticateミドルウェアが事前に適用されている必要がある。
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	if v, ok := c.Get(ginKeyIdentity); ok {
		if identity, ok := v.(Identity); ok {
			return identity, true
		}
	}
	return IdentityFromContext(c.Request.Context())
}

// Authenticate はBearerトークンから識別情報を導出するGinミドルウェアを返す。
// トークンが無い・不正・期限切れの場合も拒否はせず、未認証のまま次へ渡す。
// 拒否はRequireAuthenticated等の認可ガードが行う。
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := identify(verifier, c.GetHeader(headerAuthorization)); ok {
			c.Set(ginKeyIdentity, identity)
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		}
		c.Next()
	}
}

// identify はAuthorizationヘッダーの値から識別情報を導出する。
func identify(verifier TokenVerifier, authHeader string) (Identity, bool) {
	if authHeader == "" {
		return Identity{}, false
	}

	token, found := strings.CutPrefix(authHeader, bearerPrefix)
	if !found || token == "" {
		return Identity{}, false
	}

	if !verifier.IsTokenValid(token) {
		return Identity{}, false
	}

	subject, _ := verifier.ExtractSubject(token)
	role, _ := verifier.ExtractRole(token)
	userID, _ := verifier.ExtractUserID(token)
	return Identity{Subject: subject, Role: role, UserID: userID}, true
}

// RequireAuthenticated は識別情報が無いリクエストを401で拒否するGinミドルウェアを返す。
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			AbortWithError(c, http.StatusUnauthorized, LabelUnauthorized, "Authentication is required")
			return
		}
		c.Next()
	}
}

// RequireRole は指定したロールのいずれかを持たないリクエストを拒否するGinミドルウェアを返す。
// 未認証の場合は401、ロールが足りない場合は403を返す。
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, LabelUnauthorized, "Authentication is required")
			return
		}
		for _, role := range roles {
			if identity.HasAuthority(RolePrefix + role) {
				c.Next()
				return
			}
		}
		AbortWithError(c, http.StatusForbidden, LabelForbidden, "Access is denied")
	}
}
