package middlewares

import (
	"net/http"
	"strings"

	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ContextUserKey ginコンテキストに認証済みユーザーを保存するキー
const ContextUserKey = "user"

// extractToken クッキーまたはAuthorizationヘッダーからトークンを取り出す。
// クッキーが優先される
func extractToken(ctx *gin.Context, cookieName string) string {
	if token, err := ctx.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	authHeader := ctx.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// AuthMiddleware 認証ミドルウェア
func AuthMiddleware(authService services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx, cfg.Auth.CookieName)
		if tokenString == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
			ctx.Abort()
			return
		}

		user, err := authService.GetUserFromToken(tokenString)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "無効なトークンです"})
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// OptionalAuthMiddleware オプショナル認証ミドルウェア（認証がない場合もエラーを返さない）
func OptionalAuthMiddleware(authService services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx, cfg.Auth.CookieName)
		if tokenString == "" {
			ctx.Next()
			return
		}

		user, err := authService.GetUserFromToken(tokenString)
		if err != nil {
			ctx.Next()
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// CurrentUser コンテキストから認証済みユーザーを取り出す。
// 未認証の場合はnil
func CurrentUser(ctx *gin.Context) *models.User {
	value, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
