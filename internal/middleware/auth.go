package middleware

import (
	"strings"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/logger"
	"artfolio_backend/pkg/apperrors"
	"artfolio_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// TokenVerifier проверяет токен и открытость его сессии (identity.Provider)
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware - middleware проверки JWT.
// Токен выхода из сессии отклоняется, даже если ещё не истёк.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "rejected token", "path", c.Request.URL.Path, "ip", c.ClientIP())
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware - как AuthMiddleware, но запрос без токена или
// с недействительным токеном проходит анонимно.
func OptionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// setClaims сохраняет claims в gin.Context и в контекст логгера
func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey, claims.UserID)
	c.Set(contextkeys.SessionIDKey, claims.SessionID)
	c.Set(contextkeys.UsernameKey, claims.Username)

	ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
	ctx = logger.WithSessionID(ctx, claims.SessionID)
	c.Request = c.Request.WithContext(ctx)
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

// GetSessionID извлекает ID сессии из контекста
func GetSessionID(c *gin.Context) string {
	return c.GetString(contextkeys.SessionIDKey)
}
