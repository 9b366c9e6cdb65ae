package routes

import (
	"artfolio_backend/internal/handlers"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/middleware"
	"artfolio_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	verifier middleware.TokenVerifier,
) {
	requireAuth := middleware.AuthMiddleware(verifier)
	optionalAuth := middleware.OptionalAuthMiddleware(verifier)

	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, requireAuth, optionalAuth)
		appHandlers.ArtworkHandler.RegisterRoutes(api, requireAuth, optionalAuth)
		appHandlers.SessionHandler.RegisterRoutes(api, requireAuth)
		appHandlers.FileHandler.RegisterRoutes(api)
	}

	// Регистрация WebSocket: токен проверяет сам обработчик (?token=)
	ginRouter.GET("/ws", wsHandler.ServeWS)
	logger.Info("WebSocket route /ws registered")
}
