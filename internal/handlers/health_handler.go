package handlers

import (
	"net/http"

	"artfolio_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	*BaseHandler
	sessions interface{ Len() int }
}

func NewHealthHandler(base *BaseHandler, sessions interface{ Len() int }) *HealthHandler {
	return &HealthHandler{BaseHandler: base, sessions: sessions}
}

func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", h.Ping)
}

// Ping проверяет соединение с БД
func (h *HealthHandler) Ping(c *gin.Context) {
	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "database ping failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
		"sessions": h.sessions.Len(),
	})
}
