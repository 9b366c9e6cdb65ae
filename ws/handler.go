package ws

import (
	"context"
	"net/http"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/logger"
	"artfolio_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenVerifier проверяет access-токен (identity.Provider).
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// SnapshotSource отдаёт текущее состояние сессии для первого сообщения.
type SnapshotSource interface {
	SnapshotMessage(sessionID string) (any, bool)
}

type WebSocketHandler struct {
	Manager   *WebSocketManager
	Verifier  TokenVerifier
	Actions   ActionHandler
	Snapshots SnapshotSource
	upgrader  websocket.Upgrader
}

func NewWebSocketHandler(manager *WebSocketManager, verifier TokenVerifier, actions ActionHandler, snapshots SnapshotSource, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WebSocketHandler{
		Manager:   manager,
		Verifier:  verifier,
		Actions:   actions,
		Snapshots: snapshots,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// ServeWS - GET /ws?token=...
// Браузер не умеет передавать заголовок Authorization при открытии websocket,
// поэтому токен приходит в query.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("token query parameter is required"))
		return
	}
	claims, err := h.Verifier.Verify(token)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "ws upgrade failed", "error", err)
		return
	}

	ctx := logger.WithUserID(context.WithoutCancel(c.Request.Context()), claims.UserID)
	ctx = logger.WithSessionID(ctx, claims.SessionID)

	client := &Client{
		SessionID: claims.SessionID,
		Conn:      conn,
		Send:      make(chan any, sendBuffer),
		Ctx:       ctx,
		Manager:   h.Manager,
		Actions:   h.Actions,
	}

	if !h.Manager.Register(client) {
		conn.Close()
		return
	}
	logger.CtxInfo(ctx, "ws client connected")

	if h.Snapshots != nil {
		if msg, ok := h.Snapshots.SnapshotMessage(claims.SessionID); ok {
			client.reply(msg)
		}
	}

	go client.readPump()
	go client.writePump()
}
