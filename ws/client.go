package ws

import (
	"context"
	"encoding/json"
	"time"

	"artfolio_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// IncomingWSMessage - действие от клиента.
type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// ActionHandler выполняет действие клиента и возвращает ответ (или nil).
type ActionHandler interface {
	HandleAction(ctx context.Context, sessionID, action string, data json.RawMessage) (any, error)
}

type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan any
	Ctx       context.Context

	Manager *WebSocketManager
	Actions ActionHandler
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.CtxWarn(c.Ctx, "ws read error", "error", err)
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.reply(Message{Type: "error", Data: "malformed message"})
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.CtxWarn(c.Ctx, "ws write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply ставит ответ в очередь клиента через менеджер
func (c *Client) reply(msg any) {
	if !c.Manager.deliver(c, msg) {
		logger.CtxDebug(c.Ctx, "ws reply dropped")
	}
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	if c.Actions == nil {
		c.reply(Message{Type: "error", Data: "actions are not supported"})
		return
	}

	result, err := c.Actions.HandleAction(c.Ctx, c.SessionID, msg.Action, msg.Data)
	if err != nil {
		c.reply(Message{Type: "error", Data: err.Error()})
		return
	}
	if result != nil {
		c.reply(result)
	}
}
