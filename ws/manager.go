package ws

import (
	"context"
	"sync"

	"artfolio_backend/internal/logger"
)

// Message - исходящее сообщение клиенту.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WebSocketManager держит подключения, сгруппированные по сессии:
// одна сессия может быть открыта в нескольких вкладках.
type WebSocketManager struct {
	sessions   map[string]map[*Client]bool
	unregister chan *Client
	mu         sync.RWMutex
	stopped    bool
	done       chan struct{}
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		sessions:   make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает отключения клиентов до отмены ctx.
// Канал Send клиента закрывает только менеджер и только под mu.
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.done)

	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return

		case client := <-manager.unregister:
			manager.remove(client)
		}
	}
}

// Done закрывается после выхода из Run.
func (manager *WebSocketManager) Done() <-chan struct{} {
	return manager.done
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	clients, ok := manager.sessions[client.SessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(manager.sessions, client.SessionID)
	}
	close(client.Send)
	logger.Debug("ws client unregistered", "session_id", client.SessionID)
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	manager.stopped = true
	for sessionID, clients := range manager.sessions {
		for client := range clients {
			close(client.Send)
		}
		delete(manager.sessions, sessionID)
	}
}

// Register добавляет клиента. Возвращает false, если менеджер остановлен.
func (manager *WebSocketManager) Register(client *Client) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.stopped {
		return false
	}
	if manager.sessions[client.SessionID] == nil {
		manager.sessions[client.SessionID] = make(map[*Client]bool)
	}
	manager.sessions[client.SessionID][client] = true
	logger.Debug("ws client registered", "session_id", client.SessionID, "session_clients", len(manager.sessions[client.SessionID]))
	return true
}

// deliver отправляет сообщение одному клиенту, если он ещё зарегистрирован.
// Переполненная очередь: сообщение отбрасывается.
func (manager *WebSocketManager) deliver(client *Client, message any) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if !manager.sessions[client.SessionID][client] {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}

// Unregister удаляет клиента и закрывает его канал отправки.
func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

// SendToSession отправляет сообщение всем вкладкам сессии.
// Клиент с переполненной очередью отключается.
func (manager *WebSocketManager) SendToSession(sessionID string, message any) {
	manager.mu.RLock()
	var slow []*Client
	for client := range manager.sessions[sessionID] {
		select {
		case client.Send <- message:
		default:
			slow = append(slow, client)
		}
	}
	manager.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("ws client disconnected due to full send channel", "session_id", sessionID)
		go manager.Unregister(client)
	}
}

// CloseSession отключает все вкладки сессии (выход пользователя).
func (manager *WebSocketManager) CloseSession(sessionID string) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for client := range manager.sessions[sessionID] {
		close(client.Send)
	}
	delete(manager.sessions, sessionID)
}

// GetClientCount возвращает количество подключений сессии
func (manager *WebSocketManager) GetClientCount(sessionID string) int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.sessions[sessionID])
}
