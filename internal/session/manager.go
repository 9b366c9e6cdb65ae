package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/portfolio"
	"artfolio_backend/pkg/apperrors"
)

// AuthSource - поток смены состояния входа (identity.Provider).
type AuthSource interface {
	OnAuthStateChanged(cb func(identity.Event)) func()
}

type Options struct {
	MaxPendingUploads int
	PendingUploadTTL  time.Duration
}

// Manager держит живые сессии: создаёт при входе, освобождает при выходе,
// смене пользователя и остановке сервера.
type Manager struct {
	store     portfolio.Store
	publisher Publisher
	opts      Options

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	stopAuth func()
}

func NewManager(store portfolio.Store, auth AuthSource, publisher Publisher, opts Options) *Manager {
	m := &Manager{
		store:     store,
		publisher: publisher,
		opts:      opts,
		sessions:  make(map[string]*Session),
	}
	m.stopAuth = auth.OnAuthStateChanged(m.handleAuthEvent)
	return m
}

func (m *Manager) handleAuthEvent(e identity.Event) {
	if e.User == nil {
		m.dispose(e.SessionID)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	prev := m.sessions[e.SessionID]
	if prev != nil && prev.User.ID == e.User.ID {
		m.mu.Unlock()
		return
	}
	s := newSession(e.SessionID, *e.User, m.store, m.publisher, m.opts)
	m.sessions[e.SessionID] = s
	m.mu.Unlock()

	if prev != nil {
		logger.CtxInfo(s.ctx, "identity changed, replacing session", "previous_user_id", prev.User.ID)
		prev.Dispose()
	}

	if err := s.Start(); err != nil {
		logger.CtxWithError(s.ctx, "portfolio session started with errors", err)
		return
	}
	logger.CtxInfo(s.ctx, "portfolio session started", "items", s.Model.Len())
}

func (m *Manager) dispose(sessionID string) {
	m.mu.Lock()
	s := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if s != nil {
		s.Dispose()
	}
}

// Get возвращает сессию или ErrSessionNotFound.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

// Sessions возвращает живые сессии.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close отписывается от входов и освобождает все сессии.
func (m *Manager) Close() {
	m.stopAuth()

	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Dispose()
		}(s)
	}
	wg.Wait()
}

// SnapshotMessage - первое сообщение для нового websocket-подключения.
func (m *Manager) SnapshotMessage(sessionID string) (any, bool) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, false
	}
	return Update{Type: "snapshot", Data: s.Snapshot()}, true
}

type reorderAction struct {
	Source      int `json:"source"`
	Destination int `json:"destination"`
}

// HandleAction выполняет действия, пришедшие по websocket.
func (m *Manager) HandleAction(ctx context.Context, sessionID, action string, data json.RawMessage) (any, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case "snapshot":
		return Update{Type: "snapshot", Data: s.Snapshot()}, nil

	case "reorder":
		var in reorderAction
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, apperrors.NewBadRequestError("invalid reorder payload")
		}
		// Вне диапазона - без изменений и без ответа
		s.Model.Reorder(in.Source, in.Destination)
		return nil, nil

	default:
		logger.CtxWarn(ctx, "unhandled ws action", "action", action)
		return nil, apperrors.ErrInvalidOperation("session", "unknown action "+action)
	}
}
