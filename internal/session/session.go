// Package session создаёт состояние портфолио при входе пользователя
// и освобождает его при выходе или смене пользователя.
package session

import (
	"context"
	"sync"
	"time"

	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/portfolio"
)

// Publisher доставляет обновления в открытые вкладки сессии (ws.WebSocketManager).
type Publisher interface {
	SendToSession(sessionID string, message any)
	CloseSession(sessionID string)
}

// Update - сообщение, отправляемое в вкладки сессии.
type Update struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Snapshot - полное состояние сессии.
type Snapshot struct {
	SessionID string                    `json:"session_id"`
	User      identity.User             `json:"user"`
	Portfolio []models.Artwork          `json:"portfolio"`
	Available []models.Artwork          `json:"available"`
	Editor    *portfolio.Draft          `json:"editor,omitempty"`
	Removal   portfolio.RemovalStatus   `json:"removal"`
	Uploads   []portfolio.PendingUpload `json:"uploads"`
}

// Session - состояние портфолио одного входа.
type Session struct {
	ID        string
	User      identity.User
	CreatedAt time.Time

	Model     *portfolio.Model
	Available *portfolio.AvailablePanel
	Editor    *portfolio.Editor
	Removal   *portfolio.RemovalController
	Uploads   *portfolio.PendingUploads

	publisher Publisher
	ctx       context.Context

	mu       sync.Mutex
	disposed bool
}

func newSession(id string, user identity.User, store portfolio.Store, publisher Publisher, opts Options) *Session {
	model := portfolio.NewModel(store)

	ctx := logger.WithUserID(context.Background(), user.ID)
	ctx = logger.WithSessionID(ctx, id)

	s := &Session{
		ID:        id,
		User:      user,
		CreatedAt: time.Now(),
		Model:     model,
		Available: portfolio.NewAvailablePanel(store, model),
		Editor:    portfolio.NewEditor(model),
		Removal:   portfolio.NewRemovalController(model),
		Uploads:   portfolio.NewPendingUploads(opts.MaxPendingUploads, opts.PendingUploadTTL),
		publisher: publisher,
		ctx:       ctx,
	}
	model.OnChange(s.Push)
	return s
}

// Context возвращает контекст с полями сессии для логов.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Start загружает список, открывает подписку и заполняет панель доступных работ.
// Ошибки логируются; сессия остаётся рабочей с тем, что удалось загрузить.
func (s *Session) Start() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(s.Model.Load(s.ctx, s.User.ID))
	keep(s.Model.Subscribe(s.ctx, s.User.ID))
	keep(s.Available.Refresh(s.ctx, s.User.ID))

	s.Push()
	return firstErr
}

// Reload перечитывает список и панель доступных работ.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.Model.Load(ctx, s.User.ID); err != nil {
		return err
	}
	if err := s.Available.Refresh(ctx, s.User.ID); err != nil {
		return err
	}
	s.Push()
	return nil
}

// Snapshot собирает текущее состояние.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		User:      s.User,
		Portfolio: s.Model.Items(),
		Available: s.Available.Items(),
		Removal:   s.Removal.Status(),
		Uploads:   s.Uploads.List(),
	}
	if draft, open := s.Editor.Draft(); open {
		snap.Editor = &draft
	}
	return snap
}

// Push отправляет снимок во все вкладки сессии.
func (s *Session) Push() {
	if s.publisher == nil || s.Disposed() {
		return
	}
	s.publisher.SendToSession(s.ID, Update{Type: "snapshot", Data: s.Snapshot()})
}

func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Dispose освобождает подписку, дожидается фоновых записей и закрывает вкладки.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	s.Model.Close()
	s.Editor.Cancel()
	s.Removal.Cancel()
	s.Uploads.Clear()

	if s.publisher != nil {
		s.publisher.CloseSession(s.ID)
	}
	logger.CtxInfo(s.ctx, "portfolio session disposed")
}
