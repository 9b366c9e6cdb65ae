// Package identity - текущий пользователь каждой сессии и поток смены состояния входа.
package identity

import (
	"context"
	"sync"
	"time"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/logger"
	"artfolio_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// User - пользователь, вошедший в сессию.
type User struct {
	ID          string `json:"id"`
	UID         string `json:"uid"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Event - смена состояния входа для сессии. User == nil означает выход.
type Event struct {
	SessionID string
	User      *User
}

// Token - выданный при входе токен.
type Token struct {
	AccessToken string    `json:"access_token"`
	SessionID   string    `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Provider хранит сессии в памяти процесса и оповещает подписчиков
// о входе, выходе и смене пользователя.
type Provider struct {
	issuer *auth.TokenIssuer

	mu       sync.RWMutex
	sessions map[string]User

	listenersMu sync.RWMutex
	listeners   map[int64]func(Event)
	nextID      int64
}

func NewProvider(issuer *auth.TokenIssuer) *Provider {
	return &Provider{
		issuer:    issuer,
		sessions:  make(map[string]User),
		listeners: make(map[int64]func(Event)),
	}
}

// OnAuthStateChanged регистрирует обработчик. Возвращает функцию отписки.
func (p *Provider) OnAuthStateChanged(cb func(Event)) func() {
	p.listenersMu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = cb
	p.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.listenersMu.Lock()
			delete(p.listeners, id)
			p.listenersMu.Unlock()
		})
	}
}

func (p *Provider) emit(e Event) {
	p.listenersMu.RLock()
	listeners := make([]func(Event), 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.listenersMu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}

// SignIn открывает сессию для пользователя. Если sessionID указывает на
// существующую сессию, в ней меняется пользователь (смена личности).
// Обработчики OnAuthStateChanged вызываются до возврата.
func (p *Provider) SignIn(ctx context.Context, user User, sessionID string) (*Token, error) {
	p.mu.Lock()
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, ok := p.sessions[sessionID]; !ok {
		sessionID = uuid.NewString()
	}
	p.sessions[sessionID] = user
	p.mu.Unlock()

	access, expiresAt, err := p.issuer.Issue(user.ID, sessionID, user.Username)
	if err != nil {
		p.mu.Lock()
		delete(p.sessions, sessionID)
		p.mu.Unlock()
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(logger.WithSessionID(ctx, sessionID), "user signed in", "user_id", user.ID)

	u := user
	p.emit(Event{SessionID: sessionID, User: &u})

	return &Token{AccessToken: access, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// SignOut закрывает сессию. Возвращает false, если сессии не было.
func (p *Provider) SignOut(ctx context.Context, sessionID string) bool {
	p.mu.Lock()
	_, ok := p.sessions[sessionID]
	delete(p.sessions, sessionID)
	p.mu.Unlock()

	if !ok {
		return false
	}

	logger.CtxInfo(logger.WithSessionID(ctx, sessionID), "user signed out")
	p.emit(Event{SessionID: sessionID})
	return true
}

// Verify проверяет токен и то, что его сессия всё ещё открыта тем же пользователем.
func (p *Provider) Verify(token string) (*auth.Claims, error) {
	claims, err := p.issuer.Parse(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	p.mu.RLock()
	user, ok := p.sessions[claims.SessionID]
	p.mu.RUnlock()

	if !ok || user.ID != claims.UserID {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser возвращает пользователя сессии.
func (p *Provider) CurrentUser(sessionID string) (User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.sessions[sessionID]
	return u, ok
}

// SessionIDs возвращает открытые сессии.
func (p *Provider) SessionIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.sessions))
	for id := range p.sessions {
		ids = append(ids, id)
	}
	return ids
}
