package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/session"
	"artfolio_backend/pkg/apperrors"
	"artfolio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	sent   map[string]int
	closed []string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{sent: make(map[string]int)}
}

func (p *recordingPublisher) SendToSession(sessionID string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[sessionID]++
}

func (p *recordingPublisher) CloseSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, sessionID)
}

func (p *recordingPublisher) Closed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.closed...)
}

type fixture struct {
	db        *gorm.DB
	gw        *gateway.SQLGateway
	feed      *gateway.LocalFeed
	provider  *identity.Provider
	publisher *recordingPublisher
	manager   *session.Manager
	user      *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := helpers.NewTestDB(t)
	feed := gateway.NewLocalFeed()
	gw := gateway.NewSQLGateway(db, feed)
	provider := identity.NewProvider(auth.NewTokenIssuer("secret", time.Hour))
	publisher := newRecordingPublisher()
	manager := session.NewManager(gw, provider, publisher, session.Options{
		MaxPendingUploads: 3,
		PendingUploadTTL:  time.Minute,
	})

	user := helpers.CreateUser(t, db, "alice", "password1")
	return &fixture{db: db, gw: gw, feed: feed, provider: provider, publisher: publisher, manager: manager, user: user}
}

func (f *fixture) signIn(t *testing.T, user *models.User, sessionID string) *identity.Token {
	t.Helper()
	tok, err := f.provider.SignIn(context.Background(), identity.User{ID: user.ID, Username: user.Username}, sessionID)
	require.NoError(t, err)
	return tok
}

func ignoreDB() goleak.Option {
	return goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener")
}

func TestManager_SignInCreatesLoadedSession(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDB())

	f := newFixture(t)
	defer f.manager.Close()

	ctx := context.Background()
	a, err := f.gw.InsertArtwork(ctx, &models.Artwork{OwnerID: f.user.ID, Title: "A"})
	require.NoError(t, err)

	tok := f.signIn(t, f.user, "")
	s, err := f.manager.Get(tok.SessionID)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return s.Model.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Model.Contains(a))
	assert.True(t, s.Model.Subscribed())

	// Новая работа приходит через подписку
	b, err := f.gw.InsertArtwork(ctx, &models.Artwork{OwnerID: f.user.ID, Title: "B"})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return s.Model.Contains(b) }, time.Second, 5*time.Millisecond)

	// Повтор при подписке не создаёт дубликатов
	assert.Equal(t, 2, s.Model.Len())

	snap := s.Snapshot()
	assert.Equal(t, tok.SessionID, snap.SessionID)
	assert.Len(t, snap.Portfolio, 2)
	assert.Empty(t, snap.Available)
}

func TestManager_SignOutDisposesSession(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDB())

	f := newFixture(t)
	defer f.manager.Close()

	tok := f.signIn(t, f.user, "")
	s, err := f.manager.Get(tok.SessionID)
	require.NoError(t, err)
	require.Equal(t, 1, f.feed.Subscribers(f.user.ID))

	f.provider.SignOut(context.Background(), tok.SessionID)

	_, err = f.manager.Get(tok.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.True(t, s.Disposed())
	assert.False(t, s.Model.Subscribed())
	assert.Equal(t, 0, f.feed.Subscribers(f.user.ID))
	assert.Equal(t, []string{tok.SessionID}, f.publisher.Closed())
}

func TestManager_IdentityChangeReplacesSession(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDB())

	f := newFixture(t)
	defer f.manager.Close()

	tok := f.signIn(t, f.user, "")
	first, err := f.manager.Get(tok.SessionID)
	require.NoError(t, err)

	// Повторный вход тем же пользователем сессию не пересоздаёт
	f.signIn(t, f.user, tok.SessionID)
	same, err := f.manager.Get(tok.SessionID)
	require.NoError(t, err)
	assert.Same(t, first, same)

	bob := &models.User{Username: "bob", UID: "uid-bob", Email: "bob@test.com", PasswordHash: "x"}
	_, err = f.gw.InsertUser(context.Background(), bob)
	require.NoError(t, err)

	f.signIn(t, bob, tok.SessionID)
	second, err := f.manager.Get(tok.SessionID)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.True(t, first.Disposed())
	assert.Equal(t, bob.ID, second.User.ID)
	assert.Equal(t, 0, f.feed.Subscribers(f.user.ID))
	assert.Equal(t, 1, f.feed.Subscribers(bob.ID))
}

func TestManager_CloseDisposesAll(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDB())

	f := newFixture(t)
	t1 := f.signIn(t, f.user, "")
	t2 := f.signIn(t, f.user, "")
	require.Equal(t, 2, f.manager.Len())

	f.manager.Close()

	assert.Zero(t, f.manager.Len())
	assert.Equal(t, 0, f.feed.Subscribers(f.user.ID))
	assert.ElementsMatch(t, []string{t1.SessionID, t2.SessionID}, f.publisher.Closed())

	// После остановки новые входы сессий не создают
	t3 := f.signIn(t, f.user, "")
	_, err := f.manager.Get(t3.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestManager_HandleAction(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDB())

	f := newFixture(t)
	defer f.manager.Close()

	a := helpers.CreateArtwork(t, f.db, f.user.ID, "A")
	b := helpers.CreateArtwork(t, f.db, f.user.ID, "B")
	c := helpers.CreateArtwork(t, f.db, f.user.ID, "C")

	tok := f.signIn(t, f.user, "")
	s, err := f.manager.Get(tok.SessionID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Model.Len() == 3 }, time.Second, 5*time.Millisecond)

	ctx := context.Background()
	out, err := f.manager.HandleAction(ctx, tok.SessionID, "reorder", json.RawMessage(`{"source":0,"destination":2}`))
	require.NoError(t, err)
	assert.Nil(t, out)

	var order []string
	for _, item := range s.Model.Items() {
		order = append(order, item.ID)
	}
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, order)

	out, err = f.manager.HandleAction(ctx, tok.SessionID, "snapshot", nil)
	require.NoError(t, err)
	update, ok := out.(session.Update)
	require.True(t, ok)
	assert.Equal(t, "snapshot", update.Type)

	_, err = f.manager.HandleAction(ctx, tok.SessionID, "reorder", json.RawMessage(`nope`))
	assert.Error(t, err)
	_, err = f.manager.HandleAction(ctx, tok.SessionID, "explode", nil)
	if appErr, ok := apperrors.AsAppError(err); assert.True(t, ok) {
		assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
	}
	_, err = f.manager.HandleAction(ctx, "missing", "snapshot", nil)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
