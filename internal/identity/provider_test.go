package identity

import (
	"context"
	"testing"
	"time"

	"artfolio_backend/internal/auth"
	"artfolio_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider() *Provider {
	return NewProvider(auth.NewTokenIssuer("test-secret", time.Hour))
}

func TestProvider_SignInEmitsAndVerifies(t *testing.T) {
	p := newProvider()
	var events []Event
	unsubscribe := p.OnAuthStateChanged(func(e Event) { events = append(events, e) })
	defer unsubscribe()

	tok, err := p.SignIn(context.Background(), User{ID: "u1", Username: "alice"}, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tok.SessionID, events[0].SessionID)
	assert.Equal(t, "alice", events[0].User.Username)

	claims, err := p.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	user, ok := p.CurrentUser(tok.SessionID)
	assert.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}

func TestProvider_SignOutRevokesToken(t *testing.T) {
	p := newProvider()
	var events []Event
	p.OnAuthStateChanged(func(e Event) { events = append(events, e) })

	tok, err := p.SignIn(context.Background(), User{ID: "u1"}, "")
	require.NoError(t, err)
	other, err := p.SignIn(context.Background(), User{ID: "u2"}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{tok.SessionID, other.SessionID}, p.SessionIDs())

	assert.True(t, p.SignOut(context.Background(), tok.SessionID))
	assert.Equal(t, []string{other.SessionID}, p.SessionIDs())
	assert.False(t, p.SignOut(context.Background(), tok.SessionID))

	require.Len(t, events, 3)
	assert.Nil(t, events[2].User)

	_, err = p.Verify(tok.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestProvider_IdentityChangeInSameSession(t *testing.T) {
	p := newProvider()
	var events []Event
	p.OnAuthStateChanged(func(e Event) { events = append(events, e) })

	first, err := p.SignIn(context.Background(), User{ID: "u1"}, "")
	require.NoError(t, err)
	second, err := p.SignIn(context.Background(), User{ID: "u2"}, first.SessionID)
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	require.Len(t, events, 2)
	assert.Equal(t, "u2", events[1].User.ID)

	// Токен прежнего пользователя больше не действует
	_, err = p.Verify(first.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	_, err = p.Verify(second.AccessToken)
	assert.NoError(t, err)
}

func TestProvider_UnknownSessionIDStartsNewSession(t *testing.T) {
	p := newProvider()
	tok, err := p.SignIn(context.Background(), User{ID: "u1"}, "forged")
	require.NoError(t, err)
	assert.NotEqual(t, "forged", tok.SessionID)
}

func TestProvider_Unsubscribe(t *testing.T) {
	p := newProvider()
	calls := 0
	unsubscribe := p.OnAuthStateChanged(func(Event) { calls++ })
	unsubscribe()
	unsubscribe()

	_, err := p.SignIn(context.Background(), User{ID: "u1"}, "")
	require.NoError(t, err)
	assert.Zero(t, calls)
}
