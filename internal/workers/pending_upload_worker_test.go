package workers_test

import (
	"context"
	"testing"
	"time"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/session"
	"artfolio_backend/internal/workers"
	"artfolio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type nopPublisher struct{}

func (nopPublisher) SendToSession(string, any) {}
func (nopPublisher) CloseSession(string)       {}

func TestPendingUploadWorker_Sweep(t *testing.T) {
	db := helpers.NewTestDB(t)
	gw := gateway.NewSQLGateway(db, gateway.NewLocalFeed())
	provider := identity.NewProvider(auth.NewTokenIssuer("secret", time.Hour))
	manager := session.NewManager(gw, provider, nopPublisher{}, session.Options{
		MaxPendingUploads: 5,
		PendingUploadTTL:  time.Minute,
	})
	defer manager.Close()

	user := helpers.CreateUser(t, db, "alice", "password1")
	token, err := provider.SignIn(context.Background(), identity.User{ID: user.ID, UID: user.UID, Username: user.Username}, "")
	require.NoError(t, err)

	s, err := manager.Get(token.SessionID)
	require.NoError(t, err)
	_, err = s.Uploads.Stage("a.png", "image/png", []byte("x"))
	require.NoError(t, err)

	w := workers.NewPendingUploadWorker(manager, time.Hour)

	assert.Zero(t, w.SweepAt(time.Now()), "fresh drafts stay")
	assert.Equal(t, 1, s.Uploads.Len())

	assert.Equal(t, 1, w.SweepAt(time.Now().Add(2*time.Minute)))
	assert.Zero(t, s.Uploads.Len())
}

func TestPendingUploadWorker_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := workers.NewPendingUploadWorker(emptyLister{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

type emptyLister struct{}

func (emptyLister) Sessions() []*session.Session { return nil }
