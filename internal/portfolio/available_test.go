package portfolio

import (
	"context"
	"testing"

	"artfolio_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailablePanel_RefreshIsSetDifference(t *testing.T) {
	store := newFakeStore(artwork("A", "u1"), artwork("B", "u1"))
	m := loadedModel(t, store, "u1")

	store.records = append(store.records, artwork("C", "u1"), artwork("D", "u1"), artwork("Z", "u2"))
	p := NewAvailablePanel(store, m)
	require.NoError(t, p.Refresh(context.Background(), "u1"))

	assert.Equal(t, []string{"C", "D"}, ids(p.Items()))
}

func TestAvailablePanel_AddMovesToModelExactlyOnce(t *testing.T) {
	store := newFakeStore(artwork("A", "u1"))
	m := loadedModel(t, store, "u1")
	store.records = append(store.records, artwork("C", "u1"))

	p := NewAvailablePanel(store, m)
	require.NoError(t, p.Refresh(context.Background(), "u1"))

	require.NoError(t, p.Add(context.Background(), "C"))
	assert.Equal(t, []string{"A", "C"}, ids(m.Items()))
	assert.Empty(t, p.Items())

	added, ok := m.Get("C")
	require.True(t, ok)
	assert.True(t, added.IsInPortfolio())

	assert.ErrorIs(t, p.Add(context.Background(), "C"), apperrors.ErrNotAvailable)
	assert.Equal(t, []string{"A", "C"}, ids(m.Items()))

	m.Flush()
	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "update", calls[0].Op)
	assert.Equal(t, "C", calls[0].ID)
	require.NotNil(t, calls[0].Patch.InPortfolio)
	assert.True(t, *calls[0].Patch.InPortfolio)
}

func TestAvailablePanel_ItemsHidesArtworkArrivedBySubscription(t *testing.T) {
	store := newFakeStore(artwork("A", "u1"))
	m := loadedModel(t, store, "u1")
	require.NoError(t, m.Subscribe(context.Background(), "u1"))

	store.records = append(store.records, artwork("C", "u1"))
	p := NewAvailablePanel(store, m)
	require.NoError(t, p.Refresh(context.Background(), "u1"))
	require.Equal(t, []string{"C"}, ids(p.Items()))

	store.emit(artwork("C", "u1"))
	assert.Empty(t, p.Items())
	assert.ErrorIs(t, p.Add(context.Background(), "C"), apperrors.ErrNotAvailable)
}

func TestAvailablePanel_RefreshError(t *testing.T) {
	store := newFakeStore()
	m := NewModel(store)
	p := NewAvailablePanel(store, m)

	store.findErr = errRemote
	assert.ErrorIs(t, p.Refresh(context.Background(), "u1"), errRemote)
	assert.Empty(t, p.Items())
}
