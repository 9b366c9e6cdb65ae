package portfolio

import (
	"context"
	"errors"
	"sync"

	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/models"
)

type storeCall struct {
	Op    string
	ID    string
	Patch models.ArtworkPatch
}

type fakeStore struct {
	mu           sync.Mutex
	records      []models.Artwork
	calls        []storeCall
	findErr      error
	writeErr     error
	subscribeErr error
	onAdd        func(models.Artwork)
	subscribes   int
	unsubscribes int

	// blockWrites задерживает запись до закрытия канала
	blockWrites chan struct{}
}

func newFakeStore(records ...models.Artwork) *fakeStore {
	return &fakeStore{records: records}
}

func (s *fakeStore) FindArtworks(_ context.Context, ownerID string) ([]models.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.Artwork
	for _, r := range s.records {
		if r.OwnerID == ownerID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateArtwork(_ context.Context, id string, patch models.ArtworkPatch) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{Op: "update", ID: id, Patch: patch})
	return s.writeErr
}

func (s *fakeStore) DeleteArtwork(_ context.Context, id string) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{Op: "delete", ID: id})
	return s.writeErr
}

func (s *fakeStore) wait() {
	s.mu.Lock()
	ch := s.blockWrites
	s.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (s *fakeStore) SubscribeArtworkAdditions(_ context.Context, _ string, onAdd func(models.Artwork)) (gateway.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	s.subscribes++
	s.onAdd = onAdd
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.unsubscribes++
			s.onAdd = nil
		})
	}, nil
}

// emit имитирует событие "добавлено" из ленты
func (s *fakeStore) emit(r models.Artwork) bool {
	s.mu.Lock()
	onAdd := s.onAdd
	s.mu.Unlock()
	if onAdd == nil {
		return false
	}
	onAdd(r)
	return true
}

func (s *fakeStore) Calls() []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeCall(nil), s.calls...)
}

func artwork(id, owner string) models.Artwork {
	return models.Artwork{
		BaseModel:   models.BaseModel{ID: id},
		OwnerID:     owner,
		Title:       "title " + id,
		Description: "description " + id,
	}
}

func ids(items []models.Artwork) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}

var errRemote = errors.New("remote unavailable")
