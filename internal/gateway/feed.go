package gateway

import (
	"context"
	"sync"
)

// ArtworkAdded - событие о вставке работы.
type ArtworkAdded struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// Feed доставляет события о новых работах подписчикам одного владельца.
type Feed interface {
	Publish(ctx context.Context, event ArtworkAdded) error
	Subscribe(ownerID string, handler func(ArtworkAdded)) func()
}

// LocalFeed - доставка в пределах процесса.
// Используется напрямую для SQLite и как fan-out внутри PGFeed.
type LocalFeed struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]func(ArtworkAdded)
	nextID int64
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[string]map[int64]func(ArtworkAdded))}
}

// Publish синхронно вызывает обработчики подписчиков владельца.
func (f *LocalFeed) Publish(_ context.Context, event ArtworkAdded) error {
	f.dispatch(event)
	return nil
}

func (f *LocalFeed) dispatch(event ArtworkAdded) {
	f.mu.RLock()
	handlers := make([]func(ArtworkAdded), 0, len(f.subs[event.OwnerID]))
	for _, h := range f.subs[event.OwnerID] {
		handlers = append(handlers, h)
	}
	f.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

func (f *LocalFeed) Subscribe(ownerID string, handler func(ArtworkAdded)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	if f.subs[ownerID] == nil {
		f.subs[ownerID] = make(map[int64]func(ArtworkAdded))
	}
	f.subs[ownerID][id] = handler
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[ownerID], id)
			if len(f.subs[ownerID]) == 0 {
				delete(f.subs, ownerID)
			}
		})
	}
}

// Subscribers возвращает число активных подписок владельца.
func (f *LocalFeed) Subscribers(ownerID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[ownerID])
}
