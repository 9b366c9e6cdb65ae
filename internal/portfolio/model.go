package portfolio

import (
	"context"
	"errors"
	"sync"

	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// ErrModelClosed возвращается при подписке закрытой модели.
var ErrModelClosed = errors.New("portfolio model is closed")

// Model - упорядоченный список работ пользователя.
// Без дубликатов по id; порядок меняется только через Reorder.
type Model struct {
	store Store

	mu          sync.Mutex
	ownerID     string
	items       []models.Artwork
	unsubscribe gateway.Unsubscribe
	closed      bool
	onChange    func()

	writes errgroup.Group
}

func NewModel(store Store) *Model {
	return &Model{store: store}
}

// OnChange задаёт функцию, вызываемую после каждого локального изменения.
// Вызывается без удержания блокировки модели.
func (m *Model) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Model) changed() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Load заменяет список работами владельца в порядке хранилища.
// При ошибке список не меняется.
func (m *Model) Load(ctx context.Context, userID string) error {
	records, err := m.store.FindArtworks(ctx, userID)
	if err != nil {
		logger.CtxWithError(ctx, "failed to load portfolio", err, "owner_id", userID)
		return err
	}

	items := make([]models.Artwork, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		items = append(items, r.Clone())
	}

	m.mu.Lock()
	m.ownerID = userID
	m.items = items
	m.mu.Unlock()

	m.changed()
	return nil
}

// Subscribe открывает канал новых работ владельца, предварительно закрыв прежний.
// Каждая работа добавляется в конец не более одного раза.
func (m *Model) Subscribe(ctx context.Context, userID string) error {
	m.Unsubscribe()

	unsubscribe, err := m.store.SubscribeArtworkAdditions(ctx, userID, m.appendFromFeed)
	if err != nil {
		logger.CtxWithError(ctx, "failed to subscribe to artwork additions", err, "owner_id", userID)
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		unsubscribe()
		return ErrModelClosed
	}
	prev := m.unsubscribe
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	// Параллельный Subscribe мог успеть выставить свой канал
	if prev != nil {
		prev()
	}
	return nil
}

// Unsubscribe закрывает канал подписки, если он открыт.
func (m *Model) Unsubscribe() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Subscribed сообщает, открыт ли канал подписки.
func (m *Model) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribe != nil
}

func (m *Model) appendFromFeed(record models.Artwork) {
	if m.appendUnique(record) {
		m.changed()
	}
}

func (m *Model) appendUnique(record models.Artwork) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(record.ID) >= 0 {
		return false
	}
	m.items = append(m.items, record.Clone())
	return true
}

// indexOf вызывается под m.mu
func (m *Model) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Reorder перемещает элемент с позиции src на позицию dst.
// Если хотя бы один индекс вне диапазона, ничего не делает и возвращает false.
// В хранилище порядок не сохраняется.
func (m *Model) Reorder(src, dst int) bool {
	m.mu.Lock()
	n := len(m.items)
	if src < 0 || src >= n || dst < 0 || dst >= n {
		m.mu.Unlock()
		return false
	}

	item := m.items[src]
	m.items = append(m.items[:src], m.items[src+1:]...)
	m.items = append(m.items, models.Artwork{})
	copy(m.items[dst+1:], m.items[dst:])
	m.items[dst] = item
	m.mu.Unlock()

	m.changed()
	return true
}

// Remove убирает работу из списка и удаляет её в хранилище в фоне.
// Неизвестный id - ничего не делает и не обращается к хранилищу.
func (m *Model) Remove(ctx context.Context, id string) bool {
	m.mu.Lock()
	idx := m.indexOf(id)
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	m.mu.Unlock()

	m.changed()
	m.write(ctx, "delete", id, func(ctx context.Context) error {
		return m.store.DeleteArtwork(ctx, id)
	})
	return true
}

// AddFromAvailable добавляет работу в конец списка и помечает её in_portfolio в хранилище.
func (m *Model) AddFromAvailable(ctx context.Context, record models.Artwork) {
	record = record.Clone()
	record.InPortfolio = models.Bool(true)

	if m.appendUnique(record) {
		m.changed()
	}
	m.write(ctx, "add", record.ID, func(ctx context.Context) error {
		return m.store.UpdateArtwork(ctx, record.ID, models.ArtworkPatch{InPortfolio: models.Bool(true)})
	})
}

// ApplyEdit накладывает патч на работу в списке и отправляет частичное обновление.
func (m *Model) ApplyEdit(ctx context.Context, id string, patch models.ArtworkPatch) {
	if patch.IsEmpty() {
		return
	}

	m.mu.Lock()
	idx := m.indexOf(id)
	if idx >= 0 {
		patch.Apply(&m.items[idx])
	}
	m.mu.Unlock()

	if idx >= 0 {
		m.changed()
	}
	m.write(ctx, "update", id, func(ctx context.Context) error {
		return m.store.UpdateArtwork(ctx, id, patch)
	})
}

// write запускает запись в хранилище в фоне. Ошибка только логируется.
func (m *Model) write(ctx context.Context, op, id string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	m.writes.Go(func() error {
		if err := fn(ctx); err != nil {
			logger.CtxWithError(ctx, "portfolio remote write failed", err, "op", op, "artwork_id", id)
		}
		return nil
	})
}

// Items возвращает копию списка.
func (m *Model) Items() []models.Artwork {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Artwork, len(m.items))
	for i := range m.items {
		out[i] = m.items[i].Clone()
	}
	return out
}

// Get возвращает копию работы из списка.
func (m *Model) Get(id string) (models.Artwork, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return models.Artwork{}, false
	}
	return m.items[idx].Clone(), true
}

func (m *Model) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(id) >= 0
}

func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Model) OwnerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownerID
}

// Flush ждёт завершения фоновых записей.
func (m *Model) Flush() {
	_ = m.writes.Wait()
}

// Close закрывает подписку и дожидается фоновых записей.
func (m *Model) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.Unsubscribe()
	m.Flush()
}
