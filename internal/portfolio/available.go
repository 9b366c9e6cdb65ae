package portfolio

import (
	"context"
	"sync"

	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"
	"artfolio_backend/pkg/apperrors"
)

// AvailablePanel - работы владельца, которых сейчас нет в списке модели.
type AvailablePanel struct {
	store Store
	model *Model

	mu    sync.Mutex
	items []models.Artwork
}

func NewAvailablePanel(store Store, model *Model) *AvailablePanel {
	return &AvailablePanel{store: store, model: model}
}

// Refresh перечитывает работы владельца и оставляет те, которых нет в модели.
func (p *AvailablePanel) Refresh(ctx context.Context, userID string) error {
	records, err := p.store.FindArtworks(ctx, userID)
	if err != nil {
		logger.CtxWithError(ctx, "failed to refresh available artworks", err, "owner_id", userID)
		return err
	}

	items := make([]models.Artwork, 0, len(records))
	for _, r := range records {
		if p.model.Contains(r.ID) {
			continue
		}
		items = append(items, r.Clone())
	}

	p.mu.Lock()
	p.items = items
	p.mu.Unlock()
	return nil
}

// Items возвращает доступные работы. Фильтр по модели применяется при каждом
// чтении: работа, попавшая в модель через подписку, здесь не показывается.
func (p *AvailablePanel) Items() []models.Artwork {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Artwork, 0, len(p.items))
	for _, r := range p.items {
		if p.model.Contains(r.ID) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Add переносит работу из панели в модель.
func (p *AvailablePanel) Add(ctx context.Context, id string) error {
	p.mu.Lock()
	idx := -1
	for i := range p.items {
		if p.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || p.model.Contains(id) {
		p.mu.Unlock()
		return apperrors.ErrNotAvailable
	}
	record := p.items[idx]
	p.items = append(p.items[:idx], p.items[idx+1:]...)
	p.mu.Unlock()

	p.model.AddFromAvailable(ctx, record)
	return nil
}
