package portfolio

import (
	"context"
	"sync"

	"artfolio_backend/internal/models"
	"artfolio_backend/pkg/apperrors"
)

// Draft - поля карточки, открытой в редакторе.
type Draft struct {
	ArtworkID   string `json:"artwork_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Medium      string `json:"medium"`
	Location    string `json:"location"`
	Date        string `json:"date"`
}

// Editor - модальный редактор одной работы.
type Editor struct {
	model *Model

	mu    sync.Mutex
	open  bool
	draft Draft
}

func NewEditor(model *Model) *Editor {
	return &Editor{model: model}
}

// Open заполняет черновик из записи. Прежний черновик отбрасывается.
func (e *Editor) Open(record models.Artwork) Draft {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.open = true
	e.draft = Draft{
		ArtworkID:   record.ID,
		Title:       record.Title,
		Description: record.Description,
		Medium:      record.Medium,
		Location:    record.Location,
		Date:        record.Date,
	}
	return e.draft
}

// Draft возвращает текущий черновик; false, если редактор закрыт.
func (e *Editor) Draft() (Draft, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft, e.open
}

// Save накладывает изменения на черновик, применяет их к модели,
// отправляет частичное обновление и закрывает редактор.
func (e *Editor) Save(ctx context.Context, changes models.ArtworkPatch) (Draft, error) {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return Draft{}, apperrors.ErrEditorClosed
	}

	d := e.draft
	if changes.Title != nil {
		d.Title = *changes.Title
	}
	if changes.Description != nil {
		d.Description = *changes.Description
	}
	if changes.Medium != nil {
		d.Medium = *changes.Medium
	}
	if changes.Location != nil {
		d.Location = *changes.Location
	}
	if changes.Date != nil {
		d.Date = *changes.Date
	}
	e.open = false
	e.draft = Draft{}
	e.mu.Unlock()

	patch := models.ArtworkPatch{
		Title:       models.String(d.Title),
		Description: models.String(d.Description),
		Medium:      models.String(d.Medium),
	}
	if changes.Location != nil {
		patch.Location = changes.Location
	}
	if changes.Date != nil {
		patch.Date = changes.Date
	}

	e.model.ApplyEdit(ctx, d.ArtworkID, patch)
	return d, nil
}

// Cancel закрывает редактор без записи.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
	e.draft = Draft{}
}
