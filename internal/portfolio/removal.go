package portfolio

import (
	"context"
	"sync"

	"artfolio_backend/pkg/apperrors"
)

type RemovalState string

const (
	RemovalIdle                RemovalState = "idle"
	RemovalPendingConfirmation RemovalState = "pending_confirmation"
)

// RemovalStatus - состояние контроллера удаления.
type RemovalStatus struct {
	State     RemovalState `json:"state"`
	ArtworkID string       `json:"artwork_id,omitempty"`
}

// RemovalController - удаление с подтверждением:
// Idle -> PendingConfirmation(id) -> Idle (отмена или подтверждение).
type RemovalController struct {
	model *Model

	mu      sync.Mutex
	pending string
}

func NewRemovalController(model *Model) *RemovalController {
	return &RemovalController{model: model}
}

// Request запоминает работу для удаления. Новый запрос заменяет прежний.
func (r *RemovalController) Request(id string) RemovalStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = id
	return r.statusLocked()
}

// Cancel сбрасывает ожидающее удаление.
func (r *RemovalController) Cancel() RemovalStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = ""
	return r.statusLocked()
}

// Confirm удаляет ожидающую работу и возвращает её id.
func (r *RemovalController) Confirm(ctx context.Context) (string, error) {
	r.mu.Lock()
	id := r.pending
	r.pending = ""
	r.mu.Unlock()

	if id == "" {
		return "", apperrors.ErrNoPendingRemoval
	}
	r.model.Remove(ctx, id)
	return id, nil
}

func (r *RemovalController) Status() RemovalStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *RemovalController) statusLocked() RemovalStatus {
	if r.pending == "" {
		return RemovalStatus{State: RemovalIdle}
	}
	return RemovalStatus{State: RemovalPendingConfirmation, ArtworkID: r.pending}
}
