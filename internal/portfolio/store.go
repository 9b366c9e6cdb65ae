// Package portfolio - состояние редактора портфолио одной сессии:
// список работ, панель доступных работ, редактор карточки и удаление с подтверждением.
//
// Локальные изменения применяются сразу, запись в хранилище идёт в фоне
// и не откатывается при ошибке.
package portfolio

import (
	"context"

	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/models"
)

// Store - часть хранилища, которая нужна состоянию портфолио.
type Store interface {
	FindArtworks(ctx context.Context, ownerID string) ([]models.Artwork, error)
	UpdateArtwork(ctx context.Context, id string, patch models.ArtworkPatch) error
	DeleteArtwork(ctx context.Context, id string) error
	SubscribeArtworkAdditions(ctx context.Context, ownerID string, onAdd func(models.Artwork)) (gateway.Unsubscribe, error)
}
