// Package gateway - доступ к удалённому хранилищу документов (users, artworks).
//
// Остальной код видит хранилище только через интерфейс Gateway:
// insert, findOne, findAll, updateById, deleteById и подписку на добавления.
package gateway

import (
	"context"

	"artfolio_backend/internal/models"
)

// Unsubscribe освобождает канал подписки. Повторный вызов безопасен.
// Нельзя вызывать изнутри обработчика onAdd той же подписки.
type Unsubscribe func()

// Gateway - типизированный доступ к коллекциям users и artworks.
type Gateway interface {
	InsertArtwork(ctx context.Context, artwork *models.Artwork) (string, error)
	InsertUser(ctx context.Context, user *models.User) (string, error)

	// FindUser и FindArtwork возвращают nil, nil, если запись не найдена.
	FindUser(ctx context.Context, filter models.UserFilter) (*models.User, error)
	FindArtwork(ctx context.Context, id string) (*models.Artwork, error)

	// FindArtworks возвращает работы владельца в порядке хранилища (created_at, id).
	FindArtworks(ctx context.Context, ownerID string) ([]models.Artwork, error)
	FindPortfolio(ctx context.Context, ownerID string) ([]models.Artwork, error)

	UpdateArtwork(ctx context.Context, id string, patch models.ArtworkPatch) error
	SetArtworkVariants(ctx context.Context, id string, variants map[string]interface{}) error
	DeleteArtwork(ctx context.Context, id string) error

	// SubscribeArtworkAdditions сначала отдаёт уже существующие работы владельца,
	// затем новые по мере вставки. Одна и та же работа может прийти дважды.
	SubscribeArtworkAdditions(ctx context.Context, ownerID string, onAdd func(models.Artwork)) (Unsubscribe, error)
}
