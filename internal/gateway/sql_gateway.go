package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/repositories"

	"gorm.io/gorm"
)

const subscriptionBuffer = 64

// SQLGateway - Gateway поверх GORM (Postgres или SQLite).
type SQLGateway struct {
	db       *gorm.DB
	feed     Feed
	artworks repositories.ArtworkRepository
	users    repositories.UserRepository
}

func NewSQLGateway(db *gorm.DB, feed Feed) *SQLGateway {
	return &SQLGateway{
		db:       db,
		feed:     feed,
		artworks: repositories.NewArtworkRepository(),
		users:    repositories.NewUserRepository(),
	}
}

func (g *SQLGateway) InsertArtwork(ctx context.Context, artwork *models.Artwork) (string, error) {
	if err := g.artworks.Create(g.db.WithContext(ctx), artwork); err != nil {
		return "", fmt.Errorf("insert artwork: %w", err)
	}

	event := ArtworkAdded{ID: artwork.ID, OwnerID: artwork.OwnerID}
	if err := g.feed.Publish(ctx, event); err != nil {
		// Запись уже сохранена; подписчики увидят её при следующей загрузке
		logger.CtxWithError(ctx, "failed to publish artwork addition", err, "artwork_id", artwork.ID)
	}
	return artwork.ID, nil
}

func (g *SQLGateway) InsertUser(ctx context.Context, user *models.User) (string, error) {
	if err := g.users.Create(g.db.WithContext(ctx), user); err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func (g *SQLGateway) FindUser(ctx context.Context, filter models.UserFilter) (*models.User, error) {
	user, err := g.users.FindOne(g.db.WithContext(ctx), filter)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (g *SQLGateway) FindArtwork(ctx context.Context, id string) (*models.Artwork, error) {
	artwork, err := g.artworks.FindByID(g.db.WithContext(ctx), id)
	if errors.Is(err, repositories.ErrArtworkNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find artwork: %w", err)
	}
	return artwork, nil
}

func (g *SQLGateway) FindArtworks(ctx context.Context, ownerID string) ([]models.Artwork, error) {
	artworks, err := g.artworks.FindByOwner(g.db.WithContext(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("find artworks: %w", err)
	}
	return artworks, nil
}

func (g *SQLGateway) FindPortfolio(ctx context.Context, ownerID string) ([]models.Artwork, error) {
	artworks, err := g.artworks.FindInPortfolio(g.db.WithContext(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("find portfolio: %w", err)
	}
	return artworks, nil
}

func (g *SQLGateway) UpdateArtwork(ctx context.Context, id string, patch models.ArtworkPatch) error {
	if err := g.artworks.Update(g.db.WithContext(ctx), id, patch); err != nil {
		return fmt.Errorf("update artwork %s: %w", id, err)
	}
	return nil
}

func (g *SQLGateway) SetArtworkVariants(ctx context.Context, id string, variants map[string]interface{}) error {
	if err := g.artworks.UpdateVariants(g.db.WithContext(ctx), id, variants); err != nil {
		return fmt.Errorf("update artwork variants %s: %w", id, err)
	}
	return nil
}

func (g *SQLGateway) DeleteArtwork(ctx context.Context, id string) error {
	if err := g.artworks.Delete(g.db.WithContext(ctx), id); err != nil {
		return fmt.Errorf("delete artwork %s: %w", id, err)
	}
	return nil
}

// SubscribeArtworkAdditions подписывается на ленту до чтения существующих
// работ, поэтому вставка во время повтора может прийти дважды.
// Обработчик вызывается из одной горутины подписки, по порядку.
func (g *SQLGateway) SubscribeArtworkAdditions(ctx context.Context, ownerID string, onAdd func(models.Artwork)) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ids := make(chan string, subscriptionBuffer)

	stopFeed := g.feed.Subscribe(ownerID, func(event ArtworkAdded) {
		select {
		case ids <- event.ID:
		case <-subCtx.Done():
		}
	})

	existing, err := g.FindArtworks(ctx, ownerID)
	if err != nil {
		stopFeed()
		cancel()
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		for _, artwork := range existing {
			if subCtx.Err() != nil {
				return
			}
			onAdd(artwork)
		}

		for {
			select {
			case <-subCtx.Done():
				return
			case id := <-ids:
				artwork, err := g.FindArtwork(subCtx, id)
				if err != nil {
					if subCtx.Err() == nil {
						logger.CtxWithError(subCtx, "failed to fetch added artwork", err, "artwork_id", id)
					}
					continue
				}
				// Удалена между вставкой и доставкой
				if artwork == nil {
					continue
				}
				onAdd(*artwork)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopFeed()
			cancel()
			wg.Wait()
		})
	}, nil
}

var _ Gateway = (*SQLGateway)(nil)
