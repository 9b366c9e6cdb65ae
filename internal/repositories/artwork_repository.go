package repositories

import (
	"errors"

	"artfolio_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrArtworkNotFound = errors.New("artwork not found")
	ErrEmptyPatch      = errors.New("artwork patch is empty")
)

type ArtworkRepository interface {
	Create(db *gorm.DB, artwork *models.Artwork) error
	FindByID(db *gorm.DB, id string) (*models.Artwork, error)
	FindByOwner(db *gorm.DB, ownerID string) ([]models.Artwork, error)
	FindInPortfolio(db *gorm.DB, ownerID string) ([]models.Artwork, error)
	Update(db *gorm.DB, id string, patch models.ArtworkPatch) error
	UpdateVariants(db *gorm.DB, id string, variants map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
}

type ArtworkRepositoryImpl struct{}

func NewArtworkRepository() ArtworkRepository {
	return &ArtworkRepositoryImpl{}
}

func (r *ArtworkRepositoryImpl) Create(db *gorm.DB, artwork *models.Artwork) error {
	return db.Create(artwork).Error
}

func (r *ArtworkRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Artwork, error) {
	var artwork models.Artwork
	err := db.First(&artwork, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtworkNotFound
		}
		return nil, err
	}
	return &artwork, nil
}

// FindByOwner возвращает работы владельца в порядке хранилища (created_at, id).
func (r *ArtworkRepositoryImpl) FindByOwner(db *gorm.DB, ownerID string) ([]models.Artwork, error) {
	var artworks []models.Artwork
	err := db.Where("owner_id = ?", ownerID).
		Order("created_at ASC").Order("id ASC").
		Find(&artworks).Error
	return artworks, err
}

func (r *ArtworkRepositoryImpl) FindInPortfolio(db *gorm.DB, ownerID string) ([]models.Artwork, error) {
	var artworks []models.Artwork
	err := db.Where("owner_id = ? AND in_portfolio = ?", ownerID, true).
		Order("created_at ASC").Order("id ASC").
		Find(&artworks).Error
	return artworks, err
}

// Update применяет частичное обновление. owner_id в патч не входит.
func (r *ArtworkRepositoryImpl) Update(db *gorm.DB, id string, patch models.ArtworkPatch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}
	result := db.Model(&models.Artwork{}).Where("id = ?", id).Updates(patch.Columns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtworkNotFound
	}
	return nil
}

func (r *ArtworkRepositoryImpl) UpdateVariants(db *gorm.DB, id string, variants map[string]interface{}) error {
	result := db.Model(&models.Artwork{}).Where("id = ?", id).Update("variants", datatypes.JSONMap(variants))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtworkNotFound
	}
	return nil
}

func (r *ArtworkRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Artwork{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtworkNotFound
	}
	return nil
}
