package dto

import (
	"artfolio_backend/internal/models"
)

// UpdateArtworkRequest - частичное изменение карточки работы
type UpdateArtworkRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,not-blank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Medium      *string `json:"medium,omitempty" validate:"omitempty,max=255"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Date        *string `json:"date,omitempty" validate:"omitempty,max=64"`
	InPortfolio *bool   `json:"in_portfolio,omitempty"`
}

// Patch переводит запрос в патч хранилища
func (r *UpdateArtworkRequest) Patch() models.ArtworkPatch {
	return models.ArtworkPatch{
		Title:       r.Title,
		Description: r.Description,
		Medium:      r.Medium,
		Location:    r.Location,
		Date:        r.Date,
		InPortfolio: r.InPortfolio,
	}
}

// ArtworkListResponse - работы владельца
type ArtworkListResponse struct {
	Artworks []models.Artwork `json:"artworks"`
	Total    int              `json:"total"`
}

// PublicPortfolioResponse - опубликованное портфолио (режим предпросмотра)
type PublicPortfolioResponse struct {
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	Artworks    []models.Artwork `json:"artworks"`
}

// ArtworkUpload - файл работы, прочитанный из multipart-формы или черновика
type ArtworkUpload struct {
	FileName    string
	ContentType string
	Data        []byte

	// Пустые значения заменяются именем файла и описанием по умолчанию
	Title       string
	Description string
}
