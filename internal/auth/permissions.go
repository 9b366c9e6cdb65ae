package auth

import "artfolio_backend/internal/models"

// CanModifyArtwork - менять и удалять работу может только её владелец.
func CanModifyArtwork(userID string, artwork *models.Artwork) bool {
	return artwork != nil && userID != "" && artwork.OwnerID == userID
}
