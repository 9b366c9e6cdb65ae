package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	ArtworkHandler *ArtworkHandler
	SessionHandler *SessionHandler
	FileHandler    *FileHandler
	HealthHandler  *HealthHandler
}
