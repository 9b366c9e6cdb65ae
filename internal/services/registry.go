package services

import (
	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService    AuthService
	ArtworkService ArtworkService
}

func NewServiceContainer(store gateway.Gateway, provider *identity.Provider, files storage.Storage, upload UploadConfig) *ServiceContainer {
	return &ServiceContainer{
		AuthService:    NewAuthService(store, provider),
		ArtworkService: NewArtworkService(store, files, upload),
	}
}
