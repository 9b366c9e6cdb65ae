package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"artfolio_backend/internal/config"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// Storage - хранилище файлов изображений
type Storage interface {
	// Save сохраняет файл по ключу
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Open открывает файл для чтения
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete удаляет файл; отсутствие файла ошибкой не считается
	Delete(ctx context.Context, key string) error

	// Exists проверяет наличие файла
	Exists(ctx context.Context, key string) (bool, error)

	// URL возвращает публичный адрес файла
	URL(key string) string
}

// NewStorage создает хранилище по секции storage конфига
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(R2Config{
			AccountID: cfg.Storage.AccountID,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			BaseURL:   cfg.Storage.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// CleanKey нормализует ключ и запрещает выход за пределы хранилища
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
	if key == "" || key == "." {
		return "", ErrInvalidPath
	}
	return key, nil
}
