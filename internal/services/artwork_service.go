package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/config"
	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/imageprocessor"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/portfolio"
	"artfolio_backend/internal/services/dto"
	"artfolio_backend/internal/storage"
	"artfolio_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// ============================================
// ARTWORK SERVICE
// ============================================

type ArtworkService interface {
	// Upload сохраняет файл, создаёт запись и производные изображения
	Upload(ctx context.Context, ownerID string, req *dto.ArtworkUpload) (*models.Artwork, error)

	// ValidateFile проверяет тип и размер до чтения файла целиком
	ValidateFile(contentType string, size int64) error

	// Committer загружает черновики сессии от имени владельца
	Committer(ownerID string) portfolio.UploadCommitter

	List(ctx context.Context, ownerID string) (*dto.ArtworkListResponse, error)
	Get(ctx context.Context, userID, artworkID string) (*models.Artwork, error)
	Update(ctx context.Context, userID, artworkID string, req *dto.UpdateArtworkRequest) (*models.Artwork, error)
	Delete(ctx context.Context, userID, artworkID string) error

	// PublicPortfolio - работы с in_portfolio = true для страницы предпросмотра
	PublicPortfolio(ctx context.Context, username string) (*dto.PublicPortfolioResponse, error)
}

// ============================================
// КОНФИГУРАЦИЯ
// ============================================

type UploadConfig struct {
	MaxFileSize    int64
	AllowedTypes   []string
	ImageQuality   int
	ThumbnailWidth int
}

func UploadConfigFrom(cfg *config.Config) UploadConfig {
	return UploadConfig{
		MaxFileSize:    cfg.Upload.MaxSize,
		AllowedTypes:   cfg.Upload.AllowedTypes,
		ImageQuality:   cfg.Upload.ImageQuality,
		ThumbnailWidth: cfg.Upload.ThumbnailWidth,
	}
}

type artworkService struct {
	store     gateway.Gateway
	storage   storage.Storage
	processor *imageprocessor.Processor
	config    UploadConfig
	variants  []imageprocessor.Variant
}

func NewArtworkService(store gateway.Gateway, files storage.Storage, cfg UploadConfig) ArtworkService {
	thumbnail := imageprocessor.VariantThumbnail
	if cfg.ThumbnailWidth > 0 {
		thumbnail.MaxWidth = cfg.ThumbnailWidth
	}

	return &artworkService{
		store:     store,
		storage:   files,
		processor: imageprocessor.NewProcessor(cfg.ImageQuality),
		config:    cfg,
		variants:  []imageprocessor.Variant{thumbnail, imageprocessor.VariantPreview},
	}
}

// ============================================
// ЗАГРУЗКА
// ============================================

func (s *artworkService) ValidateFile(contentType string, size int64) error {
	if s.config.MaxFileSize > 0 && size > s.config.MaxFileSize {
		return apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"max_size": s.config.MaxFileSize})
	}

	if !s.isAllowedType(contentType) {
		return apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"content_type":  contentType,
			"allowed_types": s.config.AllowedTypes,
		})
	}
	return nil
}

func (s *artworkService) Upload(ctx context.Context, ownerID string, req *dto.ArtworkUpload) (*models.Artwork, error) {
	if err := s.ValidateFile(req.ContentType, int64(len(req.Data))); err != nil {
		return nil, err
	}

	info, err := imageprocessor.Inspect(bytes.NewReader(req.Data))
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}

	baseKey := fmt.Sprintf("artworks/%s/%s", ownerID, uuid.NewString())
	key := baseKey + extensionFor(info.Format)

	if err := s.storage.Save(ctx, key, bytes.NewReader(req.Data), req.ContentType); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to save file: %w", err))
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = portfolio.TitleFromFileName(req.FileName)
	}
	description := req.Description
	if description == "" {
		description = portfolio.DefaultDescription
	}

	artwork := &models.Artwork{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		ImageURL:    s.storage.URL(key),
		ImagePath:   key,
	}

	if _, err := s.store.InsertArtwork(ctx, artwork); err != nil {
		// Запись не создана - файл больше не нужен
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.CtxWithError(ctx, "failed to remove orphaned file", delErr, "key", key)
		}
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "artwork uploaded",
		"artwork_id", artwork.ID,
		"width", info.Width,
		"height", info.Height,
		"format", info.Format,
	)

	// Ошибки превью не отменяют загрузку: карточка покажет оригинал
	if variants := s.generateVariants(ctx, artwork.ID, baseKey, info.Format, req.Data); len(variants) > 0 {
		artwork.Variants = variants
	}

	return artwork, nil
}

func (s *artworkService) generateVariants(ctx context.Context, artworkID, baseKey, format string, data []byte) map[string]interface{} {
	variants := make(map[string]interface{})
	var keys []string

	for _, variant := range s.variants {
		resized, contentType, err := s.processor.Resize(data, variant)
		if err != nil {
			logger.CtxWithError(ctx, "failed to resize image", err, "artwork_id", artworkID, "variant", variant.Name)
			continue
		}

		key := variantKey(baseKey, variant.Name, format)
		if err := s.storage.Save(ctx, key, bytes.NewReader(resized), contentType); err != nil {
			logger.CtxWithError(ctx, "failed to save image variant", err, "artwork_id", artworkID, "variant", variant.Name)
			continue
		}
		variants[variant.Name] = s.storage.URL(key)
		keys = append(keys, key)
	}

	if len(variants) == 0 {
		return nil
	}

	if err := s.store.SetArtworkVariants(ctx, artworkID, variants); err != nil {
		logger.CtxWithError(ctx, "failed to store image variants", err, "artwork_id", artworkID)
		for _, key := range keys {
			if delErr := s.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				logger.CtxWithError(ctx, "failed to remove orphaned variant", delErr, "key", key)
			}
		}
		return nil
	}
	return variants
}

// Committer возвращает загрузчик черновиков для владельца
func (s *artworkService) Committer(ownerID string) portfolio.UploadCommitter {
	return &pendingCommitter{service: s, ownerID: ownerID}
}

type pendingCommitter struct {
	service *artworkService
	ownerID string
}

func (c *pendingCommitter) CommitUpload(ctx context.Context, upload portfolio.PendingUpload) (*models.Artwork, error) {
	return c.service.Upload(ctx, c.ownerID, &dto.ArtworkUpload{
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Data:        upload.Data,
		Title:       upload.Title,
		Description: upload.Description,
	})
}

// ============================================
// ЧТЕНИЕ И ИЗМЕНЕНИЕ
// ============================================

func (s *artworkService) List(ctx context.Context, ownerID string) (*dto.ArtworkListResponse, error) {
	artworks, err := s.store.FindArtworks(ctx, ownerID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.ArtworkListResponse{Artworks: artworks, Total: len(artworks)}, nil
}

func (s *artworkService) Get(ctx context.Context, userID, artworkID string) (*models.Artwork, error) {
	artwork, err := s.store.FindArtwork(ctx, artworkID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if artwork == nil {
		return nil, apperrors.ErrArtworkNotFound
	}

	// Чужие работы видны, только если они опубликованы в портфолио
	if artwork.OwnerID != userID && !artwork.IsInPortfolio() {
		return nil, apperrors.ErrArtworkNotFound
	}
	return artwork, nil
}

func (s *artworkService) Update(ctx context.Context, userID, artworkID string, req *dto.UpdateArtworkRequest) (*models.Artwork, error) {
	artwork, err := s.findOwned(ctx, userID, artworkID)
	if err != nil {
		return nil, err
	}

	patch := req.Patch()
	if patch.IsEmpty() {
		return nil, apperrors.ErrInvalidOperation("artwork", "Nothing to update")
	}

	if err := s.store.UpdateArtwork(ctx, artworkID, patch); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	patch.Apply(artwork)
	return artwork, nil
}

func (s *artworkService) Delete(ctx context.Context, userID, artworkID string) error {
	artwork, err := s.findOwned(ctx, userID, artworkID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteArtwork(ctx, artworkID); err != nil {
		return apperrors.DatabaseError(err)
	}

	s.deleteFiles(ctx, artwork)
	return nil
}

func (s *artworkService) PublicPortfolio(ctx context.Context, username string) (*dto.PublicPortfolioResponse, error) {
	owner, err := s.store.FindUser(ctx, models.UserFilter{Username: username})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if owner == nil {
		return nil, apperrors.ErrNotFound(nil).WithDetails("user " + username)
	}

	artworks, err := s.store.FindPortfolio(ctx, owner.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.PublicPortfolioResponse{
		Username:    owner.Username,
		DisplayName: owner.DisplayName,
		Artworks:    artworks,
	}, nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

func (s *artworkService) findOwned(ctx context.Context, userID, artworkID string) (*models.Artwork, error) {
	artwork, err := s.store.FindArtwork(ctx, artworkID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if artwork == nil {
		return nil, apperrors.ErrArtworkNotFound
	}
	if !auth.CanModifyArtwork(userID, artwork) {
		return nil, apperrors.ErrArtworkAccessDenied
	}
	return artwork, nil
}

// deleteFiles удаляет оригинал и производные изображения.
// Ошибки только логируются: запись уже удалена.
func (s *artworkService) deleteFiles(ctx context.Context, artwork *models.Artwork) {
	if artwork.ImagePath == "" {
		return
	}

	ext := path.Ext(artwork.ImagePath)
	baseKey := strings.TrimSuffix(artwork.ImagePath, ext)
	format := strings.TrimPrefix(ext, ".")

	keys := []string{artwork.ImagePath}
	for _, variant := range s.variants {
		keys = append(keys, variantKey(baseKey, variant.Name, format))
	}

	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.CtxWithError(ctx, "failed to delete file", err, "key", key, "artwork_id", artwork.ID)
		}
	}
}

func (s *artworkService) isAllowedType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range s.config.AllowedTypes {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

// extensionFor - расширение оригинала по формату из image.DecodeConfig
func extensionFor(format string) string {
	switch format {
	case "jpeg", "jpg":
		return ".jpg"
	case "":
		return ""
	default:
		return "." + format
	}
}

// variantKey повторяет правило Processor.Resize: png и gif дают PNG, остальное JPEG
func variantKey(baseKey, variant, format string) string {
	switch format {
	case "png", "gif":
		return baseKey + "_" + variant + ".png"
	default:
		return baseKey + "_" + variant + ".jpg"
	}
}
