package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"artfolio_backend/internal/storage"
	"artfolio_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		// Public file serving
		files.GET("/*path", h.ServeFile)
		files.HEAD("/*path", h.CheckFileExists)
	}
}

// ServeFile отдаёт изображение из хранилища по ключу
func (h *FileHandler) ServeFile(c *gin.Context) {
	key, err := storage.CleanKey(c.Param("path"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}

	// Локальное хранилище: отдаём файл напрямую (Range, If-Modified-Since)
	if local, ok := h.storage.(*storage.LocalStorage); ok {
		filePath, err := local.FilePath(key)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
			return
		}
		if exists, _ := local.Exists(c.Request.Context(), key); !exists {
			apperrors.HandleError(c, apperrors.ErrNotFound(storage.ErrNotFound))
			return
		}
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.File(filePath)
		return
	}

	reader, err := h.storage.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apperrors.HandleError(c, apperrors.ErrNotFound(err))
			return
		}
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}

// CheckFileExists - HEAD-запрос без тела
func (h *FileHandler) CheckFileExists(c *gin.Context) {
	key, err := storage.CleanKey(c.Param("path"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}
