package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/validator"
	"artfolio_backend/pkg/apperrors"
	"artfolio_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// ============================================================================
// 2. Доступ к БД
// ============================================================================

// GetDB извлекает *gorm.DB из gin.Context (кладёт DBMiddleware)
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// ============================================================================
// 3. Методы привязки и валидации (с контекстным логгированием)
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleValidationError(c, err)
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 4. Обработчики ошибок (с контекстным логгированием)
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Вспомогательные функции (с контекстным логгированием)
// ============================================================================

func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	return h.requireContextString(c, contextkeys.UserIDKey, "User not authenticated")
}

// GetAndAuthorizeSessionID - ID сессии из токена
func (h *BaseHandler) GetAndAuthorizeSessionID(c *gin.Context) (string, bool) {
	return h.requireContextString(c, contextkeys.SessionIDKey, "Session not found in token")
}

func (h *BaseHandler) requireContextString(c *gin.Context, key, message string) (string, bool) {
	val, exists := c.Get(key)
	str, ok := val.(string)
	if !exists || !ok || str == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: missing "+key+" in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.NewUnauthorizedError(message))
		return "", false
	}
	return str, true
}

// uploadedFile - файл из поля "file" multipart-формы
type uploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// readUploadedFile читает поле "file". check вызывается до чтения содержимого.
func (h *BaseHandler) readUploadedFile(c *gin.Context, maxMemory int64, check func(contentType string, size int64) error) (*uploadedFile, bool) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMemory+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		logger.CtxWithError(ctx, "Failed to read multipart file", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("file is required"))
		return nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if err := check(contentType, header.Size); err != nil {
		h.HandleServiceError(c, err)
		return nil, false
	}

	data, err := readAll(header)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to read uploaded file", err, "file", header.Filename)
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read file"))
		return nil, false
	}

	return &uploadedFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        data,
	}, true
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
