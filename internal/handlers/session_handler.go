package handlers

import (
	"net/http"

	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/services"
	"artfolio_backend/internal/services/dto"
	"artfolio_backend/internal/session"
	"artfolio_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================
// SESSION HANDLER
// ============================================

// SessionHandler - состояние портфолио текущей сессии: список, панель
// доступных работ, редактор, удаление с подтверждением и черновики загрузок.
type SessionHandler struct {
	*BaseHandler
	sessions       *session.Manager
	artworkService services.ArtworkService
	maxUploadSize  int64
}

func NewSessionHandler(base *BaseHandler, sessions *session.Manager, artworkService services.ArtworkService, maxUploadSize int64) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    base,
		sessions:       sessions,
		artworkService: artworkService,
		maxUploadSize:  maxUploadSize,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	s := r.Group("/session")
	s.Use(requireAuth)
	{
		s.GET("", h.GetSnapshot)
		s.POST("/reload", h.Reload)

		// Список портфолио
		s.POST("/portfolio/reorder", h.Reorder)
		s.POST("/portfolio/removal", h.RequestRemoval)
		s.POST("/portfolio/removal/confirm", h.ConfirmRemoval)
		s.DELETE("/portfolio/removal", h.CancelRemoval)

		// Панель доступных работ
		s.GET("/available", h.ListAvailable)
		s.POST("/available/refresh", h.RefreshAvailable)
		s.POST("/available/:id", h.AddAvailable)

		// Редактор
		s.POST("/editor/:id", h.OpenEditor)
		s.PUT("/editor", h.SaveEditor)
		s.DELETE("/editor", h.CancelEditor)

		// Черновики загрузок
		s.POST("/uploads", h.StageUpload)
		s.GET("/uploads", h.ListUploads)
		s.POST("/uploads/:tempId/commit", h.CommitUpload)
		s.DELETE("/uploads/:tempId", h.DiscardUpload)
	}
}

// current - сессия запроса
func (h *SessionHandler) current(c *gin.Context) (*session.Session, bool) {
	sessionID, ok := h.GetAndAuthorizeSessionID(c)
	if !ok {
		return nil, false
	}

	s, err := h.sessions.Get(sessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return nil, false
	}
	return s, true
}

// ============================================
// СНИМОК
// ============================================

func (h *SessionHandler) GetSnapshot(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) Reload(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	if err := s.Reload(c.Request.Context()); err != nil {
		h.HandleServiceError(c, apperrors.DatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// ============================================
// ПОРЯДОК И УДАЛЕНИЕ
// ============================================

// Reorder - перенос карточки. Позиции вне списка не меняют порядок.
func (h *SessionHandler) Reorder(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	moved := s.Model.Reorder(*req.Source, *req.Destination)
	c.JSON(http.StatusOK, dto.ReorderResponse{Moved: moved})
}

func (h *SessionHandler) RequestRemoval(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	var req dto.RemovalRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if !s.Model.Contains(req.ArtworkID) {
		h.HandleServiceError(c, apperrors.ErrNotInPortfolio)
		return
	}

	status := s.Removal.Request(req.ArtworkID)
	s.Push()
	c.JSON(http.StatusOK, status)
}

func (h *SessionHandler) ConfirmRemoval(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	id, err := s.Removal.Confirm(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	logger.CtxInfo(c.Request.Context(), "artwork removed from portfolio", "artwork_id", id)
	s.Push()
	c.JSON(http.StatusOK, dto.RemovalResponse{ArtworkID: id, Removed: !s.Model.Contains(id)})
}

func (h *SessionHandler) CancelRemoval(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	status := s.Removal.Cancel()
	s.Push()
	c.JSON(http.StatusOK, status)
}

// ============================================
// ДОСТУПНЫЕ РАБОТЫ
// ============================================

func (h *SessionHandler) ListAvailable(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"artworks": s.Available.Items()})
}

func (h *SessionHandler) RefreshAvailable(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	if err := s.Available.Refresh(c.Request.Context(), s.User.ID); err != nil {
		h.HandleServiceError(c, apperrors.DatabaseError(err))
		return
	}
	s.Push()
	c.JSON(http.StatusOK, gin.H{"artworks": s.Available.Items()})
}

// AddAvailable - добавляет работу из панели в конец портфолио
func (h *SessionHandler) AddAvailable(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	if err := s.Available.Add(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// ============================================
// РЕДАКТОР
// ============================================

func (h *SessionHandler) OpenEditor(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	record, found := s.Model.Get(c.Param("id"))
	if !found {
		h.HandleServiceError(c, apperrors.ErrNotInPortfolio)
		return
	}

	draft := s.Editor.Open(record)
	s.Push()
	c.JSON(http.StatusOK, draft)
}

func (h *SessionHandler) SaveEditor(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	var req dto.EditorSaveRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	draft, err := s.Editor.Save(c.Request.Context(), models.ArtworkPatch{
		Title:       req.Title,
		Description: req.Description,
		Medium:      req.Medium,
		Location:    req.Location,
		Date:        req.Date,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *SessionHandler) CancelEditor(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	s.Editor.Cancel()
	s.Push()
	c.Status(http.StatusNoContent)
}

// ============================================
// ЧЕРНОВИКИ ЗАГРУЗОК
// ============================================

// StageUpload - файл остаётся в памяти сессии до commit и не виден в хранилище
func (h *SessionHandler) StageUpload(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	file, ok := h.readUploadedFile(c, h.maxUploadSize, h.artworkService.ValidateFile)
	if !ok {
		return
	}

	pending, err := s.Uploads.Stage(file.Name, file.ContentType, file.Data)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	pending.Data = nil
	s.Push()
	c.JSON(http.StatusCreated, pending)
}

func (h *SessionHandler) ListUploads(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": s.Uploads.List()})
}

// CommitUpload - загрузка черновика. В список портфолио сессии новая работа
// попадает через подписку на добавления.
func (h *SessionHandler) CommitUpload(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	artwork, err := s.Uploads.Commit(c.Request.Context(), c.Param("tempId"), h.artworkService.Committer(s.User.ID))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	s.Push()
	c.JSON(http.StatusCreated, artwork)
}

func (h *SessionHandler) DiscardUpload(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	if err := s.Uploads.Discard(c.Param("tempId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	s.Push()
	c.Status(http.StatusNoContent)
}
