package handlers

import (
	"net/http"

	"artfolio_backend/internal/middleware"
	"artfolio_backend/internal/services"
	"artfolio_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ============================================
// ARTWORK HANDLER
// ============================================

type ArtworkHandler struct {
	*BaseHandler
	artworkService services.ArtworkService
	maxUploadSize  int64
}

func NewArtworkHandler(base *BaseHandler, artworkService services.ArtworkService, maxUploadSize int64) *ArtworkHandler {
	return &ArtworkHandler{
		BaseHandler:    base,
		artworkService: artworkService,
		maxUploadSize:  maxUploadSize,
	}
}

func (h *ArtworkHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	artworks := r.Group("/artworks")
	{
		artworks.POST("", requireAuth, h.Upload)
		artworks.GET("", requireAuth, h.List)
		artworks.GET("/:id", optionalAuth, h.Get)
		artworks.PUT("/:id", requireAuth, h.Update)
		artworks.DELETE("/:id", requireAuth, h.Delete)
	}

	// Режим предпросмотра: опубликованное портфолио доступно без входа
	r.GET("/public/:username/portfolio", h.PublicPortfolio)
}

// Upload - прямая загрузка: файл сразу становится записью хранилища
func (h *ArtworkHandler) Upload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, ok := h.readUploadedFile(c, h.maxUploadSize, h.artworkService.ValidateFile)
	if !ok {
		return
	}

	artwork, err := h.artworkService.Upload(c.Request.Context(), userID, &dto.ArtworkUpload{
		FileName:    file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, artwork)
}

func (h *ArtworkHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.artworkService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get - страница работы. Анонимный зритель видит только опубликованные работы.
func (h *ArtworkHandler) Get(c *gin.Context) {
	artwork, err := h.artworkService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, artwork)
}

func (h *ArtworkHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateArtworkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	artwork, err := h.artworkService.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, artwork)
}

func (h *ArtworkHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.artworkService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ArtworkHandler) PublicPortfolio(c *gin.Context) {
	response, err := h.artworkService.PublicPortfolio(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
