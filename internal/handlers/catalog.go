package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// CatalogHandler handles author, publisher and category HTTP requests
type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) CreateAuthor(c *gin.Context) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	author, err := h.catalogService.CreateAuthor(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, author, "author created successfully")
}

func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	author, err := h.catalogService.GetAuthor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, author, "")
}

func (h *CatalogHandler) UpdateAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	author, err := h.catalogService.UpdateAuthor(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, author, "author updated successfully")
}

func (h *CatalogHandler) DeleteAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteAuthor(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "author deleted successfully")
}

func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	authors, err := h.catalogService.ListAuthors(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, authors, "")
}

func (h *CatalogHandler) CreatePublisher(c *gin.Context) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	publisher, err := h.catalogService.CreatePublisher(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, publisher, "publisher created successfully")
}

func (h *CatalogHandler) GetPublisher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	publisher, err := h.catalogService.GetPublisher(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, publisher, "")
}

func (h *CatalogHandler) UpdatePublisher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	publisher, err := h.catalogService.UpdatePublisher(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, publisher, "publisher updated successfully")
}

func (h *CatalogHandler) DeletePublisher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeletePublisher(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "publisher deleted successfully")
}

func (h *CatalogHandler) ListPublishers(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	publishers, err := h.catalogService.ListPublishers(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, publishers, "")
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, category, "category created successfully")
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category, "")
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category, "category updated successfully")
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "category deleted successfully")
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	categories, err := h.catalogService.ListCategories(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, categories, "")
}
