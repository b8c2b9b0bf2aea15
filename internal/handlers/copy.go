package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// CopyHandler handles physical copy HTTP requests
type CopyHandler struct {
	copyService *services.CopyService
}

func NewCopyHandler(copyService *services.CopyService) *CopyHandler {
	return &CopyHandler{copyService: copyService}
}

func (h *CopyHandler) CreateCopy(c *gin.Context) {
	var req models.CreateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	copyRecord, err := h.copyService.CreateCopy(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, copyRecord, "copy created successfully")
}

func (h *CopyHandler) GetCopy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	copyRecord, err := h.copyService.GetCopy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, copyRecord, "")
}

func (h *CopyHandler) GetCopyByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	copyRecord, err := h.copyService.GetCopyByBarcode(c.Request.Context(), barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, copyRecord, "")
}

func (h *CopyHandler) UpdateCopy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	copyRecord, err := h.copyService.UpdateCopy(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, copyRecord, "copy updated successfully")
}

func (h *CopyHandler) DeleteCopy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.copyService.DeleteCopy(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "copy deleted successfully")
}

func (h *CopyHandler) ListCopies(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	copies, err := h.copyService.ListCopies(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, copies, "")
}
