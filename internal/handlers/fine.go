package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// FineHandler handles fine lifecycle HTTP requests
type FineHandler struct {
	fineService *services.FineService
}

func NewFineHandler(fineService *services.FineService) *FineHandler {
	return &FineHandler{fineService: fineService}
}

// IssueFine records a manual fine against a user
func (h *FineHandler) IssueFine(c *gin.Context) {
	var req models.IssueFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fine, err := h.fineService.IssueFine(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, fine, "fine issued successfully")
}

// PayFine settles an unpaid fine
func (h *FineHandler) PayFine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.PayFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fine, err := h.fineService.PayFine(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, fine, "fine paid successfully")
}

func (h *FineHandler) GetFine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fine, err := h.fineService.GetFine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, fine, "")
}

func (h *FineHandler) ListFines(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	fines, err := h.fineService.ListFines(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, fines, "")
}

// ListUserFines returns a user's fines with their outstanding balance
func (h *FineHandler) ListUserFines(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	fines, err := h.fineService.ListUserFines(c.Request.Context(), id, int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}

	balance, err := h.fineService.UserBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"fines": fines, "balance": balance}, "")
}

func (h *FineHandler) DeleteFine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.fineService.DeleteFine(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "fine deleted successfully")
}
