package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// LoanHandler handles the loan lifecycle HTTP requests
type LoanHandler struct {
	loanService *services.LoanService
}

func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// IssueLoan checks a copy out to a user
func (h *LoanHandler) IssueLoan(c *gin.Context) {
	var req models.IssueLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if issuerID := c.GetInt64("user_id"); issuerID > 0 {
		req.IssuerID = &issuerID
	}

	loan, err := h.loanService.IssueLoan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, loan, "loan issued successfully")
}

// ReturnLoan checks a copy back in, issuing an overdue fine and promoting
// the next reservation when applicable
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.loanService.ReturnLoan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, result, "loan returned successfully")
}

// MarkLost records a copy as lost while keeping the loan on file
func (h *LoanHandler) MarkLost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.MarkLost(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, loan, "loan marked as lost")
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.GetLoan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, loan, "")
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	loans, err := h.loanService.ListLoans(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, loans, "")
}

func (h *LoanHandler) ListOverdueLoans(c *gin.Context) {
	loans, err := h.loanService.ListOverdueLoans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, loans, "")
}

// ListUserLoans returns the loan history of a user
func (h *LoanHandler) ListUserLoans(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	loans, err := h.loanService.ListUserLoans(c.Request.Context(), id, int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, loans, "")
}

func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.loanService.DeleteLoan(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "loan deleted successfully")
}
