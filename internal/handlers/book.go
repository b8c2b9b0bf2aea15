package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// BookHandler handles book catalog HTTP requests
type BookHandler struct {
	bookService  *services.BookService
	copyService  *services.CopyService
	availability *services.AvailabilityService
}

func NewBookHandler(bookService *services.BookService, copyService *services.CopyService, availability *services.AvailabilityService) *BookHandler {
	return &BookHandler{bookService: bookService, copyService: copyService, availability: availability}
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, book, "book created successfully")
}

func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, book, "")
}

func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, book, "book updated successfully")
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "book deleted successfully")
}

func (h *BookHandler) ListBooks(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	result, err := h.bookService.ListBooks(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, result.Books, result.Pagination)
}

func (h *BookHandler) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	result, err := h.bookService.SearchBooks(c.Request.Context(), query, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, result.Books, result.Pagination)
}

// GetBookAvailability reports whether the book can be borrowed right now and
// which copy a walk-in borrower would get
func (h *BookHandler) GetBookAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.bookService.GetBook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	copy, err := h.availability.FindAvailableCopy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{"available": copy != nil}
	if copy != nil {
		data["copy"] = copy
	}
	respondSuccess(c, http.StatusOK, data, "")
}

// ListBookCopies returns the physical copies of a book
func (h *BookHandler) ListBookCopies(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	copies, err := h.copyService.ListBookCopies(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, copies, "")
}
