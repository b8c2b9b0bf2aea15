package models

import (
	"time"
)

// Book represents a bibliographic record (not a physical copy)
type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	ISBN          *string   `json:"isbn,omitempty"`
	PublisherID   *int64    `json:"publisher_id,omitempty"`
	PublishedYear *int32    `json:"published_year,omitempty"`
	Pages         *int32    `json:"pages,omitempty"`
	Language      *string   `json:"language,omitempty"`
	Description   *string   `json:"description,omitempty"`
	CoverURL      *string   `json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Author represents a book author
type Author struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher represents a book publisher
type Publisher struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category represents a book category
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateBookRequest represents a request to create a book
type CreateBookRequest struct {
	Title         string  `json:"title" binding:"required,max=255"`
	ISBN          *string `json:"isbn" binding:"omitempty,max=13"`
	PublisherID   *int64  `json:"publisher_id"`
	PublishedYear *int32  `json:"published_year"`
	Pages         *int32  `json:"pages"`
	Language      *string `json:"language"`
	Description   *string `json:"description"`
	CoverURL      *string `json:"cover_url"`
	AuthorIDs     []int64 `json:"author_ids"`
	CategoryIDs   []int64 `json:"category_ids"`
}

// UpdateBookRequest represents a request to update a book
type UpdateBookRequest struct {
	Title         *string  `json:"title" binding:"omitempty,max=255"`
	ISBN          *string  `json:"isbn" binding:"omitempty,max=13"`
	PublisherID   *int64   `json:"publisher_id"`
	PublishedYear *int32   `json:"published_year"`
	Pages         *int32   `json:"pages"`
	Language      *string  `json:"language"`
	Description   *string  `json:"description"`
	CoverURL      *string  `json:"cover_url"`
	AuthorIDs     *[]int64 `json:"author_ids"`
	CategoryIDs   *[]int64 `json:"category_ids"`
}

// BookResponse represents a book with its related catalog entities
type BookResponse struct {
	Book
	Publisher       *Publisher `json:"publisher,omitempty"`
	Authors         []Author   `json:"authors,omitempty"`
	Categories      []Category `json:"categories,omitempty"`
	TotalCopies     int        `json:"total_copies"`
	AvailableCopies int        `json:"available_copies"`
}

// BookListResponse represents a paginated list of books
type BookListResponse struct {
	Books      []BookResponse `json:"books"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination carries standard paging metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NameRequest is the shared create/update payload for authors, publishers
// and categories
type NameRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Bio     *string `json:"bio"`
	Address *string `json:"address"`
}
