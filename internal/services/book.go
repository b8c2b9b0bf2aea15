package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// BookService handles catalog operations on bibliographic records
type BookService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewBookService(store Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

// CreateBook creates a book and attaches its authors and categories in one
// transaction.
func (s *BookService) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.BookResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if req.ISBN != nil {
		if _, err := s.store.GetBookByISBN(ctx, *req.ISBN); err == nil {
			return nil, apperr.New(apperr.KindConstraint, apperr.CodeConstraintViolation, "a book with this ISBN already exists")
		} else if !repository.IsNotFound(err) {
			return nil, apperr.FromStore(err, "check isbn")
		}
	}

	var book models.Book
	err := s.store.WithinTx(ctx, func(q Querier) error {
		var err error
		book, err = q.CreateBook(ctx, repository.CreateBookParams{
			Title:         req.Title,
			ISBN:          req.ISBN,
			PublisherID:   req.PublisherID,
			PublishedYear: req.PublishedYear,
			Pages:         req.Pages,
			Language:      req.Language,
			Description:   req.Description,
			CoverURL:      req.CoverURL,
		})
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "a book with this ISBN already exists")
			}
			if repository.IsForeignKeyViolation(err) {
				return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "referenced publisher does not exist")
			}
			return apperr.FromStore(err, "create book")
		}
		if len(req.AuthorIDs) > 0 {
			if err := q.SetBookAuthors(ctx, book.ID, req.AuthorIDs); err != nil {
				if repository.IsForeignKeyViolation(err) {
					return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "referenced author does not exist")
				}
				return apperr.FromStore(err, "attach authors")
			}
		}
		if len(req.CategoryIDs) > 0 {
			if err := q.SetBookCategories(ctx, book.ID, req.CategoryIDs); err != nil {
				if repository.IsForeignKeyViolation(err) {
					return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "referenced category does not exist")
				}
				return apperr.FromStore(err, "attach categories")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	return s.buildBookResponse(ctx, book)
}

// GetBook retrieves a book with its catalog relations and copy counts
func (s *BookService) GetBook(ctx context.Context, id int64) (*models.BookResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	book, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("book")
		}
		return nil, apperr.FromStore(err, "get book")
	}
	return s.buildBookResponse(ctx, book)
}

// UpdateBook applies a patch to a book and its relations
func (s *BookService) UpdateBook(ctx context.Context, id int64, req models.UpdateBookRequest) (*models.BookResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var book models.Book
	err := s.store.WithinTx(ctx, func(q Querier) error {
		current, err := q.GetBookByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("book")
			}
			return apperr.FromStore(err, "get book")
		}

		if req.Title != nil {
			current.Title = *req.Title
		}
		if req.ISBN != nil {
			current.ISBN = req.ISBN
		}
		if req.PublisherID != nil {
			current.PublisherID = req.PublisherID
		}
		if req.PublishedYear != nil {
			current.PublishedYear = req.PublishedYear
		}
		if req.Pages != nil {
			current.Pages = req.Pages
		}
		if req.Language != nil {
			current.Language = req.Language
		}
		if req.Description != nil {
			current.Description = req.Description
		}
		if req.CoverURL != nil {
			current.CoverURL = req.CoverURL
		}

		book, err = q.UpdateBook(ctx, current)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "a book with this ISBN already exists")
			}
			return apperr.FromStore(err, "update book")
		}

		if req.AuthorIDs != nil {
			if err := q.SetBookAuthors(ctx, book.ID, *req.AuthorIDs); err != nil {
				return apperr.FromStore(err, "attach authors")
			}
		}
		if req.CategoryIDs != nil {
			if err := q.SetBookCategories(ctx, book.ID, *req.CategoryIDs); err != nil {
				return apperr.FromStore(err, "attach categories")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildBookResponse(ctx, book)
}

// DeleteBook soft-deletes a book
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.SoftDeleteBook(ctx, id); err != nil {
		if err == repository.ErrNoRowsAffected {
			return apperr.NotFound("book")
		}
		return apperr.FromStore(err, "delete book")
	}
	return nil
}

// ListBooks returns books with pagination metadata
func (s *BookService) ListBooks(ctx context.Context, page, limit int) (*models.BookListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	books, err := s.store.ListBooks(ctx, int32(limit), int32(offset))
	if err != nil {
		return nil, apperr.FromStore(err, "list books")
	}
	total, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "count books")
	}

	responses := make([]models.BookResponse, 0, len(books))
	for _, book := range books {
		response, err := s.buildBookResponse(ctx, book)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *response)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.BookListResponse{
		Books: responses,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// SearchBooks matches books by title, isbn or description
func (s *BookService) SearchBooks(ctx context.Context, query string, page, limit int) (*models.BookListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if query == "" {
		return nil, apperr.Validation("search query is required", map[string]string{"q": "must not be empty"})
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	books, err := s.store.SearchBooks(ctx, query, int32(limit), int32(offset))
	if err != nil {
		return nil, apperr.FromStore(err, "search books")
	}

	responses := make([]models.BookResponse, 0, len(books))
	for _, book := range books {
		response, err := s.buildBookResponse(ctx, book)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *response)
	}

	return &models.BookListResponse{
		Books: responses,
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: int64(len(responses)),
		},
	}, nil
}

func (s *BookService) buildBookResponse(ctx context.Context, book models.Book) (*models.BookResponse, error) {
	response := &models.BookResponse{Book: book}

	if book.PublisherID != nil {
		if publisher, err := s.store.GetPublisherByID(ctx, *book.PublisherID); err == nil {
			response.Publisher = &publisher
		}
	}

	authors, err := s.store.GetBookAuthors(ctx, book.ID)
	if err != nil {
		return nil, apperr.FromStore(err, "get book authors")
	}
	response.Authors = authors

	categories, err := s.store.GetBookCategories(ctx, book.ID)
	if err != nil {
		return nil, apperr.FromStore(err, "get book categories")
	}
	response.Categories = categories

	total, available, err := s.store.GetBookCopyCounts(ctx, book.ID)
	if err != nil {
		return nil, apperr.FromStore(err, "get copy counts")
	}
	response.TotalCopies = total
	response.AvailableCopies = available

	return response, nil
}
