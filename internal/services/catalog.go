package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// CatalogService manages authors, publishers and categories
type CatalogService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewCatalogService(store Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

func (s *CatalogService) CreateAuthor(ctx context.Context, req models.NameRequest) (*models.Author, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	author, err := s.store.CreateAuthor(ctx, req.Name, req.Bio)
	if err != nil {
		return nil, apperr.FromStore(err, "create author")
	}
	return &author, nil
}

func (s *CatalogService) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	author, err := s.store.GetAuthorByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("author")
		}
		return nil, apperr.FromStore(err, "get author")
	}
	return &author, nil
}

func (s *CatalogService) UpdateAuthor(ctx context.Context, id int64, req models.NameRequest) (*models.Author, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	author, err := s.store.UpdateAuthor(ctx, id, req.Name, req.Bio)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("author")
		}
		return nil, apperr.FromStore(err, "update author")
	}
	return &author, nil
}

func (s *CatalogService) DeleteAuthor(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.DeleteAuthor(ctx, id); err != nil {
		if err == repository.ErrNoRowsAffected {
			return apperr.NotFound("author")
		}
		if repository.IsForeignKeyViolation(err) {
			return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "author is still attached to books")
		}
		return apperr.FromStore(err, "delete author")
	}
	return nil
}

func (s *CatalogService) ListAuthors(ctx context.Context, limit, offset int32) ([]models.Author, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	authors, err := s.store.ListAuthors(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list authors")
	}
	return authors, nil
}

func (s *CatalogService) CreatePublisher(ctx context.Context, req models.NameRequest) (*models.Publisher, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	publisher, err := s.store.CreatePublisher(ctx, req.Name, req.Address)
	if err != nil {
		return nil, apperr.FromStore(err, "create publisher")
	}
	return &publisher, nil
}

func (s *CatalogService) GetPublisher(ctx context.Context, id int64) (*models.Publisher, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	publisher, err := s.store.GetPublisherByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("publisher")
		}
		return nil, apperr.FromStore(err, "get publisher")
	}
	return &publisher, nil
}

func (s *CatalogService) UpdatePublisher(ctx context.Context, id int64, req models.NameRequest) (*models.Publisher, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	publisher, err := s.store.UpdatePublisher(ctx, id, req.Name, req.Address)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("publisher")
		}
		return nil, apperr.FromStore(err, "update publisher")
	}
	return &publisher, nil
}

func (s *CatalogService) DeletePublisher(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.DeletePublisher(ctx, id); err != nil {
		if err == repository.ErrNoRowsAffected {
			return apperr.NotFound("publisher")
		}
		if repository.IsForeignKeyViolation(err) {
			return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "publisher is still attached to books")
		}
		return apperr.FromStore(err, "delete publisher")
	}
	return nil
}

func (s *CatalogService) ListPublishers(ctx context.Context, limit, offset int32) ([]models.Publisher, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	publishers, err := s.store.ListPublishers(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list publishers")
	}
	return publishers, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req models.NameRequest) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	category, err := s.store.CreateCategory(ctx, req.Name)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "a category with this name already exists")
		}
		return nil, apperr.FromStore(err, "create category")
	}
	return &category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	category, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("category")
		}
		return nil, apperr.FromStore(err, "get category")
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req models.NameRequest) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	category, err := s.store.UpdateCategory(ctx, id, req.Name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("category")
		}
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "a category with this name already exists")
		}
		return nil, apperr.FromStore(err, "update category")
	}
	return &category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if err == repository.ErrNoRowsAffected {
			return apperr.NotFound("category")
		}
		return apperr.FromStore(err, "delete category")
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context, limit, offset int32) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	categories, err := s.store.ListCategories(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list categories")
	}
	return categories, nil
}

func normalizeLimit(limit int32) int32 {
	if limit < 1 || limit > 100 {
		return 50
	}
	return limit
}
