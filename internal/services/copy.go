package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// CopyService manages the physical copies attached to bibliographic records
type CopyService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewCopyService(store Store, logger *slog.Logger) *CopyService {
	return &CopyService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

func (s *CopyService) CreateCopy(ctx context.Context, req models.CreateCopyRequest) (*models.Copy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.store.GetBookByID(ctx, req.BookID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("book")
		}
		return nil, apperr.FromStore(err, "get book")
	}

	copyRecord, err := s.store.CreateCopy(ctx, req)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "a copy with this barcode already exists")
		}
		return nil, apperr.FromStore(err, "create copy")
	}

	s.logger.Info("copy created", "copy_id", copyRecord.ID, "book_id", copyRecord.BookID, "barcode", copyRecord.Barcode)
	return &copyRecord, nil
}

func (s *CopyService) GetCopy(ctx context.Context, id int64) (*models.Copy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	copyRecord, err := s.store.GetCopyByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("copy")
		}
		return nil, apperr.FromStore(err, "get copy")
	}
	return &copyRecord, nil
}

func (s *CopyService) GetCopyByBarcode(ctx context.Context, barcode string) (*models.Copy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	copyRecord, err := s.store.GetCopyByBarcode(ctx, barcode)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("copy")
		}
		return nil, apperr.FromStore(err, "get copy")
	}
	return &copyRecord, nil
}

// UpdateCopy applies a patch to a copy. Status changes that collide with the
// lending lifecycle (loaned, reserved) are rejected here; those transitions
// belong to the loan and reservation services.
func (s *CopyService) UpdateCopy(ctx context.Context, id int64, req models.UpdateCopyRequest) (*models.Copy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var copyRecord models.Copy
	err := s.store.WithinTx(ctx, func(q Querier) error {
		current, err := q.GetCopyByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("copy")
			}
			return apperr.FromStore(err, "get copy")
		}

		if req.Barcode != nil {
			current.Barcode = *req.Barcode
		}
		if req.Location != nil {
			current.Location = req.Location
		}
		if req.AcquisitionDate != nil {
			current.AcquisitionDate = req.AcquisitionDate
		}
		if req.Status != nil {
			status := *req.Status
			if !models.ValidCopyStatus(status) {
				return apperr.Validation("invalid copy status", map[string]string{"status": "unknown status"})
			}
			if status == models.CopyStatusLoaned || status == models.CopyStatusReserved {
				return apperr.Validation("status is managed by the lending lifecycle", map[string]string{"status": "cannot be set directly"})
			}
			if current.Status == models.CopyStatusLoaned && status != models.CopyStatusLost {
				return apperr.BusinessRule(apperr.CodeCopyUnavailable, "copy is on loan")
			}
			current.Status = status
		}

		copyRecord, err = q.UpdateCopy(ctx, current)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "a copy with this barcode already exists")
			}
			return apperr.FromStore(err, "update copy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &copyRecord, nil
}

func (s *CopyService) DeleteCopy(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.store.WithinTx(ctx, func(q Querier) error {
		copyRecord, err := q.GetCopyByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("copy")
			}
			return apperr.FromStore(err, "get copy")
		}
		if copyRecord.Status == models.CopyStatusLoaned {
			return apperr.BusinessRule(apperr.CodeCopyUnavailable, "cannot delete a copy that is on loan")
		}
		if err := q.SoftDeleteCopy(ctx, id); err != nil {
			return apperr.FromStore(err, "delete copy")
		}
		return nil
	})
}

func (s *CopyService) ListBookCopies(ctx context.Context, bookID int64) ([]models.Copy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	copies, err := s.store.ListCopiesByBook(ctx, bookID)
	if err != nil {
		return nil, apperr.FromStore(err, "list copies")
	}
	return copies, nil
}

func (s *CopyService) ListCopies(ctx context.Context, limit, offset int32) ([]models.Copy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if limit < 1 || limit > 100 {
		limit = 50
	}
	copies, err := s.store.ListCopies(ctx, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list copies")
	}
	return copies, nil
}
