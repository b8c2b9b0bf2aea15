package services

import (
	"context"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// AvailabilityService answers whether copies can be loaned. It is read-only;
// all state changes belong to the lifecycle services.
type AvailabilityService struct {
	store CopyQuerier
}

func NewAvailabilityService(store CopyQuerier) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// IsCopyAvailable reports whether the copy is loanable right now
func (s *AvailabilityService) IsCopyAvailable(copy models.Copy) bool {
	return copy.Status == models.CopyStatusAvailable
}

// FindAvailableCopy returns the book's available copy with the lowest id.
// The fixed order keeps reservation promotion deterministic and starvation
// free. Returns nil when no copy is available.
func (s *AvailabilityService) FindAvailableCopy(ctx context.Context, bookID int64) (*models.Copy, error) {
	copy, err := s.store.FindFirstAvailableCopy(ctx, bookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.FromStore(err, "find available copy")
	}
	return &copy, nil
}

// HasAvailableCopy reports whether the book has at least one loanable copy
func (s *AvailabilityService) HasAvailableCopy(ctx context.Context, bookID int64) (bool, error) {
	count, err := s.store.CountAvailableCopies(ctx, bookID)
	if err != nil {
		return false, apperr.FromStore(err, "count available copies")
	}
	return count > 0, nil
}
