package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// ReservationNotifier delivers "your copy is ready" notices. Delivery is
// at-least-once and happens after the owning transaction commits.
type ReservationNotifier interface {
	NotifyReservationReady(ctx context.Context, reservation models.Reservation) error
}

// ReservationService manages the waiting queue for books. Queue order is
// strict FIFO by position; positions are assigned monotonically under the
// store transaction, so equal positions cannot occur.
type ReservationService struct {
	store        Store
	policy       *PolicyService
	notifier     ReservationNotifier
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewReservationService(store Store, policy *PolicyService, notifier ReservationNotifier, logger *slog.Logger) *ReservationService {
	return &ReservationService{
		store:        store,
		policy:       policy,
		notifier:     notifier,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

// WithStoreTimeout customizes the per-operation store deadline
func (s *ReservationService) WithStoreTimeout(d time.Duration) *ReservationService {
	s.storeTimeout = d
	return s
}

// CreateReservation places a user at the end of a book's queue.
// Reservations are only accepted when the book has no available copy; a
// walk-in loan is the right path otherwise.
func (s *ReservationService) CreateReservation(ctx context.Context, req models.CreateReservationRequest) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	policy := s.policy.Snapshot(ctx)
	_ = policy

	var reservation models.Reservation
	err := s.store.WithinTx(ctx, func(q Querier) error {
		user, err := q.GetUserByID(ctx, req.UserID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("user")
			}
			return apperr.FromStore(err, "get user")
		}
		if !user.IsActive {
			return apperr.BusinessRule(apperr.CodeUserInactive, "user account is not active")
		}

		if _, err := q.GetBookByID(ctx, req.BookID); err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("book")
			}
			return apperr.FromStore(err, "get book")
		}

		available, err := q.CountAvailableCopies(ctx, req.BookID)
		if err != nil {
			return apperr.FromStore(err, "count available copies")
		}
		if available > 0 {
			return apperr.BusinessRule(apperr.CodeBookAvailable, "book has available copies, borrow it directly")
		}

		if _, err := q.GetActiveReservationForBookUser(ctx, req.BookID, req.UserID); err == nil {
			return apperr.BusinessRule(apperr.CodeDuplicateReservation, "user already has an active reservation for this book")
		} else if !repository.IsNotFound(err) {
			return apperr.FromStore(err, "check existing reservation")
		}

		maxPosition, err := q.MaxActivePosition(ctx, req.BookID)
		if err != nil {
			return apperr.FromStore(err, "read queue position")
		}

		now := time.Now().UTC()
		var expiresAt *time.Time
		if req.ExpiresInDays != nil {
			t := now.AddDate(0, 0, *req.ExpiresInDays)
			expiresAt = &t
		}

		reservation, err = q.CreateReservation(ctx, repository.CreateReservationParams{
			BookID:     req.BookID,
			UserID:     req.UserID,
			ReservedAt: now,
			ExpiresAt:  expiresAt,
			Position:   maxPosition + 1,
		})
		if err != nil {
			return apperr.FromStore(err, "create reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		"reservation_id", reservation.ID,
		"book_id", reservation.BookID,
		"user_id", reservation.UserID,
		"position", reservation.Position,
	)
	return &reservation, nil
}

// PromoteNext moves the lowest-position pending reservation for a book to
// notified. No-op when the queue has no pending entry.
func (s *ReservationService) PromoteNext(ctx context.Context, bookID int64) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	policy := s.policy.Snapshot(ctx)

	var promoted *models.Reservation
	err := s.store.WithinTx(ctx, func(q Querier) error {
		var err error
		promoted, err = s.promoteNext(ctx, q, bookID, policy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyPromoted(ctx, promoted)
	return promoted, nil
}

// promoteNext runs inside the caller's transaction. The returned reservation
// must be passed to notifyPromoted once the transaction has committed.
func (s *ReservationService) promoteNext(ctx context.Context, q Querier, bookID int64, policy Policy) (*models.Reservation, error) {
	next, err := q.NextPendingReservation(ctx, bookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.FromStore(err, "get next pending reservation")
	}

	now := time.Now().UTC()
	window := now.AddDate(0, 0, policy.ReservationWindowDays)
	promoted, err := q.MarkReservationNotified(ctx, next.ID, now, window)
	if err != nil {
		if repository.IsNotFound(err) {
			// Lost the race against a concurrent promotion; nothing to do
			return nil, nil
		}
		return nil, apperr.FromStore(err, "mark reservation notified")
	}
	return &promoted, nil
}

func (s *ReservationService) notifyPromoted(ctx context.Context, reservation *models.Reservation) {
	if reservation == nil || s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyReservationReady(ctx, *reservation); err != nil {
		// Delivery is at-least-once via the queue; a failed enqueue is
		// retried by the next sweep touching this reservation.
		s.logger.Error("failed to enqueue reservation notice",
			"reservation_id", reservation.ID, "error", err)
	}
}

// ExpireStale transitions every notified reservation whose pickup window has
// passed and promotes the next queue entry for each affected book. Safe to
// re-run: the expiry guard on the update makes a second pass a no-op.
func (s *ReservationService) ExpireStale(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	stale, err := s.store.ListStaleNotified(ctx, time.Now().UTC())
	if err != nil {
		return 0, apperr.FromStore(err, "list stale reservations")
	}

	policy := s.policy.Snapshot(ctx)
	expired := 0
	var promotions []*models.Reservation

	for _, reservation := range stale {
		var promoted *models.Reservation
		err := s.store.WithinTx(ctx, func(q Querier) error {
			if _, err := q.MarkReservationExpired(ctx, reservation.ID, time.Now().UTC()); err != nil {
				if repository.IsNotFound(err) {
					// Already handled by a concurrent sweep
					return nil
				}
				return apperr.FromStore(err, "expire reservation")
			}
			expired++

			var err error
			promoted, err = s.promoteNext(ctx, q, reservation.BookID, policy)
			return err
		})
		if err != nil {
			return expired, err
		}
		if promoted != nil {
			promotions = append(promotions, promoted)
		}
	}

	for _, promoted := range promotions {
		s.notifyPromoted(ctx, promoted)
	}

	if expired > 0 {
		s.logger.Info("expired stale reservations", "count", expired)
	}
	return expired, nil
}

// Cancel closes an active reservation. Cancelling a notified reservation
// frees the held slot, so the next queue entry is promoted.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	policy := s.policy.Snapshot(ctx)

	var cancelled models.Reservation
	var promoted *models.Reservation
	err := s.store.WithinTx(ctx, func(q Querier) error {
		current, err := q.GetReservationByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("reservation")
			}
			return apperr.FromStore(err, "get reservation")
		}
		if !current.Status.Active() {
			return apperr.BusinessRule(apperr.CodeReservationClosed, "reservation is no longer active")
		}

		cancelled, err = q.MarkReservationCancelled(ctx, id)
		if err != nil {
			return apperr.FromStore(err, "cancel reservation")
		}

		if current.Status == models.ReservationStatusNotified {
			promoted, err = s.promoteNext(ctx, q, current.BookID, policy)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyPromoted(ctx, promoted)
	s.logger.Info("reservation cancelled", "reservation_id", cancelled.ID)
	return &cancelled, nil
}

// Fulfill marks an active reservation as fulfilled, typically when the
// reserved user takes the copy at the counter.
func (s *ReservationService) Fulfill(ctx context.Context, id int64) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var fulfilled models.Reservation
	err := s.store.WithinTx(ctx, func(q Querier) error {
		var err error
		fulfilled, err = q.MarkReservationFulfilled(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				if _, getErr := q.GetReservationByID(ctx, id); getErr != nil {
					if repository.IsNotFound(getErr) {
						return apperr.NotFound("reservation")
					}
					return apperr.FromStore(getErr, "get reservation")
				}
				return apperr.BusinessRule(apperr.CodeReservationClosed, "reservation is no longer active")
			}
			return apperr.FromStore(err, "fulfill reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation fulfilled", "reservation_id", fulfilled.ID)
	return &fulfilled, nil
}

// fulfillForLoan marks the borrower's active reservation for the book as
// fulfilled inside the loan issuance transaction, if one exists.
func (s *ReservationService) fulfillForLoan(ctx context.Context, q Querier, bookID, userID int64) error {
	reservation, err := q.GetActiveReservationForBookUser(ctx, bookID, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return apperr.FromStore(err, "check reservation for loan")
	}
	if _, err := q.MarkReservationFulfilled(ctx, reservation.ID); err != nil && !repository.IsNotFound(err) {
		return apperr.FromStore(err, "fulfill reservation")
	}
	return nil
}

// GetReservation retrieves a reservation by id
func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reservation, err := s.store.GetReservationByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("reservation")
		}
		return nil, apperr.FromStore(err, "get reservation")
	}
	return &reservation, nil
}

// ListReservations returns reservations with pagination
func (s *ReservationService) ListReservations(ctx context.Context, limit, offset int32) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reservations, err := s.store.ListReservations(ctx, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list reservations")
	}
	return reservations, nil
}

// ListBookQueue returns a book's live queue in FIFO order
func (s *ReservationService) ListBookQueue(ctx context.Context, bookID int64) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reservations, err := s.store.ListActiveReservationsByBook(ctx, bookID)
	if err != nil {
		return nil, apperr.FromStore(err, "list book queue")
	}
	return reservations, nil
}

// ListUserReservations returns a user's reservations with pagination
func (s *ReservationService) ListUserReservations(ctx context.Context, userID int64, limit, offset int32) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reservations, err := s.store.ListReservationsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list user reservations")
	}
	return reservations, nil
}
