package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// LoanService manages the loan lifecycle: issuing, returning and loss. Every
// lifecycle operation runs as one store transaction so the copy status and
// the loan record can never diverge.
type LoanService struct {
	store        Store
	policy       *PolicyService
	fines        *FineService
	reservations *ReservationService
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewLoanService(store Store, policy *PolicyService, fines *FineService, reservations *ReservationService, logger *slog.Logger) *LoanService {
	return &LoanService{
		store:        store,
		policy:       policy,
		fines:        fines,
		reservations: reservations,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

// WithStoreTimeout customizes the per-operation store deadline
func (s *LoanService) WithStoreTimeout(d time.Duration) *LoanService {
	s.storeTimeout = d
	return s
}

// errCopyRace signals that the conditional copy-status flip lost against a
// concurrent writer. IssueLoan retries once, then reports the copy as
// unavailable.
var errCopyRace = apperr.BusinessRule(apperr.CodeCopyUnavailable, "copy was claimed concurrently")

// IssueLoan lends an available copy to an active user. If the borrower holds
// an active reservation for the copy's book it is fulfilled by the same
// transaction.
func (s *LoanService) IssueLoan(ctx context.Context, req models.IssueLoanRequest) (*models.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	policy := s.policy.Snapshot(ctx)

	var loan models.Loan
	attempt := func() error {
		return s.store.WithinTx(ctx, func(q Querier) error {
			copy, err := q.GetCopyByID(ctx, req.CopyID)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperr.NotFound("copy")
				}
				return apperr.FromStore(err, "get copy")
			}
			if copy.Status != models.CopyStatusAvailable {
				return apperr.Newf(apperr.KindBusinessRule, apperr.CodeCopyUnavailable,
					"copy is %s, not available", copy.Status)
			}

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

			activeLoans, err := q.CountActiveLoansByUser(ctx, req.UserID)
			if err != nil {
				return apperr.FromStore(err, "count active loans")
			}
			if activeLoans >= int64(policy.MaxLoansPerUser) {
				return apperr.Newf(apperr.KindBusinessRule, apperr.CodeLoanLimitExceeded,
					"user has reached the maximum of %d simultaneous loans", policy.MaxLoansPerUser)
			}

			// Optimistic claim: only flip available -> loaned if nobody beat
			// us to it since the read above.
			claimed, err := q.UpdateCopyStatusIf(ctx, copy.ID, models.CopyStatusAvailable, models.CopyStatusLoaned)
			if err != nil {
				return apperr.FromStore(err, "claim copy")
			}
			if !claimed {
				return errCopyRace
			}

			loanDays := policy.DefaultLoanDays
			if req.LoanDays != nil {
				loanDays = *req.LoanDays
			}
			now := time.Now().UTC()

			loan, err = q.CreateLoan(ctx, repository.CreateLoanParams{
				CopyID:   copy.ID,
				UserID:   req.UserID,
				IssuedBy: req.IssuerID,
				LoanedAt: now,
				DueAt:    now.AddDate(0, 0, loanDays),
			})
			if err != nil {
				return apperr.FromStore(err, "create loan")
			}

			return s.reservations.fulfillForLoan(ctx, q, copy.BookID, req.UserID)
		})
	}

	err := attempt()
	if err == errCopyRace {
		err = attempt()
		if err == errCopyRace {
			err = apperr.BusinessRule(apperr.CodeCopyUnavailable, "copy is not available")
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan issued",
		"loan_id", loan.ID,
		"copy_id", loan.CopyID,
		"user_id", req.UserID,
		"due_at", loan.DueAt,
	)
	return &loan, nil
}

// ReturnResult is the aggregate outcome of a return: the closed loan, the
// overdue fine if one was issued, and the reservation promoted by the freed
// copy if any.
type ReturnResult struct {
	Loan     models.Loan
	Fine     *models.Fine
	Promoted *models.Reservation
}

// ReturnLoan closes an ongoing loan, releases the copy, issues an overdue
// fine when past due and promotes the next reservation for the book. All of
// it commits as a single transaction.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID int64) (*ReturnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	policy := s.policy.Snapshot(ctx)

	var result ReturnResult
	err := s.store.WithinTx(ctx, func(q Querier) error {
		loan, err := q.GetLoanByID(ctx, loanID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("loan")
			}
			return apperr.FromStore(err, "get loan")
		}
		if loan.Status != models.LoanStatusOngoing {
			return apperr.BusinessRule(apperr.CodeLoanAlreadyClosed, "loan has already been closed")
		}

		now := time.Now().UTC()
		closed, err := q.CloseLoan(ctx, loanID, now)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.BusinessRule(apperr.CodeLoanAlreadyClosed, "loan has already been closed")
			}
			return apperr.FromStore(err, "close loan")
		}
		result.Loan = closed

		if err := q.UpdateCopyStatus(ctx, closed.CopyID, models.CopyStatusAvailable); err != nil {
			return apperr.FromStore(err, "release copy")
		}

		if daysLate := DaysLate(closed.DueAt, now); daysLate > 0 {
			result.Fine, err = s.fines.issueOverdueFine(ctx, q, closed, daysLate, policy)
			if err != nil {
				return err
			}
		}

		copy, err := q.GetCopyByID(ctx, closed.CopyID)
		if err != nil {
			return apperr.FromStore(err, "get copy")
		}
		result.Promoted, err = s.reservations.promoteNext(ctx, q, copy.BookID, policy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.reservations.notifyPromoted(ctx, result.Promoted)

	s.logger.Info("loan returned",
		"loan_id", result.Loan.ID,
		"copy_id", result.Loan.CopyID,
		"fine_issued", result.Fine != nil,
		"reservation_promoted", result.Promoted != nil,
	)
	return &result, nil
}

// MarkLost records an ongoing loan as lost along with its copy. No fine is
// issued automatically; staff decide whether to charge via a manual fine.
func (s *LoanService) MarkLost(ctx context.Context, loanID int64) (*models.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var loan models.Loan
	err := s.store.WithinTx(ctx, func(q Querier) error {
		var err error
		loan, err = q.MarkLoanLost(ctx, loanID)
		if err != nil {
			if repository.IsNotFound(err) {
				if _, getErr := q.GetLoanByID(ctx, loanID); getErr != nil {
					if repository.IsNotFound(getErr) {
						return apperr.NotFound("loan")
					}
					return apperr.FromStore(getErr, "get loan")
				}
				return apperr.BusinessRule(apperr.CodeLoanAlreadyClosed, "loan has already been closed")
			}
			return apperr.FromStore(err, "mark loan lost")
		}
		if err := q.UpdateCopyStatus(ctx, loan.CopyID, models.CopyStatusLost); err != nil {
			return apperr.FromStore(err, "mark copy lost")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan marked lost", "loan_id", loan.ID, "copy_id", loan.CopyID)
	return &loan, nil
}

// GetLoan retrieves a loan with its copy and book
func (s *LoanService) GetLoan(ctx context.Context, id int64) (*models.LoanResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	loan, err := s.store.GetLoanByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("loan")
		}
		return nil, apperr.FromStore(err, "get loan")
	}

	response := &models.LoanResponse{Loan: loan}
	if copy, err := s.store.GetCopyByID(ctx, loan.CopyID); err == nil {
		response.Copy = &copy
		if book, err := s.store.GetBookByID(ctx, copy.BookID); err == nil {
			response.Book = &book
		}
	}
	return response, nil
}

// ListLoans returns loans with pagination
func (s *LoanService) ListLoans(ctx context.Context, limit, offset int32) ([]models.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	loans, err := s.store.ListLoans(ctx, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list loans")
	}
	return loans, nil
}

// ListUserLoans returns a user's loans with pagination
func (s *LoanService) ListUserLoans(ctx context.Context, userID int64, limit, offset int32) ([]models.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	loans, err := s.store.ListLoansByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list user loans")
	}
	return loans, nil
}

// ListOverdueLoans returns ongoing loans past their due date
func (s *LoanService) ListOverdueLoans(ctx context.Context) ([]models.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	loans, err := s.store.ListOverdueLoans(ctx, time.Now().UTC())
	if err != nil {
		return nil, apperr.FromStore(err, "list overdue loans")
	}
	return loans, nil
}

// DeleteLoan removes a loan record. Only closed loans can be removed; the
// fine back-reference survives via ON DELETE SET NULL.
func (s *LoanService) DeleteLoan(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	loan, err := s.store.GetLoanByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("loan")
		}
		return apperr.FromStore(err, "get loan")
	}
	if loan.Status == models.LoanStatusOngoing {
		return apperr.Validation("cannot delete an ongoing loan", nil)
	}
	if err := s.store.DeleteLoan(ctx, id); err != nil {
		return apperr.FromStore(err, "delete loan")
	}
	return nil
}
