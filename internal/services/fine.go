package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// FineService handles fine issuance, payment and balance queries
type FineService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewFineService(store Store, logger *slog.Logger) *FineService {
	return &FineService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

// WithStoreTimeout customizes the per-operation store deadline
func (s *FineService) WithStoreTimeout(d time.Duration) *FineService {
	s.storeTimeout = d
	return s
}

// ComputeOverdueAmount computes the fine for a late return:
// max(0, daysLate - graceDays) * finePerDay, rounded half away from zero to
// two decimal places.
func ComputeOverdueAmount(daysLate int, policy Policy) decimal.Decimal {
	chargeable := daysLate - policy.GraceDays
	if chargeable <= 0 {
		return decimal.Zero.Round(2)
	}
	return policy.FinePerDay.Mul(decimal.NewFromInt(int64(chargeable))).Round(2)
}

// DaysLate counts whole and partial days between due and return time. A
// return before or at the due moment is zero; any fraction of a day counts
// as a full late day.
func DaysLate(dueAt, returnedAt time.Time) int {
	if !returnedAt.After(dueAt) {
		return 0
	}
	return int(math.Ceil(returnedAt.Sub(dueAt).Hours() / 24))
}

// IssueFine creates a manual fine and refreshes the user's derived balance
// in the same transaction.
func (s *FineService) IssueFine(ctx context.Context, req models.IssueFineRequest) (*models.Fine, error) {
	if req.Amount.IsNegative() {
		return nil, apperr.Validation("fine amount must not be negative", map[string]string{
			"amount": "must be greater than or equal to 0",
		})
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var fine models.Fine
	err := s.store.WithinTx(ctx, func(q Querier) error {
		if _, err := q.GetUserByID(ctx, req.UserID); err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("user")
			}
			return apperr.FromStore(err, "get user")
		}
		if req.LoanID != nil {
			if _, err := q.GetLoanByID(ctx, *req.LoanID); err != nil {
				if repository.IsNotFound(err) {
					return apperr.NotFound("loan")
				}
				return apperr.FromStore(err, "get loan")
			}
		}

		created, err := q.CreateFine(ctx, repository.CreateFineParams{
			UserID:   req.UserID,
			LoanID:   req.LoanID,
			Amount:   req.Amount.Round(2),
			Reason:   req.Reason,
			IssuedBy: req.IssuerID,
			IssuedAt: time.Now().UTC(),
		})
		if err != nil {
			if repository.IsForeignKeyViolation(err) {
				return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "referenced entity does not exist")
			}
			return apperr.FromStore(err, "create fine")
		}
		fine = created

		return s.refreshBalance(ctx, q, req.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("fine issued",
		"fine_id", fine.ID,
		"user_id", fine.UserID,
		"amount", fine.Amount.String(),
	)
	return &fine, nil
}

// PayFine settles an unpaid fine and refreshes the user's balance in the
// same transaction.
func (s *FineService) PayFine(ctx context.Context, fineID int64, req models.PayFineRequest) (*models.Fine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var fine models.Fine
	err := s.store.WithinTx(ctx, func(q Querier) error {
		paid, err := q.PayFine(ctx, repository.PayFineParams{
			ID:               fineID,
			PaidAt:           time.Now().UTC(),
			PaymentMethod:    req.PaymentMethod,
			PaymentReference: req.PaymentReference,
			HandledBy:        req.HandlerID,
		})
		if err != nil {
			if repository.IsNotFound(err) {
				// No unpaid row matched: distinguish missing from already paid
				existing, getErr := q.GetFineByID(ctx, fineID)
				if getErr != nil {
					if repository.IsNotFound(getErr) {
						return apperr.NotFound("fine")
					}
					return apperr.FromStore(getErr, "get fine")
				}
				if existing.Paid {
					return apperr.BusinessRule(apperr.CodeFineAlreadyPaid, "fine has already been paid")
				}
				return apperr.FromStore(err, "pay fine")
			}
			return apperr.FromStore(err, "pay fine")
		}
		fine = paid

		return s.refreshBalance(ctx, q, fine.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("fine paid",
		"fine_id", fine.ID,
		"user_id", fine.UserID,
		"amount", fine.Amount.String(),
	)
	return &fine, nil
}

// GetFine retrieves a fine by id
func (s *FineService) GetFine(ctx context.Context, id int64) (*models.Fine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	fine, err := s.store.GetFineByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("fine")
		}
		return nil, apperr.FromStore(err, "get fine")
	}
	return &fine, nil
}

// ListFines returns fines with pagination
func (s *FineService) ListFines(ctx context.Context, limit, offset int32) ([]models.Fine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	fines, err := s.store.ListFines(ctx, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list fines")
	}
	return fines, nil
}

// ListUserFines returns a user's fines with pagination
func (s *FineService) ListUserFines(ctx context.Context, userID int64, limit, offset int32) ([]models.Fine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	fines, err := s.store.ListFinesByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err, "list user fines")
	}
	return fines, nil
}

// UserBalance computes the user's fines balance on read as the sum of
// unpaid fines, so the figure can never drift from the fine records.
func (s *FineService) UserBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	balance, err := s.store.SumUnpaidFinesByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, apperr.FromStore(err, "sum unpaid fines")
	}
	return balance, nil
}

// DeleteFine removes a fine record and refreshes the owner's balance
func (s *FineService) DeleteFine(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.store.WithinTx(ctx, func(q Querier) error {
		fine, err := q.GetFineByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("fine")
			}
			return apperr.FromStore(err, "get fine")
		}
		if err := q.DeleteFine(ctx, id); err != nil {
			return apperr.FromStore(err, "delete fine")
		}
		return s.refreshBalance(ctx, q, fine.UserID)
	})
}

// issueOverdueFine creates the overdue fine for a late return inside the
// caller's transaction. Returns nil when the policy yields a zero amount.
func (s *FineService) issueOverdueFine(ctx context.Context, q Querier, loan models.Loan, daysLate int, policy Policy) (*models.Fine, error) {
	amount := ComputeOverdueAmount(daysLate, policy)
	if amount.IsZero() {
		return nil, nil
	}
	if loan.UserID == nil {
		return nil, nil
	}

	reason := "overdue return"
	fine, err := q.CreateFine(ctx, repository.CreateFineParams{
		UserID:   *loan.UserID,
		LoanID:   &loan.ID,
		Amount:   amount,
		Reason:   &reason,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, apperr.FromStore(err, "create overdue fine")
	}
	if err := s.refreshBalance(ctx, q, *loan.UserID); err != nil {
		return nil, err
	}
	return &fine, nil
}

func (s *FineService) refreshBalance(ctx context.Context, q Querier, userID int64) error {
	if err := q.UpdateUserFinesBalance(ctx, userID); err != nil {
		return apperr.FromStore(err, "refresh fines balance")
	}
	return nil
}
