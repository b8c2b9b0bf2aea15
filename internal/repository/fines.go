package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biblio-app/biblio/internal/models"
)

// amount is selected as text so it round-trips into decimal.Decimal without
// binary numeric codecs.
const fineColumns = `id, user_id, loan_id, amount::text, reason, issued_by, issued_at, paid, paid_at, payment_method, payment_reference, handled_by, created_at, updated_at`

func scanFine(row interface{ Scan(dest ...interface{}) error }) (models.Fine, error) {
	var f models.Fine
	var amount string
	err := row.Scan(&f.ID, &f.UserID, &f.LoanID, &amount, &f.Reason,
		&f.IssuedBy, &f.IssuedAt, &f.Paid, &f.PaidAt, &f.PaymentMethod,
		&f.PaymentReference, &f.HandledBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	f.Amount, err = decimal.NewFromString(amount)
	return f, err
}

type CreateFineParams struct {
	UserID   int64
	LoanID   *int64
	Amount   decimal.Decimal
	Reason   *string
	IssuedBy *int64
	IssuedAt time.Time
}

func (q *Queries) CreateFine(ctx context.Context, arg CreateFineParams) (models.Fine, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO fines (user_id, loan_id, amount, reason, issued_by, issued_at, paid)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, false)
		RETURNING `+fineColumns,
		arg.UserID, arg.LoanID, arg.Amount.String(), arg.Reason, arg.IssuedBy, arg.IssuedAt)
	return scanFine(row)
}

func (q *Queries) GetFineByID(ctx context.Context, id int64) (models.Fine, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+fineColumns+` FROM fines WHERE id = $1`, id)
	return scanFine(row)
}

type PayFineParams struct {
	ID               int64
	PaidAt           time.Time
	PaymentMethod    *models.PaymentMethod
	PaymentReference *string
	HandledBy        *int64
}

// PayFine settles a fine. The paid guard means a second payment attempt
// matches no row.
func (q *Queries) PayFine(ctx context.Context, arg PayFineParams) (models.Fine, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE fines
		SET paid = true, paid_at = $2, payment_method = $3,
		    payment_reference = $4, handled_by = $5, updated_at = now()
		WHERE id = $1 AND paid = false
		RETURNING `+fineColumns,
		arg.ID, arg.PaidAt, arg.PaymentMethod, arg.PaymentReference, arg.HandledBy)
	return scanFine(row)
}

func (q *Queries) ListFines(ctx context.Context, limit, offset int32) ([]models.Fine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+fineColumns+` FROM fines
		ORDER BY issued_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFines(rows)
}

func (q *Queries) ListFinesByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Fine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+fineColumns+` FROM fines
		WHERE user_id = $1
		ORDER BY issued_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFines(rows)
}

// SumUnpaidFinesByUser computes the user's live fines balance
func (q *Queries) SumUnpaidFinesByUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var sum string
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text FROM fines
		WHERE user_id = $1 AND paid = false`, userID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(sum)
}

func (q *Queries) SumUnpaidFines(ctx context.Context) (decimal.Decimal, error) {
	var sum string
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text FROM fines
		WHERE paid = false`).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(sum)
}

// UpdateUserFinesBalance refreshes the derived balance column from unpaid
// fines. Run inside the same transaction as the fine mutation.
func (q *Queries) UpdateUserFinesBalance(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, `
		UPDATE users
		SET fines_balance = (
			SELECT COALESCE(SUM(amount), 0) FROM fines
			WHERE user_id = $1 AND paid = false
		), updated_at = now()
		WHERE id = $1`, userID)
	return err
}

func (q *Queries) DeleteFine(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM fines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func collectFines(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]models.Fine, error) {
	var fines []models.Fine
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}
