package repository

import (
	"context"
	"time"

	"github.com/biblio-app/biblio/internal/models"
)

const loanColumns = `id, book_copy_id, user_id, issued_by, loaned_at, due_at, returned_at, status, created_at, updated_at`

func scanLoan(row interface{ Scan(dest ...interface{}) error }) (models.Loan, error) {
	var l models.Loan
	err := row.Scan(&l.ID, &l.CopyID, &l.UserID, &l.IssuedBy, &l.LoanedAt,
		&l.DueAt, &l.ReturnedAt, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

type CreateLoanParams struct {
	CopyID   int64
	UserID   int64
	IssuedBy *int64
	LoanedAt time.Time
	DueAt    time.Time
}

func (q *Queries) CreateLoan(ctx context.Context, arg CreateLoanParams) (models.Loan, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO loans (book_copy_id, user_id, issued_by, loaned_at, due_at, status)
		VALUES ($1, $2, $3, $4, $5, 'ongoing')
		RETURNING `+loanColumns,
		arg.CopyID, arg.UserID, arg.IssuedBy, arg.LoanedAt, arg.DueAt)
	return scanLoan(row)
}

func (q *Queries) GetLoanByID(ctx context.Context, id int64) (models.Loan, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return scanLoan(row)
}

// CloseLoan marks an ongoing loan as returned. The status guard keeps the
// close idempotent at the store level: a second call matches no row.
func (q *Queries) CloseLoan(ctx context.Context, id int64, returnedAt time.Time) (models.Loan, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE loans
		SET returned_at = $2, status = 'returned', updated_at = now()
		WHERE id = $1 AND status = 'ongoing'
		RETURNING `+loanColumns, id, returnedAt)
	return scanLoan(row)
}

func (q *Queries) MarkLoanLost(ctx context.Context, id int64) (models.Loan, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE loans
		SET status = 'lost', updated_at = now()
		WHERE id = $1 AND status = 'ongoing'
		RETURNING `+loanColumns, id)
	return scanLoan(row)
}

func (q *Queries) CountActiveLoansByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM loans
		WHERE user_id = $1 AND status = 'ongoing'`, userID).Scan(&count)
	return count, err
}

// GetOngoingLoanByCopy returns the single open loan for a copy, if any
func (q *Queries) GetOngoingLoanByCopy(ctx context.Context, copyID int64) (models.Loan, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE book_copy_id = $1 AND status = 'ongoing'`, copyID)
	return scanLoan(row)
}

func (q *Queries) ListLoans(ctx context.Context, limit, offset int32) ([]models.Loan, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+loanColumns+` FROM loans
		ORDER BY loaned_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (q *Queries) ListLoansByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Loan, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE user_id = $1
		ORDER BY loaned_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

// ListOverdueLoans returns ongoing loans past their due date
func (q *Queries) ListOverdueLoans(ctx context.Context, now time.Time) ([]models.Loan, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE status = 'ongoing' AND due_at < $1
		ORDER BY due_at ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (q *Queries) CountOngoingLoans(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM loans WHERE status = 'ongoing'`).Scan(&count)
	return count, err
}

func (q *Queries) CountOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM loans
		WHERE status = 'ongoing' AND due_at < $1`, now).Scan(&count)
	return count, err
}

func (q *Queries) DeleteLoan(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func collectLoans(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]models.Loan, error) {
	var loans []models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
