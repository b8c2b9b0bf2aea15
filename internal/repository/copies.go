package repository

import (
	"context"

	"github.com/biblio-app/biblio/internal/models"
)

const copyColumns = `id, book_id, barcode, acquisition_date, status, location, created_at, updated_at`

func scanCopy(row interface{ Scan(dest ...interface{}) error }) (models.Copy, error) {
	var c models.Copy
	err := row.Scan(&c.ID, &c.BookID, &c.Barcode, &c.AcquisitionDate,
		&c.Status, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) CreateCopy(ctx context.Context, arg models.CreateCopyRequest) (models.Copy, error) {
	status := arg.Status
	if status == "" {
		status = models.CopyStatusAvailable
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO book_copies (book_id, barcode, acquisition_date, status, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+copyColumns,
		arg.BookID, arg.Barcode, arg.AcquisitionDate, status, arg.Location)
	return scanCopy(row)
}

func (q *Queries) GetCopyByID(ctx context.Context, id int64) (models.Copy, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+copyColumns+` FROM book_copies
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanCopy(row)
}

func (q *Queries) GetCopyByBarcode(ctx context.Context, barcode string) (models.Copy, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+copyColumns+` FROM book_copies
		WHERE barcode = $1 AND deleted_at IS NULL`, barcode)
	return scanCopy(row)
}

func (q *Queries) UpdateCopy(ctx context.Context, c models.Copy) (models.Copy, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE book_copies
		SET barcode = $2, acquisition_date = $3, status = $4, location = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+copyColumns,
		c.ID, c.Barcode, c.AcquisitionDate, c.Status, c.Location)
	return scanCopy(row)
}

// UpdateCopyStatus sets the status unconditionally
func (q *Queries) UpdateCopyStatus(ctx context.Context, id int64, status models.CopyStatus) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE book_copies SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// UpdateCopyStatusIf flips the status only when the current status matches
// the expected one. Returns false without error when another writer won the
// race, which callers treat as a conflict.
func (q *Queries) UpdateCopyStatusIf(ctx context.Context, id int64, from, to models.CopyStatus) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE book_copies SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindFirstAvailableCopy returns the available copy with the lowest id so
// promotion order stays deterministic.
func (q *Queries) FindFirstAvailableCopy(ctx context.Context, bookID int64) (models.Copy, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+copyColumns+` FROM book_copies
		WHERE book_id = $1 AND status = 'available' AND deleted_at IS NULL
		ORDER BY id ASC
		LIMIT 1`, bookID)
	return scanCopy(row)
}

func (q *Queries) CountAvailableCopies(ctx context.Context, bookID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM book_copies
		WHERE book_id = $1 AND status = 'available' AND deleted_at IS NULL`, bookID).Scan(&count)
	return count, err
}

func (q *Queries) ListCopiesByBook(ctx context.Context, bookID int64) ([]models.Copy, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+copyColumns+` FROM book_copies
		WHERE book_id = $1 AND deleted_at IS NULL
		ORDER BY id ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var copies []models.Copy
	for rows.Next() {
		c, err := scanCopy(rows)
		if err != nil {
			return nil, err
		}
		copies = append(copies, c)
	}
	return copies, rows.Err()
}

func (q *Queries) ListCopies(ctx context.Context, limit, offset int32) ([]models.Copy, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+copyColumns+` FROM book_copies
		WHERE deleted_at IS NULL
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var copies []models.Copy
	for rows.Next() {
		c, err := scanCopy(rows)
		if err != nil {
			return nil, err
		}
		copies = append(copies, c)
	}
	return copies, rows.Err()
}

func (q *Queries) SoftDeleteCopy(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE book_copies SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// CountCopiesByStatus returns copy counts grouped by status for the dashboard
func (q *Queries) CountCopiesByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.Query(ctx, `
		SELECT status, COUNT(*) FROM book_copies
		WHERE deleted_at IS NULL
		GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
