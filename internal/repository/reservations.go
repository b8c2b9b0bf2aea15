package repository

import (
	"context"
	"time"

	"github.com/biblio-app/biblio/internal/models"
)

const reservationColumns = `id, book_id, user_id, reserved_at, expires_at, position, status, notified_at, created_at, updated_at`

func scanReservation(row interface{ Scan(dest ...interface{}) error }) (models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(&r.ID, &r.BookID, &r.UserID, &r.ReservedAt, &r.ExpiresAt,
		&r.Position, &r.Status, &r.NotifiedAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

type CreateReservationParams struct {
	BookID     int64
	UserID     int64
	ReservedAt time.Time
	ExpiresAt  *time.Time
	Position   int32
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO reservations (book_id, user_id, reserved_at, expires_at, position, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING `+reservationColumns,
		arg.BookID, arg.UserID, arg.ReservedAt, arg.ExpiresAt, arg.Position)
	return scanReservation(row)
}

func (q *Queries) GetReservationByID(ctx context.Context, id int64) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

// GetActiveReservationForBookUser returns the pending or notified reservation
// a user holds for a book, if any
func (q *Queries) GetActiveReservationForBookUser(ctx context.Context, bookID, userID int64) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE book_id = $1 AND user_id = $2 AND status IN ('pending', 'notified')
		ORDER BY id ASC
		LIMIT 1`, bookID, userID)
	return scanReservation(row)
}

// MaxActivePosition returns the highest queue position among active
// reservations for a book, zero when the queue is empty
func (q *Queries) MaxActivePosition(ctx context.Context, bookID int64) (int32, error) {
	var max int32
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(position), 0) FROM reservations
		WHERE book_id = $1 AND status IN ('pending', 'notified')`, bookID).Scan(&max)
	return max, err
}

// NextPendingReservation returns the lowest-position pending reservation
func (q *Queries) NextPendingReservation(ctx context.Context, bookID int64) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE book_id = $1 AND status = 'pending'
		ORDER BY position ASC
		LIMIT 1`, bookID)
	return scanReservation(row)
}

// MarkReservationNotified moves a pending reservation to notified. The
// expiry window is only written when none was set at creation time.
func (q *Queries) MarkReservationNotified(ctx context.Context, id int64, notifiedAt, expiresAt time.Time) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE reservations
		SET status = 'notified', notified_at = $2,
		    expires_at = COALESCE(expires_at, $3), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+reservationColumns, id, notifiedAt, expiresAt)
	return scanReservation(row)
}

func (q *Queries) MarkReservationFulfilled(ctx context.Context, id int64) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE reservations
		SET status = 'fulfilled', updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'notified')
		RETURNING `+reservationColumns, id)
	return scanReservation(row)
}

func (q *Queries) MarkReservationCancelled(ctx context.Context, id int64) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE reservations
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'notified')
		RETURNING `+reservationColumns, id)
	return scanReservation(row)
}

// MarkReservationExpired transitions a notified reservation whose window has
// passed. The expires_at guard makes the sweep idempotent.
func (q *Queries) MarkReservationExpired(ctx context.Context, id int64, now time.Time) (models.Reservation, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE reservations
		SET status = 'expired', updated_at = now()
		WHERE id = $1 AND status = 'notified' AND expires_at < $2
		RETURNING `+reservationColumns, id, now)
	return scanReservation(row)
}

// ListStaleNotified returns notified reservations whose expiry has passed
func (q *Queries) ListStaleNotified(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE status = 'notified' AND expires_at < $1
		ORDER BY expires_at ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (q *Queries) ListReservations(ctx context.Context, limit, offset int32) ([]models.Reservation, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		ORDER BY reserved_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListActiveReservationsByBook returns the live queue for a book in FIFO order
func (q *Queries) ListActiveReservationsByBook(ctx context.Context, bookID int64) ([]models.Reservation, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE book_id = $1 AND status IN ('pending', 'notified')
		ORDER BY position ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (q *Queries) ListReservationsByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Reservation, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE user_id = $1
		ORDER BY reserved_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (q *Queries) CountPendingReservations(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations WHERE status = 'pending'`).Scan(&count)
	return count, err
}

func (q *Queries) DeleteReservation(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func collectReservations(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}
