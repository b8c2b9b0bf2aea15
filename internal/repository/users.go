package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biblio-app/biblio/internal/models"
)

const userColumns = `id, first_name, last_name, email, password, role, membership_number, phone, address, membership_start, membership_end, fines_balance::text, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...interface{}) error }) (models.User, error) {
	var u models.User
	var balance string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &u.MembershipNumber, &u.Phone, &u.Address, &u.MembershipStart,
		&u.MembershipEnd, &balance, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	u.FinesBalance, err = decimal.NewFromString(balance)
	return u, err
}

type CreateUserParams struct {
	FirstName        string
	LastName         string
	Email            string
	PasswordHash     string
	Role             models.UserRole
	MembershipNumber *string
	Phone            *string
	Address          *string
	MembershipStart  *time.Time
	MembershipEnd    *time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password, role, membership_number, phone, address, membership_start, membership_end, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
		RETURNING `+userColumns,
		arg.FirstName, arg.LastName, arg.Email, arg.PasswordHash, arg.Role,
		arg.MembershipNumber, arg.Phone, arg.Address, arg.MembershipStart, arg.MembershipEnd)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE email = $1 AND deleted_at IS NULL`, email)
	return scanUser(row)
}

// UpdateUser writes the full mutable field set; the service layer merges
// patch requests into the current row first.
func (q *Queries) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, role = $5,
		    membership_number = $6, phone = $7, address = $8,
		    membership_start = $9, membership_end = $10, is_active = $11,
		    updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns,
		u.ID, u.FirstName, u.LastName, u.Email, u.Role, u.MembershipNumber,
		u.Phone, u.Address, u.MembershipStart, u.MembershipEnd, u.IsActive)
	return scanUser(row)
}

func (q *Queries) ListUsers(ctx context.Context, limit, offset int32) ([]models.User, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

func (q *Queries) SoftDeleteUser(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE users SET deleted_at = now(), is_active = false, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
