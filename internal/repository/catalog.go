package repository

import (
	"context"

	"github.com/biblio-app/biblio/internal/models"
)

// Authors

func (q *Queries) CreateAuthor(ctx context.Context, name string, bio *string) (models.Author, error) {
	var a models.Author
	err := q.db.QueryRow(ctx, `
		INSERT INTO authors (name, bio) VALUES ($1, $2)
		RETURNING id, name, bio, created_at, updated_at`, name, bio).
		Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (q *Queries) GetAuthorByID(ctx context.Context, id int64) (models.Author, error) {
	var a models.Author
	err := q.db.QueryRow(ctx, `
		SELECT id, name, bio, created_at, updated_at FROM authors WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (q *Queries) UpdateAuthor(ctx context.Context, id int64, name string, bio *string) (models.Author, error) {
	var a models.Author
	err := q.db.QueryRow(ctx, `
		UPDATE authors SET name = $2, bio = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, bio, created_at, updated_at`, id, name, bio).
		Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (q *Queries) DeleteAuthor(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (q *Queries) ListAuthors(ctx context.Context, limit, offset int32) ([]models.Author, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, bio, created_at, updated_at FROM authors
		ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// Publishers

func (q *Queries) CreatePublisher(ctx context.Context, name string, address *string) (models.Publisher, error) {
	var p models.Publisher
	err := q.db.QueryRow(ctx, `
		INSERT INTO publishers (name, address) VALUES ($1, $2)
		RETURNING id, name, address, created_at, updated_at`, name, address).
		Scan(&p.ID, &p.Name, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) GetPublisherByID(ctx context.Context, id int64) (models.Publisher, error) {
	var p models.Publisher
	err := q.db.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at FROM publishers WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) UpdatePublisher(ctx context.Context, id int64, name string, address *string) (models.Publisher, error) {
	var p models.Publisher
	err := q.db.QueryRow(ctx, `
		UPDATE publishers SET name = $2, address = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, address, created_at, updated_at`, id, name, address).
		Scan(&p.ID, &p.Name, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) DeletePublisher(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (q *Queries) ListPublishers(ctx context.Context, limit, offset int32) ([]models.Publisher, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, address, created_at, updated_at FROM publishers
		ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var publishers []models.Publisher
	for rows.Next() {
		var p models.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}
	return publishers, rows.Err()
}

// Categories

func (q *Queries) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	var c models.Category
	err := q.db.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING id, name, created_at, updated_at`, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := q.db.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) UpdateCategory(ctx context.Context, id int64, name string) (models.Category, error) {
	var c models.Category
	err := q.db.QueryRow(ctx, `
		UPDATE categories SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at`, id, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (q *Queries) ListCategories(ctx context.Context, limit, offset int32) ([]models.Category, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, created_at, updated_at FROM categories
		ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
