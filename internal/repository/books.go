package repository

import (
	"context"

	"github.com/biblio-app/biblio/internal/models"
)

const bookColumns = `id, title, isbn, publisher_id, published_year, pages, language, description, cover_url, created_at, updated_at`

func scanBook(row interface{ Scan(dest ...interface{}) error }) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.ISBN, &b.PublisherID, &b.PublishedYear,
		&b.Pages, &b.Language, &b.Description, &b.CoverURL, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

type CreateBookParams struct {
	Title         string
	ISBN          *string
	PublisherID   *int64
	PublishedYear *int32
	Pages         *int32
	Language      *string
	Description   *string
	CoverURL      *string
}

func (q *Queries) CreateBook(ctx context.Context, arg CreateBookParams) (models.Book, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO books (title, isbn, publisher_id, published_year, pages, language, description, cover_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+bookColumns,
		arg.Title, arg.ISBN, arg.PublisherID, arg.PublishedYear, arg.Pages,
		arg.Language, arg.Description, arg.CoverURL)
	return scanBook(row)
}

func (q *Queries) GetBookByID(ctx context.Context, id int64) (models.Book, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanBook(row)
}

func (q *Queries) GetBookByISBN(ctx context.Context, isbn string) (models.Book, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE isbn = $1 AND deleted_at IS NULL`, isbn)
	return scanBook(row)
}

func (q *Queries) UpdateBook(ctx context.Context, b models.Book) (models.Book, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE books
		SET title = $2, isbn = $3, publisher_id = $4, published_year = $5,
		    pages = $6, language = $7, description = $8, cover_url = $9,
		    updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+bookColumns,
		b.ID, b.Title, b.ISBN, b.PublisherID, b.PublishedYear, b.Pages,
		b.Language, b.Description, b.CoverURL)
	return scanBook(row)
}

func (q *Queries) SoftDeleteBook(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE books SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (q *Queries) ListBooks(ctx context.Context, limit, offset int32) ([]models.Book, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE deleted_at IS NULL
		ORDER BY title ASC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBooks(rows)
}

// SearchBooks matches title, isbn and description with a case-insensitive
// pattern
func (q *Queries) SearchBooks(ctx context.Context, query string, limit, offset int32) ([]models.Book, error) {
	pattern := "%" + query + "%"
	rows, err := q.db.Query(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE deleted_at IS NULL
		  AND (title ILIKE $1 OR isbn ILIKE $1 OR description ILIKE $1)
		ORDER BY title ASC, id ASC
		LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (q *Queries) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM books WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

// GetBookCopyCounts returns total and available copy counts for a book
func (q *Queries) GetBookCopyCounts(ctx context.Context, bookID int64) (total, available int, err error) {
	err = q.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'available')
		FROM book_copies
		WHERE book_id = $1 AND deleted_at IS NULL`, bookID).Scan(&total, &available)
	return total, available, err
}

// SetBookAuthors replaces the author set attached to a book
func (q *Queries) SetBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM book_author WHERE book_id = $1`, bookID); err != nil {
		return err
	}
	for _, authorID := range authorIDs {
		if _, err := q.db.Exec(ctx, `
			INSERT INTO book_author (book_id, author_id) VALUES ($1, $2)`,
			bookID, authorID); err != nil {
			return err
		}
	}
	return nil
}

// SetBookCategories replaces the category set attached to a book
func (q *Queries) SetBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM book_category WHERE book_id = $1`, bookID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err := q.db.Exec(ctx, `
			INSERT INTO book_category (book_id, category_id) VALUES ($1, $2)`,
			bookID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) GetBookAuthors(ctx context.Context, bookID int64) ([]models.Author, error) {
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.name, a.bio, a.created_at, a.updated_at
		FROM authors a
		JOIN book_author ba ON ba.author_id = a.id
		WHERE ba.book_id = $1
		ORDER BY a.name ASC`, bookID)
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

func (q *Queries) GetBookCategories(ctx context.Context, bookID int64) ([]models.Category, error) {
	rows, err := q.db.Query(ctx, `
		SELECT c.id, c.name, c.created_at, c.updated_at
		FROM categories c
		JOIN book_category bc ON bc.category_id = c.id
		WHERE bc.book_id = $1
		ORDER BY c.name ASC`, bookID)
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

func collectBooks(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]models.Book, error) {
	var books []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
