package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// BookQuerier defines the book store operations used by services
type BookQuerier interface {
	CreateBook(ctx context.Context, arg repository.CreateBookParams) (models.Book, error)
	GetBookByID(ctx context.Context, id int64) (models.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (models.Book, error)
	UpdateBook(ctx context.Context, b models.Book) (models.Book, error)
	SoftDeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context, limit, offset int32) ([]models.Book, error)
	SearchBooks(ctx context.Context, query string, limit, offset int32) ([]models.Book, error)
	CountBooks(ctx context.Context) (int64, error)
	GetBookCopyCounts(ctx context.Context, bookID int64) (total, available int, err error)
	SetBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) error
	SetBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) error
	GetBookAuthors(ctx context.Context, bookID int64) ([]models.Author, error)
	GetBookCategories(ctx context.Context, bookID int64) ([]models.Category, error)
}

// CopyQuerier defines the copy store operations used by services
type CopyQuerier interface {
	CreateCopy(ctx context.Context, arg models.CreateCopyRequest) (models.Copy, error)
	GetCopyByID(ctx context.Context, id int64) (models.Copy, error)
	GetCopyByBarcode(ctx context.Context, barcode string) (models.Copy, error)
	UpdateCopy(ctx context.Context, c models.Copy) (models.Copy, error)
	UpdateCopyStatus(ctx context.Context, id int64, status models.CopyStatus) error
	UpdateCopyStatusIf(ctx context.Context, id int64, from, to models.CopyStatus) (bool, error)
	FindFirstAvailableCopy(ctx context.Context, bookID int64) (models.Copy, error)
	CountAvailableCopies(ctx context.Context, bookID int64) (int64, error)
	ListCopiesByBook(ctx context.Context, bookID int64) ([]models.Copy, error)
	ListCopies(ctx context.Context, limit, offset int32) ([]models.Copy, error)
	SoftDeleteCopy(ctx context.Context, id int64) error
	CountCopiesByStatus(ctx context.Context) (map[string]int64, error)
}

// LoanQuerier defines the loan store operations used by services
type LoanQuerier interface {
	CreateLoan(ctx context.Context, arg repository.CreateLoanParams) (models.Loan, error)
	GetLoanByID(ctx context.Context, id int64) (models.Loan, error)
	CloseLoan(ctx context.Context, id int64, returnedAt time.Time) (models.Loan, error)
	MarkLoanLost(ctx context.Context, id int64) (models.Loan, error)
	CountActiveLoansByUser(ctx context.Context, userID int64) (int64, error)
	GetOngoingLoanByCopy(ctx context.Context, copyID int64) (models.Loan, error)
	ListLoans(ctx context.Context, limit, offset int32) ([]models.Loan, error)
	ListLoansByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Loan, error)
	ListOverdueLoans(ctx context.Context, now time.Time) ([]models.Loan, error)
	CountOngoingLoans(ctx context.Context) (int64, error)
	CountOverdueLoans(ctx context.Context, now time.Time) (int64, error)
	DeleteLoan(ctx context.Context, id int64) error
}

// ReservationQuerier defines the reservation store operations used by services
type ReservationQuerier interface {
	CreateReservation(ctx context.Context, arg repository.CreateReservationParams) (models.Reservation, error)
	GetReservationByID(ctx context.Context, id int64) (models.Reservation, error)
	GetActiveReservationForBookUser(ctx context.Context, bookID, userID int64) (models.Reservation, error)
	MaxActivePosition(ctx context.Context, bookID int64) (int32, error)
	NextPendingReservation(ctx context.Context, bookID int64) (models.Reservation, error)
	MarkReservationNotified(ctx context.Context, id int64, notifiedAt, expiresAt time.Time) (models.Reservation, error)
	MarkReservationFulfilled(ctx context.Context, id int64) (models.Reservation, error)
	MarkReservationCancelled(ctx context.Context, id int64) (models.Reservation, error)
	MarkReservationExpired(ctx context.Context, id int64, now time.Time) (models.Reservation, error)
	ListStaleNotified(ctx context.Context, now time.Time) ([]models.Reservation, error)
	ListReservations(ctx context.Context, limit, offset int32) ([]models.Reservation, error)
	ListActiveReservationsByBook(ctx context.Context, bookID int64) ([]models.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Reservation, error)
	CountPendingReservations(ctx context.Context) (int64, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// FineQuerier defines the fine store operations used by services
type FineQuerier interface {
	CreateFine(ctx context.Context, arg repository.CreateFineParams) (models.Fine, error)
	GetFineByID(ctx context.Context, id int64) (models.Fine, error)
	PayFine(ctx context.Context, arg repository.PayFineParams) (models.Fine, error)
	ListFines(ctx context.Context, limit, offset int32) ([]models.Fine, error)
	ListFinesByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Fine, error)
	SumUnpaidFinesByUser(ctx context.Context, userID int64) (decimal.Decimal, error)
	SumUnpaidFines(ctx context.Context) (decimal.Decimal, error)
	UpdateUserFinesBalance(ctx context.Context, userID int64) error
	DeleteFine(ctx context.Context, id int64) error
}

// UserQuerier defines the user store operations used by services
type UserQuerier interface {
	CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	ListUsers(ctx context.Context, limit, offset int32) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	SoftDeleteUser(ctx context.Context, id int64) error
}

// SettingsQuerier defines the settings store operations used by services
type SettingsQuerier interface {
	GetSetting(ctx context.Context, key string) (models.Setting, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) (models.Setting, error)
}

// CatalogQuerier defines author/publisher/category store operations
type CatalogQuerier interface {
	CreateAuthor(ctx context.Context, name string, bio *string) (models.Author, error)
	GetAuthorByID(ctx context.Context, id int64) (models.Author, error)
	UpdateAuthor(ctx context.Context, id int64, name string, bio *string) (models.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
	ListAuthors(ctx context.Context, limit, offset int32) ([]models.Author, error)
	CreatePublisher(ctx context.Context, name string, address *string) (models.Publisher, error)
	GetPublisherByID(ctx context.Context, id int64) (models.Publisher, error)
	UpdatePublisher(ctx context.Context, id int64, name string, address *string) (models.Publisher, error)
	DeletePublisher(ctx context.Context, id int64) error
	ListPublishers(ctx context.Context, limit, offset int32) ([]models.Publisher, error)
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, limit, offset int32) ([]models.Category, error)
}

// Querier is the full entity store surface
type Querier interface {
	BookQuerier
	CopyQuerier
	LoanQuerier
	ReservationQuerier
	FineQuerier
	UserQuerier
	SettingsQuerier
	CatalogQuerier
}

// Store is the entity store plus transaction execution. Lifecycle operations
// that touch several entities run inside WithinTx so their effects commit
// together or not at all.
type Store interface {
	Querier
	WithinTx(ctx context.Context, fn func(Querier) error) error
}

// SQLStore adapts the pgx-backed repository to the Store interface
type SQLStore struct {
	*repository.Store
}

func NewSQLStore(store *repository.Store) *SQLStore {
	return &SQLStore{Store: store}
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(Querier) error) error {
	return s.Store.ExecTx(ctx, func(q *repository.Queries) error {
		return fn(q)
	})
}
