package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// MockStore is a mock implementation of Store. WithinTx runs the callback
// against the mock itself, so transactional paths are tested with the same
// expectations as direct calls.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(Querier) error) error {
	return fn(m)
}

// book queries

func (m *MockStore) CreateBook(ctx context.Context, arg repository.CreateBookParams) (models.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.Book), args.Error(1)
}

func (m *MockStore) GetBookByID(ctx context.Context, id int64) (models.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Book), args.Error(1)
}

func (m *MockStore) GetBookByISBN(ctx context.Context, isbn string) (models.Book, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(models.Book), args.Error(1)
}

func (m *MockStore) UpdateBook(ctx context.Context, b models.Book) (models.Book, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(models.Book), args.Error(1)
}

func (m *MockStore) SoftDeleteBook(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListBooks(ctx context.Context, limit, offset int32) ([]models.Book, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockStore) SearchBooks(ctx context.Context, query string, limit, offset int32) ([]models.Book, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockStore) CountBooks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetBookCopyCounts(ctx context.Context, bookID int64) (int, int, error) {
	args := m.Called(ctx, bookID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockStore) SetBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) error {
	args := m.Called(ctx, bookID, authorIDs)
	return args.Error(0)
}

func (m *MockStore) SetBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) error {
	args := m.Called(ctx, bookID, categoryIDs)
	return args.Error(0)
}

func (m *MockStore) GetBookAuthors(ctx context.Context, bookID int64) ([]models.Author, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]models.Author), args.Error(1)
}

func (m *MockStore) GetBookCategories(ctx context.Context, bookID int64) ([]models.Category, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]models.Category), args.Error(1)
}

// copy queries

func (m *MockStore) CreateCopy(ctx context.Context, arg models.CreateCopyRequest) (models.Copy, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.Copy), args.Error(1)
}

func (m *MockStore) GetCopyByID(ctx context.Context, id int64) (models.Copy, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Copy), args.Error(1)
}

func (m *MockStore) GetCopyByBarcode(ctx context.Context, barcode string) (models.Copy, error) {
	args := m.Called(ctx, barcode)
	return args.Get(0).(models.Copy), args.Error(1)
}

func (m *MockStore) UpdateCopy(ctx context.Context, c models.Copy) (models.Copy, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(models.Copy), args.Error(1)
}

func (m *MockStore) UpdateCopyStatus(ctx context.Context, id int64, status models.CopyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) UpdateCopyStatusIf(ctx context.Context, id int64, from, to models.CopyStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) FindFirstAvailableCopy(ctx context.Context, bookID int64) (models.Copy, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(models.Copy), args.Error(1)
}

func (m *MockStore) CountAvailableCopies(ctx context.Context, bookID int64) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListCopiesByBook(ctx context.Context, bookID int64) ([]models.Copy, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]models.Copy), args.Error(1)
}

func (m *MockStore) ListCopies(ctx context.Context, limit, offset int32) ([]models.Copy, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Copy), args.Error(1)
}

func (m *MockStore) SoftDeleteCopy(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CountCopiesByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

// loan queries

func (m *MockStore) CreateLoan(ctx context.Context, arg repository.CreateLoanParams) (models.Loan, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.Loan), args.Error(1)
}

func (m *MockStore) GetLoanByID(ctx context.Context, id int64) (models.Loan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Loan), args.Error(1)
}

func (m *MockStore) CloseLoan(ctx context.Context, id int64, returnedAt time.Time) (models.Loan, error) {
	args := m.Called(ctx, id, returnedAt)
	return args.Get(0).(models.Loan), args.Error(1)
}

func (m *MockStore) MarkLoanLost(ctx context.Context, id int64) (models.Loan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Loan), args.Error(1)
}

func (m *MockStore) CountActiveLoansByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetOngoingLoanByCopy(ctx context.Context, copyID int64) (models.Loan, error) {
	args := m.Called(ctx, copyID)
	return args.Get(0).(models.Loan), args.Error(1)
}

func (m *MockStore) ListLoans(ctx context.Context, limit, offset int32) ([]models.Loan, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockStore) ListLoansByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Loan, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockStore) ListOverdueLoans(ctx context.Context, now time.Time) ([]models.Loan, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockStore) CountOngoingLoans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CountOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteLoan(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// reservation queries

func (m *MockStore) CreateReservation(ctx context.Context, arg repository.CreateReservationParams) (models.Reservation, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) GetReservationByID(ctx context.Context, id int64) (models.Reservation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) GetActiveReservationForBookUser(ctx context.Context, bookID, userID int64) (models.Reservation, error) {
	args := m.Called(ctx, bookID, userID)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) MaxActivePosition(ctx context.Context, bookID int64) (int32, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockStore) NextPendingReservation(ctx context.Context, bookID int64) (models.Reservation, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) MarkReservationNotified(ctx context.Context, id int64, notifiedAt, expiresAt time.Time) (models.Reservation, error) {
	args := m.Called(ctx, id, notifiedAt, expiresAt)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) MarkReservationFulfilled(ctx context.Context, id int64) (models.Reservation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) MarkReservationCancelled(ctx context.Context, id int64) (models.Reservation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) MarkReservationExpired(ctx context.Context, id int64, now time.Time) (models.Reservation, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *MockStore) ListStaleNotified(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockStore) ListReservations(ctx context.Context, limit, offset int32) ([]models.Reservation, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockStore) ListActiveReservationsByBook(ctx context.Context, bookID int64) ([]models.Reservation, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockStore) ListReservationsByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Reservation, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockStore) CountPendingReservations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteReservation(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fine queries

func (m *MockStore) CreateFine(ctx context.Context, arg repository.CreateFineParams) (models.Fine, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.Fine), args.Error(1)
}

func (m *MockStore) GetFineByID(ctx context.Context, id int64) (models.Fine, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Fine), args.Error(1)
}

func (m *MockStore) PayFine(ctx context.Context, arg repository.PayFineParams) (models.Fine, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.Fine), args.Error(1)
}

func (m *MockStore) ListFines(ctx context.Context, limit, offset int32) ([]models.Fine, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Fine), args.Error(1)
}

func (m *MockStore) ListFinesByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Fine, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Fine), args.Error(1)
}

func (m *MockStore) SumUnpaidFinesByUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) SumUnpaidFines(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) UpdateUserFinesBalance(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStore) DeleteFine(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// user queries

func (m *MockStore) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context, limit, offset int32) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStore) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) SoftDeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// settings queries

func (m *MockStore) GetSetting(ctx context.Context, key string) (models.Setting, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(models.Setting), args.Error(1)
}

func (m *MockStore) ListSettings(ctx context.Context) ([]models.Setting, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Setting), args.Error(1)
}

func (m *MockStore) UpsertSetting(ctx context.Context, key, value string) (models.Setting, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(models.Setting), args.Error(1)
}

// catalog queries

func (m *MockStore) CreateAuthor(ctx context.Context, name string, bio *string) (models.Author, error) {
	args := m.Called(ctx, name, bio)
	return args.Get(0).(models.Author), args.Error(1)
}

func (m *MockStore) GetAuthorByID(ctx context.Context, id int64) (models.Author, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Author), args.Error(1)
}

func (m *MockStore) UpdateAuthor(ctx context.Context, id int64, name string, bio *string) (models.Author, error) {
	args := m.Called(ctx, id, name, bio)
	return args.Get(0).(models.Author), args.Error(1)
}

func (m *MockStore) DeleteAuthor(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListAuthors(ctx context.Context, limit, offset int32) ([]models.Author, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Author), args.Error(1)
}

func (m *MockStore) CreatePublisher(ctx context.Context, name string, address *string) (models.Publisher, error) {
	args := m.Called(ctx, name, address)
	return args.Get(0).(models.Publisher), args.Error(1)
}

func (m *MockStore) GetPublisherByID(ctx context.Context, id int64) (models.Publisher, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Publisher), args.Error(1)
}

func (m *MockStore) UpdatePublisher(ctx context.Context, id int64, name string, address *string) (models.Publisher, error) {
	args := m.Called(ctx, id, name, address)
	return args.Get(0).(models.Publisher), args.Error(1)
}

func (m *MockStore) DeletePublisher(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListPublishers(ctx context.Context, limit, offset int32) ([]models.Publisher, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Publisher), args.Error(1)
}

func (m *MockStore) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockStore) GetCategoryByID(ctx context.Context, id int64) (models.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockStore) UpdateCategory(ctx context.Context, id int64, name string) (models.Category, error) {
	args := m.Called(ctx, id, name)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockStore) DeleteCategory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListCategories(ctx context.Context, limit, offset int32) ([]models.Category, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Category), args.Error(1)
}
