package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/config"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

type recordingNotifier struct {
	notified []int64
}

func (n *recordingNotifier) NotifyReservationReady(_ context.Context, reservation models.Reservation) error {
	n.notified = append(n.notified, reservation.ID)
	return nil
}

func newReservationService(store *MockStore, notifier ReservationNotifier) *ReservationService {
	logger := testLogger()
	policy := NewPolicyService(store, config.LendingConfig{
		DefaultLoanDays:       14,
		FinePerDay:            0.50,
		MaxLoansPerUser:       5,
		GraceDays:             0,
		ReservationWindowDays: 7,
	}, logger)
	return NewReservationService(store, policy, notifier, logger)
}

func TestCreateReservationAppendsToQueue(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	store.On("GetUserByID", mock.Anything, int64(11)).
		Return(models.User{ID: 11, IsActive: true}, nil)
	store.On("GetBookByID", mock.Anything, int64(3)).Return(models.Book{ID: 3}, nil)
	store.On("CountAvailableCopies", mock.Anything, int64(3)).Return(int64(0), nil)
	store.On("GetActiveReservationForBookUser", mock.Anything, int64(3), int64(11)).
		Return(models.Reservation{}, pgx.ErrNoRows)
	store.On("MaxActivePosition", mock.Anything, int64(3)).Return(int32(2), nil)
	store.On("CreateReservation", mock.Anything, mock.MatchedBy(func(arg repository.CreateReservationParams) bool {
		return arg.BookID == 3 && arg.UserID == 11 && arg.Position == 3
	})).Return(models.Reservation{ID: 40, BookID: 3, UserID: 11, Position: int32Ptr(3), Status: models.ReservationStatusPending}, nil)

	service := newReservationService(store, nil)
	reservation, err := service.CreateReservation(context.Background(), models.CreateReservationRequest{BookID: 3, UserID: 11})

	require.NoError(t, err)
	require.NotNil(t, reservation.Position)
	assert.Equal(t, int32(3), *reservation.Position)
	assert.Equal(t, models.ReservationStatusPending, reservation.Status)
	store.AssertExpectations(t)
}

func TestCreateReservationRejectedWhenCopiesAvailable(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	store.On("GetUserByID", mock.Anything, int64(11)).
		Return(models.User{ID: 11, IsActive: true}, nil)
	store.On("GetBookByID", mock.Anything, int64(3)).Return(models.Book{ID: 3}, nil)
	store.On("CountAvailableCopies", mock.Anything, int64(3)).Return(int64(2), nil)

	service := newReservationService(store, nil)
	_, err := service.CreateReservation(context.Background(), models.CreateReservationRequest{BookID: 3, UserID: 11})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeBookAvailable, apperr.CodeOf(err))
	store.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestCreateReservationRejectsDuplicate(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	store.On("GetUserByID", mock.Anything, int64(11)).
		Return(models.User{ID: 11, IsActive: true}, nil)
	store.On("GetBookByID", mock.Anything, int64(3)).Return(models.Book{ID: 3}, nil)
	store.On("CountAvailableCopies", mock.Anything, int64(3)).Return(int64(0), nil)
	store.On("GetActiveReservationForBookUser", mock.Anything, int64(3), int64(11)).
		Return(models.Reservation{ID: 39, Status: models.ReservationStatusPending}, nil)

	service := newReservationService(store, nil)
	_, err := service.CreateReservation(context.Background(), models.CreateReservationRequest{BookID: 3, UserID: 11})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeDuplicateReservation, apperr.CodeOf(err))
}

func TestCreateReservationInactiveUser(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	store.On("GetUserByID", mock.Anything, int64(11)).
		Return(models.User{ID: 11, IsActive: false}, nil)

	service := newReservationService(store, nil)
	_, err := service.CreateReservation(context.Background(), models.CreateReservationRequest{BookID: 3, UserID: 11})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeUserInactive, apperr.CodeOf(err))
}

func TestCancelNotifiedPromotesNext(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)
	notifier := &recordingNotifier{}

	notified := models.Reservation{ID: 40, BookID: 3, UserID: 11, Status: models.ReservationStatusNotified}
	next := models.Reservation{ID: 41, BookID: 3, UserID: 12, Status: models.ReservationStatusPending}

	store.On("GetReservationByID", mock.Anything, int64(40)).Return(notified, nil)
	store.On("MarkReservationCancelled", mock.Anything, int64(40)).
		Return(models.Reservation{ID: 40, Status: models.ReservationStatusCancelled}, nil)
	store.On("NextPendingReservation", mock.Anything, int64(3)).Return(next, nil)
	store.On("MarkReservationNotified", mock.Anything, int64(41), mock.Anything, mock.Anything).
		Return(models.Reservation{ID: 41, BookID: 3, UserID: 12, Status: models.ReservationStatusNotified}, nil)

	service := newReservationService(store, notifier)
	cancelled, err := service.Cancel(context.Background(), 40)

	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, []int64{41}, notifier.notified)
	store.AssertExpectations(t)
}

func TestCancelPendingDoesNotPromote(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	pending := models.Reservation{ID: 40, BookID: 3, UserID: 11, Status: models.ReservationStatusPending}
	store.On("GetReservationByID", mock.Anything, int64(40)).Return(pending, nil)
	store.On("MarkReservationCancelled", mock.Anything, int64(40)).
		Return(models.Reservation{ID: 40, Status: models.ReservationStatusCancelled}, nil)

	service := newReservationService(store, nil)
	_, err := service.Cancel(context.Background(), 40)

	require.NoError(t, err)
	store.AssertNotCalled(t, "NextPendingReservation", mock.Anything, mock.Anything)
}

func TestCancelClosedReservation(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	store.On("GetReservationByID", mock.Anything, int64(40)).
		Return(models.Reservation{ID: 40, Status: models.ReservationStatusExpired}, nil)

	service := newReservationService(store, nil)
	_, err := service.Cancel(context.Background(), 40)

	require.Error(t, err)
	assert.Equal(t, apperr.CodeReservationClosed, apperr.CodeOf(err))
	store.AssertNotCalled(t, "MarkReservationCancelled", mock.Anything, mock.Anything)
}

func TestExpireStalePromotesPerBook(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)
	notifier := &recordingNotifier{}

	stale := []models.Reservation{
		{ID: 50, BookID: 3, UserID: 11, Status: models.ReservationStatusNotified},
		{ID: 51, BookID: 4, UserID: 12, Status: models.ReservationStatusNotified},
	}
	store.On("ListStaleNotified", mock.Anything, mock.Anything).Return(stale, nil)
	store.On("MarkReservationExpired", mock.Anything, int64(50), mock.Anything).
		Return(models.Reservation{ID: 50, Status: models.ReservationStatusExpired}, nil)
	store.On("MarkReservationExpired", mock.Anything, int64(51), mock.Anything).
		Return(models.Reservation{ID: 51, Status: models.ReservationStatusExpired}, nil)

	// book 3 has a waiting entry, book 4's queue is empty
	store.On("NextPendingReservation", mock.Anything, int64(3)).
		Return(models.Reservation{ID: 52, BookID: 3, UserID: 13, Status: models.ReservationStatusPending}, nil)
	store.On("NextPendingReservation", mock.Anything, int64(4)).
		Return(models.Reservation{}, pgx.ErrNoRows)
	store.On("MarkReservationNotified", mock.Anything, int64(52), mock.Anything, mock.Anything).
		Return(models.Reservation{ID: 52, BookID: 3, UserID: 13, Status: models.ReservationStatusNotified}, nil)

	service := newReservationService(store, notifier)
	expired, err := service.ExpireStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.Equal(t, []int64{52}, notifier.notified)
	store.AssertExpectations(t)
}

func TestExpireStaleSkipsConcurrentlyHandled(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	stale := []models.Reservation{
		{ID: 50, BookID: 3, UserID: 11, Status: models.ReservationStatusNotified},
	}
	store.On("ListStaleNotified", mock.Anything, mock.Anything).Return(stale, nil)
	store.On("MarkReservationExpired", mock.Anything, int64(50), mock.Anything).
		Return(models.Reservation{}, pgx.ErrNoRows)

	service := newReservationService(store, nil)
	expired, err := service.ExpireStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	store.AssertNotCalled(t, "NextPendingReservation", mock.Anything, mock.Anything)
}

func TestPromoteNextSetsPickupWindow(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	next := models.Reservation{ID: 60, BookID: 3, UserID: 11, Status: models.ReservationStatusPending}
	store.On("NextPendingReservation", mock.Anything, int64(3)).Return(next, nil)
	store.On("MarkReservationNotified", mock.Anything, int64(60), mock.Anything,
		mock.MatchedBy(func(window time.Time) bool {
			// 7 day window from the fallback policy
			remaining := time.Until(window)
			return remaining > 6*24*time.Hour && remaining <= 7*24*time.Hour
		})).
		Return(models.Reservation{ID: 60, Status: models.ReservationStatusNotified}, nil)

	service := newReservationService(store, nil)
	promoted, err := service.PromoteNext(context.Background(), 3)

	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, models.ReservationStatusNotified, promoted.Status)
	store.AssertExpectations(t)
}
