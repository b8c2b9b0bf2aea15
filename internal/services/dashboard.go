package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
)

// DashboardService aggregates the counters shown on the staff dashboard
type DashboardService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewDashboardService(store Store, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

func (s *DashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	stats := &models.DashboardStats{}
	now := time.Now()

	var err error
	if stats.TotalBooks, err = s.store.CountBooks(ctx); err != nil {
		return nil, apperr.FromStore(err, "count books")
	}
	if stats.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
		return nil, apperr.FromStore(err, "count users")
	}
	if stats.CopiesByStatus, err = s.store.CountCopiesByStatus(ctx); err != nil {
		return nil, apperr.FromStore(err, "count copies")
	}
	if stats.OngoingLoans, err = s.store.CountOngoingLoans(ctx); err != nil {
		return nil, apperr.FromStore(err, "count ongoing loans")
	}
	if stats.OverdueLoans, err = s.store.CountOverdueLoans(ctx, now); err != nil {
		return nil, apperr.FromStore(err, "count overdue loans")
	}
	if stats.PendingReservations, err = s.store.CountPendingReservations(ctx); err != nil {
		return nil, apperr.FromStore(err, "count reservations")
	}
	if stats.UnpaidFinesTotal, err = s.store.SumUnpaidFines(ctx); err != nil {
		return nil, apperr.FromStore(err, "sum unpaid fines")
	}

	return stats, nil
}
