package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/biblio-app/biblio/internal/config"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// Policy is an immutable snapshot of the lending policy values. Lifecycle
// operations take the snapshot explicitly so a request sees one consistent
// policy and tests can vary it without shared state.
type Policy struct {
	DefaultLoanDays       int
	FinePerDay            decimal.Decimal
	MaxLoansPerUser       int
	GraceDays             int
	ReservationWindowDays int
}

// DefaultPolicy returns the built-in fallback values
func DefaultPolicy() Policy {
	return Policy{
		DefaultLoanDays:       14,
		FinePerDay:            decimal.NewFromFloat(0.50),
		MaxLoansPerUser:       5,
		GraceDays:             0,
		ReservationWindowDays: 7,
	}
}

// PolicyService loads policy snapshots from the settings table, falling back
// to configured defaults for missing or malformed rows.
type PolicyService struct {
	store    SettingsQuerier
	fallback Policy
	logger   *slog.Logger
}

func NewPolicyService(store SettingsQuerier, cfg config.LendingConfig, logger *slog.Logger) *PolicyService {
	fallback := Policy{
		DefaultLoanDays:       cfg.DefaultLoanDays,
		FinePerDay:            decimal.NewFromFloat(cfg.FinePerDay),
		MaxLoansPerUser:       cfg.MaxLoansPerUser,
		GraceDays:             cfg.GraceDays,
		ReservationWindowDays: cfg.ReservationWindowDays,
	}
	if fallback.DefaultLoanDays <= 0 {
		fallback = DefaultPolicy()
	}
	return &PolicyService{store: store, fallback: fallback, logger: logger}
}

// Snapshot reads the current policy from the settings table
func (s *PolicyService) Snapshot(ctx context.Context) Policy {
	p := s.fallback
	p.DefaultLoanDays = s.intSetting(ctx, models.SettingDefaultLoanDays, p.DefaultLoanDays)
	p.MaxLoansPerUser = s.intSetting(ctx, models.SettingMaxLoansPerUser, p.MaxLoansPerUser)
	p.GraceDays = s.intSetting(ctx, models.SettingGraceDays, p.GraceDays)
	p.ReservationWindowDays = s.intSetting(ctx, models.SettingReservationWindowDays, p.ReservationWindowDays)
	p.FinePerDay = s.decimalSetting(ctx, models.SettingFinePerDay, p.FinePerDay)
	return p
}

func (s *PolicyService) intSetting(ctx context.Context, key string, fallback int) int {
	setting, err := s.store.GetSetting(ctx, key)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.logger.Warn("failed to read setting, using fallback", "key", key, "error", err)
		}
		return fallback
	}
	value, err := strconv.Atoi(setting.Value)
	if err != nil || value < 0 {
		s.logger.Warn("malformed setting value, using fallback", "key", key, "value", setting.Value)
		return fallback
	}
	return value
}

func (s *PolicyService) decimalSetting(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	setting, err := s.store.GetSetting(ctx, key)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.logger.Warn("failed to read setting, using fallback", "key", key, "error", err)
		}
		return fallback
	}
	value, err := decimal.NewFromString(setting.Value)
	if err != nil || value.IsNegative() {
		s.logger.Warn("malformed setting value, using fallback", "key", key, "value", setting.Value)
		return fallback
	}
	return value
}
