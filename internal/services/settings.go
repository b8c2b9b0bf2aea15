package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// SettingsService exposes the policy settings table to staff. Values are
// validated by key before they are written so the policy snapshot never
// reads a malformed value that staff saved.
type SettingsService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewSettingsService(store Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

func (s *SettingsService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	setting, err := s.store.GetSetting(ctx, key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("setting")
		}
		return nil, apperr.FromStore(err, "get setting")
	}
	return &setting, nil
}

func (s *SettingsService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "list settings")
	}
	return settings, nil
}

// UpdateSetting validates and writes a policy value. The change takes effect
// on the next policy snapshot; in-flight operations keep the values they
// started with.
func (s *SettingsService) UpdateSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := validateSettingValue(key, value); err != nil {
		return nil, err
	}

	setting, err := s.store.UpsertSetting(ctx, key, value)
	if err != nil {
		return nil, apperr.FromStore(err, "update setting")
	}

	s.logger.Info("policy setting updated", "key", key, "value", value)
	return &setting, nil
}

func validateSettingValue(key, value string) error {
	switch key {
	case models.SettingDefaultLoanDays, models.SettingMaxLoansPerUser, models.SettingReservationWindowDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return apperr.Validation("value must be a positive integer", map[string]string{key: "invalid value"})
		}
	case models.SettingGraceDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return apperr.Validation("value must be a non-negative integer", map[string]string{key: "invalid value"})
		}
	case models.SettingFinePerDay:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return apperr.Validation("value must be a non-negative amount", map[string]string{key: "invalid value"})
		}
	default:
		return apperr.Validation("unknown setting key", map[string]string{"key": "unknown setting"})
	}
	return nil
}
