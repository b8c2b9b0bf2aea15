package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/biblio-app/biblio/internal/config"
	"github.com/biblio-app/biblio/internal/models"
)

func TestSnapshotFallsBackToConfig(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	service := NewPolicyService(store, config.LendingConfig{
		DefaultLoanDays:       21,
		FinePerDay:            1.25,
		MaxLoansPerUser:       3,
		GraceDays:             2,
		ReservationWindowDays: 5,
	}, testLogger())

	policy := service.Snapshot(context.Background())

	assert.Equal(t, 21, policy.DefaultLoanDays)
	assert.Equal(t, 3, policy.MaxLoansPerUser)
	assert.Equal(t, 2, policy.GraceDays)
	assert.Equal(t, 5, policy.ReservationWindowDays)
	assert.Equal(t, "1.25", policy.FinePerDay.String())
}

func TestSnapshotPrefersStoredSettings(t *testing.T) {
	store := new(MockStore)

	settings := map[string]string{
		models.SettingDefaultLoanDays:       "28",
		models.SettingMaxLoansPerUser:       "10",
		models.SettingGraceDays:             "3",
		models.SettingReservationWindowDays: "14",
		models.SettingFinePerDay:            "0.75",
	}
	for key, value := range settings {
		store.On("GetSetting", mock.Anything, key).
			Return(models.Setting{Key: key, Value: value}, nil)
	}

	service := NewPolicyService(store, config.LendingConfig{DefaultLoanDays: 14}, testLogger())
	policy := service.Snapshot(context.Background())

	assert.Equal(t, 28, policy.DefaultLoanDays)
	assert.Equal(t, 10, policy.MaxLoansPerUser)
	assert.Equal(t, 3, policy.GraceDays)
	assert.Equal(t, 14, policy.ReservationWindowDays)
	assert.Equal(t, "0.75", policy.FinePerDay.String())
}

func TestSnapshotIgnoresMalformedValues(t *testing.T) {
	store := new(MockStore)

	store.On("GetSetting", mock.Anything, models.SettingDefaultLoanDays).
		Return(models.Setting{Key: models.SettingDefaultLoanDays, Value: "not-a-number"}, nil)
	store.On("GetSetting", mock.Anything, models.SettingMaxLoansPerUser).
		Return(models.Setting{Key: models.SettingMaxLoansPerUser, Value: "-3"}, nil)
	store.On("GetSetting", mock.Anything, models.SettingFinePerDay).
		Return(models.Setting{Key: models.SettingFinePerDay, Value: "-0.50"}, nil)
	store.On("GetSetting", mock.Anything, mock.AnythingOfType("string")).
		Return(models.Setting{}, pgx.ErrNoRows)

	service := NewPolicyService(store, config.LendingConfig{
		DefaultLoanDays: 14,
		FinePerDay:      0.50,
		MaxLoansPerUser: 5,
	}, testLogger())
	policy := service.Snapshot(context.Background())

	assert.Equal(t, 14, policy.DefaultLoanDays)
	assert.Equal(t, 5, policy.MaxLoansPerUser)
	assert.Equal(t, "0.5", policy.FinePerDay.String())
}

func TestNewPolicyServiceZeroConfigUsesDefaults(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	service := NewPolicyService(store, config.LendingConfig{}, testLogger())
	policy := service.Snapshot(context.Background())

	assert.Equal(t, DefaultPolicy(), policy)
}
