package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio/internal/models"
)

func TestFindAvailableCopy(t *testing.T) {
	store := new(MockStore)
	store.On("FindFirstAvailableCopy", mock.Anything, int64(3)).
		Return(models.Copy{ID: 7, BookID: 3, Status: models.CopyStatusAvailable}, nil)

	service := NewAvailabilityService(store)
	copy, err := service.FindAvailableCopy(context.Background(), 3)

	require.NoError(t, err)
	require.NotNil(t, copy)
	assert.Equal(t, int64(7), copy.ID)
}

func TestFindAvailableCopyNone(t *testing.T) {
	store := new(MockStore)
	store.On("FindFirstAvailableCopy", mock.Anything, int64(3)).
		Return(models.Copy{}, pgx.ErrNoRows)

	service := NewAvailabilityService(store)
	copy, err := service.FindAvailableCopy(context.Background(), 3)

	require.NoError(t, err)
	assert.Nil(t, copy)
}

func TestHasAvailableCopy(t *testing.T) {
	store := new(MockStore)
	store.On("CountAvailableCopies", mock.Anything, int64(3)).Return(int64(2), nil)
	store.On("CountAvailableCopies", mock.Anything, int64(4)).Return(int64(0), nil)

	service := NewAvailabilityService(store)

	has, err := service.HasAvailableCopy(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.HasAvailableCopy(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, has)
}
