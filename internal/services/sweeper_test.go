package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/biblio-app/biblio/internal/models"
)

func newTestSweeper(store *MockStore) *Sweeper {
	return NewSweeper(newReservationService(store, nil), time.Minute, testLogger())
}

func TestSweeperSkipsTickWhileSweepRunning(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	store.On("ListStaleNotified", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]models.Reservation{}, nil)

	sweeper := newTestSweeper(store)

	first := make(chan struct{})
	go func() {
		sweeper.sweep(context.Background())
		close(first)
	}()
	<-entered

	// a tick arriving mid-sweep must bail out instead of queueing up
	second := make(chan struct{})
	go func() {
		sweeper.sweep(context.Background())
		close(second)
	}()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("overlapping sweep did not return while the first was still running")
	}
	select {
	case <-first:
		t.Fatal("first sweep finished before it was released")
	default:
	}

	close(release)
	<-first
	store.AssertNumberOfCalls(t, "ListStaleNotified", 1)
}

func TestSweeperRunsAgainAfterSweepFinishes(t *testing.T) {
	store := new(MockStore)
	expectNoSettings(store)
	store.On("ListStaleNotified", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]models.Reservation{}, nil)

	sweeper := newTestSweeper(store)

	sweeper.sweep(context.Background())
	sweeper.sweep(context.Background())

	store.AssertNumberOfCalls(t, "ListStaleNotified", 2)
}
