package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio/internal/models"
)

// fakeRedisQueue backs the notify service with plain maps so queue semantics
// can be asserted without a server.
type fakeRedisQueue struct {
	keys     map[string]string
	queues   map[string][]string
	failPush bool
}

func newFakeRedisQueue() *fakeRedisQueue {
	return &fakeRedisQueue{
		keys:   make(map[string]string),
		queues: make(map[string][]string),
	}
}

func (f *fakeRedisQueue) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if _, exists := f.keys[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedisQueue) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedisQueue) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.failPush {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	for _, value := range values {
		switch v := value.(type) {
		case []byte:
			f.queues[key] = append(f.queues[key], string(v))
		default:
			f.queues[key] = append(f.queues[key], fmt.Sprint(v))
		}
	}
	return redis.NewIntResult(int64(len(f.queues[key])), nil)
}

func (f *fakeRedisQueue) BRPop(_ context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	for _, key := range keys {
		if entries := f.queues[key]; len(entries) > 0 {
			payload := entries[0]
			f.queues[key] = entries[1:]
			return redis.NewStringSliceResult([]string{key, payload}, nil)
		}
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (f *fakeRedisQueue) LLen(_ context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(f.queues[key])), nil)
}

func TestNotifyReservationReadyEnqueuesJob(t *testing.T) {
	queue := newFakeRedisQueue()
	service := NewNotifyService(queue, testLogger())

	expires := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Second)
	err := service.NotifyReservationReady(context.Background(), models.Reservation{
		ID: 40, BookID: 3, UserID: 11, ExpiresAt: &expires,
	})

	require.NoError(t, err)
	require.Len(t, queue.queues[ReservationReadyQueue], 1)

	var job NotifyJob
	require.NoError(t, json.Unmarshal([]byte(queue.queues[ReservationReadyQueue][0]), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, int64(40), job.ReservationID)
	assert.Equal(t, int64(3), job.BookID)
	assert.Equal(t, int64(11), job.UserID)
	assert.True(t, expires.Equal(job.ExpiresAt))
	assert.Equal(t, 3, job.MaxRetries)
}

func TestNotifyReservationReadyDeduplicatesRepeats(t *testing.T) {
	queue := newFakeRedisQueue()
	service := NewNotifyService(queue, testLogger())
	reservation := models.Reservation{ID: 40, BookID: 3, UserID: 11}

	require.NoError(t, service.NotifyReservationReady(context.Background(), reservation))
	require.NoError(t, service.NotifyReservationReady(context.Background(), reservation))

	assert.Len(t, queue.queues[ReservationReadyQueue], 1)

	// a different reservation is not collapsed
	other := models.Reservation{ID: 41, BookID: 3, UserID: 12}
	require.NoError(t, service.NotifyReservationReady(context.Background(), other))
	assert.Len(t, queue.queues[ReservationReadyQueue], 2)
}

func TestNotifyReservationReadyReenqueuesAfterPushFailure(t *testing.T) {
	queue := newFakeRedisQueue()
	queue.failPush = true
	service := NewNotifyService(queue, testLogger())
	reservation := models.Reservation{ID: 40, BookID: 3, UserID: 11}

	err := service.NotifyReservationReady(context.Background(), reservation)
	require.Error(t, err)
	assert.Empty(t, queue.queues[ReservationReadyQueue])

	// the failed attempt rolled its dedup marker back, so a retry enqueues
	queue.failPush = false
	require.NoError(t, service.NotifyReservationReady(context.Background(), reservation))
	assert.Len(t, queue.queues[ReservationReadyQueue], 1)
}

func TestDequeueJobReturnsOldestNotice(t *testing.T) {
	queue := newFakeRedisQueue()
	service := NewNotifyService(queue, testLogger())

	require.NoError(t, service.NotifyReservationReady(context.Background(), models.Reservation{ID: 40, BookID: 3, UserID: 11}))
	require.NoError(t, service.NotifyReservationReady(context.Background(), models.Reservation{ID: 41, BookID: 3, UserID: 12}))

	job, err := service.DequeueJob(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, int64(40), job.ReservationID)

	job, err = service.DequeueJob(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, int64(41), job.ReservationID)

	// a drained queue yields no job, not an error
	job, err = service.DequeueJob(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestRequeueJobParksExhaustedJobOnDeadQueue(t *testing.T) {
	queue := newFakeRedisQueue()
	service := NewNotifyService(queue, testLogger())

	job := &NotifyJob{ID: "j1", ReservationID: 40, RetryCount: 2, MaxRetries: 3}
	require.NoError(t, service.RequeueJob(context.Background(), job))
	assert.Len(t, queue.queues[ReservationReadyQueue], 1)

	// retry budget is now spent, the next failure parks the job
	require.NoError(t, service.RequeueJob(context.Background(), job))
	assert.Len(t, queue.queues[ReservationDeadQueue], 1)
	assert.Len(t, queue.queues[ReservationReadyQueue], 1)
}
