package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/biblio-app/biblio/internal/models"
)

// Queue names
const (
	ReservationReadyQueue = "reservations:ready"
	ReservationDeadQueue  = "reservations:ready:dead"
)

// reservationSentKeyTTL bounds how long the dedup marker lives. It must
// outlast the longest pickup window so re-promotions of the same
// reservation are still deduplicated.
const reservationSentKeyTTL = 90 * 24 * time.Hour

// NotifyJob is a queued "your reserved copy is ready" notice
type NotifyJob struct {
	ID            string    `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	BookID        int64     `json:"book_id"`
	UserID        int64     `json:"user_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
	RetryCount    int       `json:"retry_count"`
	MaxRetries    int       `json:"max_retries"`
}

// notifyRedis is the slice of the redis API the queue needs. *redis.Client
// satisfies it.
type notifyRedis interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// NotifyService queues reservation notices on Redis. Delivery semantics are
// at-least-once: producers may enqueue a reservation twice, the dedup key
// collapses retries onto a single job.
type NotifyService struct {
	redis  notifyRedis
	logger *slog.Logger
}

func NewNotifyService(redisClient notifyRedis, logger *slog.Logger) *NotifyService {
	return &NotifyService{
		redis:  redisClient,
		logger: logger,
	}
}

// NotifyReservationReady enqueues a pickup notice for a promoted
// reservation. Idempotent per reservation: a second call for the same
// reservation id is a no-op.
func (s *NotifyService) NotifyReservationReady(ctx context.Context, reservation models.Reservation) error {
	dedupKey := fmt.Sprintf("reservations:notified:%d", reservation.ID)
	set, err := s.redis.SetNX(ctx, dedupKey, time.Now().UTC().Format(time.RFC3339), reservationSentKeyTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to set dedup key: %w", err)
	}
	if !set {
		// Already enqueued by an earlier attempt
		return nil
	}

	job := NotifyJob{
		ID:            uuid.NewString(),
		ReservationID: reservation.ID,
		BookID:        reservation.BookID,
		UserID:        reservation.UserID,
		CreatedAt:     time.Now().UTC(),
		MaxRetries:    3,
	}
	if reservation.ExpiresAt != nil {
		job.ExpiresAt = *reservation.ExpiresAt
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notify job: %w", err)
	}

	if err := s.redis.LPush(ctx, ReservationReadyQueue, payload).Err(); err != nil {
		// Roll back the dedup marker so a retry can enqueue again
		s.redis.Del(ctx, dedupKey)
		return fmt.Errorf("failed to enqueue notify job: %w", err)
	}

	s.logger.Info("reservation notice enqueued",
		"reservation_id", reservation.ID,
		"user_id", reservation.UserID,
		"job_id", job.ID,
	)
	return nil
}

// DequeueJob pops the next notice for a delivery worker, blocking up to
// timeout. Returns nil when the queue stays empty.
func (s *NotifyService) DequeueJob(ctx context.Context, timeout time.Duration) (*NotifyJob, error) {
	result, err := s.redis.BRPop(ctx, timeout, ReservationReadyQueue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue notify job: %w", err)
	}
	// BRPop returns [queue, payload]
	if len(result) < 2 {
		return nil, nil
	}

	var job NotifyJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notify job: %w", err)
	}
	return &job, nil
}

// RequeueJob puts a failed job back, or parks it on the dead queue once its
// retry budget is spent.
func (s *NotifyService) RequeueJob(ctx context.Context, job *NotifyJob) error {
	job.RetryCount++
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notify job: %w", err)
	}

	queue := ReservationReadyQueue
	if job.RetryCount > job.MaxRetries {
		queue = ReservationDeadQueue
		s.logger.Error("reservation notice moved to dead queue",
			"reservation_id", job.ReservationID, "job_id", job.ID)
	}
	return s.redis.LPush(ctx, queue, payload).Err()
}

// QueueLength reports the number of pending notices
func (s *NotifyService) QueueLength(ctx context.Context) (int64, error) {
	return s.redis.LLen(ctx, ReservationReadyQueue).Result()
}
