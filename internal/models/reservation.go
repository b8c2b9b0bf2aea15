package models

import (
	"time"
)

// ReservationStatus represents the state of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusNotified  ReservationStatus = "notified"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// Active reports whether the reservation still holds a place in the queue
func (s ReservationStatus) Active() bool {
	return s == ReservationStatusPending || s == ReservationStatusNotified
}

// Reservation represents a user's place in the waiting queue for a book
type Reservation struct {
	ID         int64             `json:"id"`
	BookID     int64             `json:"book_id"`
	UserID     int64             `json:"user_id"`
	ReservedAt time.Time         `json:"reserved_at"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
	Position   *int32            `json:"position,omitempty"`
	Status     ReservationStatus `json:"status"`
	NotifiedAt *time.Time        `json:"notified_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CreateReservationRequest represents a request to reserve a book
type CreateReservationRequest struct {
	BookID        int64 `json:"book_id" binding:"required,min=1"`
	UserID        int64 `json:"user_id" binding:"omitempty,min=1"`
	ExpiresInDays *int  `json:"expires_in_days" binding:"omitempty,min=1,max=90"`
}

// ReservationResponse represents a reservation with its related entities
type ReservationResponse struct {
	Reservation
	Book *Book `json:"book,omitempty"`
	User *User `json:"user,omitempty"`
}
