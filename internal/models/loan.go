package models

import (
	"time"
)

// LoanStatus represents the state of a loan
type LoanStatus string

const (
	LoanStatusOngoing  LoanStatus = "ongoing"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusLost     LoanStatus = "lost"
)

// Loan represents a lending of a copy to a user
type Loan struct {
	ID         int64      `json:"id"`
	CopyID     int64      `json:"copy_id"`
	UserID     *int64     `json:"user_id,omitempty"`
	IssuedBy   *int64     `json:"issued_by,omitempty"`
	LoanedAt   time.Time  `json:"loaned_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     LoanStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsOverdue reports whether an ongoing loan is past its due date. Overdue is
// derived at read time, never stored as a transition.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusOngoing && now.After(l.DueAt)
}

// IssueLoanRequest represents a request to issue a loan over the counter
type IssueLoanRequest struct {
	CopyID   int64  `json:"copy_id" binding:"required,min=1"`
	UserID   int64  `json:"user_id" binding:"required,min=1"`
	IssuerID *int64 `json:"issuer_id"`
	LoanDays *int   `json:"loan_days" binding:"omitempty,min=1,max=365"`
}

// LoanResponse represents a loan with its directly related entities
type LoanResponse struct {
	Loan
	Copy *Copy `json:"copy,omitempty"`
	Book *Book `json:"book,omitempty"`
	User *User `json:"user,omitempty"`
	Fine *Fine `json:"fine,omitempty"`
}
