package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a fine was settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodOther  PaymentMethod = "other"
)

// Fine represents a monetary penalty issued to a user. The loan reference is
// a back-reference only: the fine outlives the loan record.
type Fine struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	LoanID           *int64          `json:"loan_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           *string         `json:"reason,omitempty"`
	IssuedBy         *int64          `json:"issued_by,omitempty"`
	IssuedAt         time.Time       `json:"issued_at"`
	Paid             bool            `json:"paid"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod    *PaymentMethod  `json:"payment_method,omitempty"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	HandledBy        *int64          `json:"handled_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IssueFineRequest represents a request to issue a manual fine
type IssueFineRequest struct {
	UserID   int64           `json:"user_id" binding:"required,min=1"`
	LoanID   *int64          `json:"loan_id"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Reason   *string         `json:"reason"`
	IssuerID *int64          `json:"issuer_id"`
}

// PayFineRequest represents a request to settle a fine
type PayFineRequest struct {
	PaymentMethod    *PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card online other"`
	PaymentReference *string        `json:"payment_reference" binding:"omitempty,max=255"`
	HandlerID        *int64         `json:"handler_id"`
}

// FineResponse represents a fine with its related entities
type FineResponse struct {
	Fine
	User *User `json:"user,omitempty"`
	Loan *Loan `json:"loan,omitempty"`
}
