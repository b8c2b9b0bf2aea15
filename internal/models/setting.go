package models

import (
	"time"
)

// Policy keys stored in the settings table
const (
	SettingDefaultLoanDays       = "default_loan_days"
	SettingFinePerDay            = "fine_per_day"
	SettingMaxLoansPerUser       = "max_loans_per_user"
	SettingGraceDays             = "grace_days"
	SettingReservationWindowDays = "reservation_window_days"
)

// Setting represents a named policy value
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateSettingRequest represents a request to change a policy value
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}
