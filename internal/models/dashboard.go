package models

import (
	"github.com/shopspring/decimal"
)

// DashboardStats represents the aggregate counters shown on the dashboard
type DashboardStats struct {
	TotalBooks          int64            `json:"total_books"`
	TotalUsers          int64            `json:"total_users"`
	CopiesByStatus      map[string]int64 `json:"copies_by_status"`
	OngoingLoans        int64            `json:"ongoing_loans"`
	OverdueLoans        int64            `json:"overdue_loans"`
	PendingReservations int64            `json:"pending_reservations"`
	UnpaidFinesTotal    decimal.Decimal  `json:"unpaid_fines_total"`
}
