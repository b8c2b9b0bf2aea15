package models

import (
	"time"
)

// CopyStatus represents the state of a physical book copy
type CopyStatus string

const (
	CopyStatusAvailable   CopyStatus = "available"
	CopyStatusLoaned      CopyStatus = "loaned"
	CopyStatusReserved    CopyStatus = "reserved"
	CopyStatusLost        CopyStatus = "lost"
	CopyStatusDamaged     CopyStatus = "damaged"
	CopyStatusMaintenance CopyStatus = "maintenance"
)

// ValidCopyStatus reports whether s is a known copy status
func ValidCopyStatus(s CopyStatus) bool {
	switch s {
	case CopyStatusAvailable, CopyStatusLoaned, CopyStatusReserved,
		CopyStatusLost, CopyStatusDamaged, CopyStatusMaintenance:
		return true
	}
	return false
}

// Copy represents a physical copy of a book
type Copy struct {
	ID              int64      `json:"id"`
	BookID          int64      `json:"book_id"`
	Barcode         string     `json:"barcode"`
	AcquisitionDate *time.Time `json:"acquisition_date,omitempty"`
	Status          CopyStatus `json:"status"`
	Location        *string    `json:"location,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateCopyRequest represents a request to register a new copy
type CreateCopyRequest struct {
	BookID          int64      `json:"book_id" binding:"required,min=1"`
	Barcode         string     `json:"barcode" binding:"required,max=255"`
	AcquisitionDate *time.Time `json:"acquisition_date"`
	Status          CopyStatus `json:"status" binding:"omitempty,oneof=available loaned reserved lost damaged maintenance"`
	Location        *string    `json:"location" binding:"omitempty,max=255"`
}

// UpdateCopyRequest represents a request to update a copy
type UpdateCopyRequest struct {
	Barcode         *string     `json:"barcode" binding:"omitempty,max=255"`
	AcquisitionDate *time.Time  `json:"acquisition_date"`
	Status          *CopyStatus `json:"status" binding:"omitempty,oneof=available loaned reserved lost damaged maintenance"`
	Location        *string     `json:"location" binding:"omitempty,max=255"`
}

// CopyResponse represents a copy with its book record
type CopyResponse struct {
	Copy
	Book *Book `json:"book,omitempty"`
}
