package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// UserRole represents a user's role in the system
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleStaff  UserRole = "staff"
	RoleAdmin  UserRole = "admin"
)

// User represents a library user (member or staff)
type User struct {
	ID               int64           `json:"id"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Email            string          `json:"email"`
	PasswordHash     string          `json:"-"`
	Role             UserRole        `json:"role"`
	MembershipNumber *string         `json:"membership_number,omitempty"`
	Phone            *string         `json:"phone,omitempty"`
	Address          *string         `json:"address,omitempty"`
	MembershipStart  *time.Time      `json:"membership_start,omitempty"`
	MembershipEnd    *time.Time      `json:"membership_end,omitempty"`
	FinesBalance     decimal.Decimal `json:"fines_balance"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreateUserRequest represents a request to create a user (staff-managed)
type CreateUserRequest struct {
	FirstName        string     `json:"first_name" binding:"required,max=255"`
	LastName         string     `json:"last_name" binding:"required,max=255"`
	Email            string     `json:"email" binding:"required,email"`
	Password         string     `json:"password" binding:"required,min=8"`
	Role             UserRole   `json:"role" binding:"omitempty,oneof=member staff admin"`
	MembershipNumber *string    `json:"membership_number"`
	Phone            *string    `json:"phone"`
	Address          *string    `json:"address"`
	MembershipStart  *time.Time `json:"membership_start"`
	MembershipEnd    *time.Time `json:"membership_end"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	FirstName        *string    `json:"first_name" binding:"omitempty,max=255"`
	LastName         *string    `json:"last_name" binding:"omitempty,max=255"`
	Email            *string    `json:"email" binding:"omitempty,email"`
	Role             *UserRole  `json:"role" binding:"omitempty,oneof=member staff admin"`
	MembershipNumber *string    `json:"membership_number"`
	Phone            *string    `json:"phone"`
	Address          *string    `json:"address"`
	MembershipStart  *time.Time `json:"membership_start"`
	MembershipEnd    *time.Time `json:"membership_end"`
	IsActive         *bool      `json:"is_active"`
}

// RegisterRequest represents a self-service member registration
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// JWTClaims carries the token payload for authenticated requests
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
