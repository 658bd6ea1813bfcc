package models

import "time"

// User roles. There is no role table: the shop has exactly two roles and
// every historical sale references its cashier, so users are deactivated,
// never deleted.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordPayload for self-service password change
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// CreateCashierPayload for admin-created cashier accounts
type CreateCashierPayload struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserStatusPayload toggles account activation
type UserStatusPayload struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
