package entity

import "time"

// Valid roles for User.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is an operator of the back office (belongs to a Tenant).
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string // bcrypt hash, never plain after persisting
	Name         string
	Role         string // admin, cashier
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
