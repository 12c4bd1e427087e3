package models

import "time"

// User is a cabin owner account. Guests book without an account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CompanySlug  string    `json:"company_slug"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is an owner's bearer-token session held in the state repository.
type Session struct {
	Token       string    `json:"token"`
	UserID      int64     `json:"user_id"`
	CompanySlug string    `json:"company_slug"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
