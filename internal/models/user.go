package models

import "time"

// UserRole distinguishes parents from the administrator
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents a parent or administrator account
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	LoginMethod  string    `json:"login_method" db:"login_method"`
	Role         UserRole  `json:"role" db:"role"`
	TelegramID   *int64    `json:"telegram_id,omitempty" db:"telegram_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LastSignedIn time.Time `json:"last_signed_in" db:"last_signed_in"`
}

// IsAdmin reports whether the user may use the administrator operations
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// DisplayName returns the best display name for the user
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Credential stores the username/password pair used by the simple login flow
type Credential struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
