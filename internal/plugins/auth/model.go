// Package auth owns identity and session lifecycle for EduSeek: user
// registration, password login with lockout, JWT access tokens, refresh
// token rotation, Google federation, and the bearer middleware every
// user-scoped plugin depends on.
//
// The one hard invariant: the acting user is derived exclusively from a
// verified token claim. No operation in this package or any plugin behind
// its middleware accepts a user id as a request parameter.
package auth

import (
	"time"
)

// Role values. Stored lowercase in the role column and carried verbatim
// in the access token's role claim.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a registered account. PasswordHash is nil for accounts
// provisioned through Google federation that never set a password.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	PasswordHash   *string    `json:"-"` // Never expose in JSON responses.
	Role           string     `json:"role"`
	IsActive       bool       `json:"is_active"`
	EmailConfirmed bool       `json:"email_confirmed"`
	FailedLogins   int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// StudentProfile is the student sub-entity, created atomically with its user.
type StudentProfile struct {
	UserID    string    `json:"user_id"`
	City      *string   `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminProfile is the admin sub-entity, created atomically with its user.
type AdminProfile struct {
	UserID     string    `json:"user_id"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionRecord is a persisted refresh token. Only the SHA-256 hash of the
// raw token is ever stored; a record is active when not revoked and not
// past ExpiresAt, otherwise terminal.
type SessionRecord struct {
	ID        int64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	UserAgent *string
	IP        *string
	CreatedAt time.Time
}

// SessionMeta is optional device metadata stamped on new session records.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterStudentRequest is the body of POST /auth/register/student.
type RegisterStudentRequest struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Password  string  `json:"password"`
	City      *string `json:"city,omitempty"`
}

// RegisterAdminRequest is the body of POST /auth/register/admin.
type RegisterAdminRequest struct {
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Password   string  `json:"password"`
	Department *string `json:"department,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries both tokens: the (possibly expired) access token
// to recover the subject from, and the raw refresh token to rotate.
type RefreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the body of POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// GoogleCallbackRequest is the body of POST /auth/google (mobile clients
// that complete the authorization step themselves).
type GoogleCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// --- Results ---

// AuthResult is what every successful authentication flow returns: the
// user and a fresh token pair. The raw refresh token appears here exactly
// once and is never persisted.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
