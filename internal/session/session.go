// Package session owns the lifecycle of the member bearer credential.
//
// A Manager keeps the credential consistent across three places: the
// persistent CredentialStore, the AuthClient's Authorization slot and its own
// in-memory snapshot. Consumers read derived Status and call the mutating
// operations, each of which reports a Result instead of an error.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// API routes used by the manager
const (
	PathMe             = "/api/auth/me"
	PathLogin          = "/api/auth/login"
	PathRegister       = "/api/auth/register"
	PathUpdateProfile  = "/api/members/profile"
	PathChangePassword = "/api/members/password"
)

// Fallback failure messages
const (
	MsgLoginFailed          = "Login failed"
	MsgRegistrationFailed   = "Registration failed"
	MsgUpdateProfileFailed  = "Failed to update profile"
	MsgChangePasswordFailed = "Failed to change password"
)

// AdminMembershipType is the membershipType value that grants admin rights
const AdminMembershipType = "Staff"

// CredentialStore is a durable single-slot store. Get returns "" when empty.
type CredentialStore interface {
	Get() (string, error)
	Set(token string) error
	Remove() error
}

// AuthClient sends JSON requests and carries a default Authorization value
type AuthClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	SetAuthorization(value string)
	ClearAuthorization()
}

// Result is the outcome of a mutating operation
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok() Result {
	return Result{Success: true}
}

func failed(message string) Result {
	return Result{Success: false, Message: message}
}

// Status is the derived, read-only view of a session
type Status struct {
	CurrentUser     Profile `json:"currentUser"`
	Loading         bool    `json:"loading"`
	IsAuthenticated bool    `json:"isAuthenticated"`
	IsAdmin         bool    `json:"isAdmin"`
}

// responseError is implemented by client errors that carry a server response
type responseError interface {
	error
	APIMessage() string
	HTTPStatus() int
}

// messageFor returns the server message carried by err, or fallback
func messageFor(err error, fallback string) string {
	var re responseError
	if errors.As(err, &re) && re.APIMessage() != "" {
		return re.APIMessage()
	}
	return fallback
}

func statusOf(err error) int {
	var re responseError
	if errors.As(err, &re) {
		return re.HTTPStatus()
	}
	return 0
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger for operation failures and forced logouts
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}
