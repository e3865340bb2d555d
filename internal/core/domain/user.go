package domain

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the account service and user repository. The
// login failure messages are part of the public contract: unknown email and
// wrong password stay distinguishable on the wire.
var (
	ErrMissingFields     = errors.New("All fields must be filled")
	ErrMissingPassword   = errors.New("Password must be filled")
	ErrInvalidEmail      = errors.New("Email is not valid")
	ErrWeakPassword      = errors.New("Password not strong enough")
	ErrEmailTaken        = errors.New("email already in use")
	ErrUsernameTaken     = errors.New("username already in use")
	ErrIncorrectEmail    = errors.New("Incorrect email")
	ErrIncorrectPassword = errors.New("Incorrect Password")
	ErrUserNotFound      = errors.New("No such user")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidToken      = errors.New("invalid token")
)

// User models an account holder. PasswordHash is a bcrypt output and is never
// serialized in any read response.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         string      `json:"role"`
	Image        string      `json:"image,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Tickets      []TicketRef `json:"tickets"`
}
