package ports

import (
	"context"

	"github.com/bugtrail/accounts-api/internal/core/domain"
)

// SignupInput carries the fields accepted at registration time.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Role     string
	Image    string
}

// AccountService covers credential lifecycle: registration, verification and
// password rotation.
type AccountService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
}
