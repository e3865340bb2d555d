package ports

import (
	"context"

	"github.com/bugtrail/accounts-api/internal/core/domain"
)

// ProfilePatch carries the allow-listed mutable profile fields. Nil means
// "leave unchanged". PasswordHash and Role are deliberately absent: generic
// PATCH must not be able to reach them.
type ProfilePatch struct {
	Username *string
	Email    *string
	Image    *string
}

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) (*domain.User, error)
}
