package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bugtrail/accounts-api/internal/core/domain"
	"github.com/bugtrail/accounts-api/internal/core/ports"
	"github.com/bugtrail/accounts-api/internal/metrics"
)

// AccountService implements signup, login and password rotation on top of a
// UserRepository. Hashing cost is tunable so tests can run at bcrypt.MinCost.
type AccountService struct {
	repo     ports.UserRepository
	policy   PasswordPolicy
	cost     int
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAccountService(repo ports.UserRepository, policy PasswordPolicy, bcryptCost int, log zerolog.Logger) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		repo:     repo,
		policy:   policy,
		cost:     bcryptCost,
		validate: validator.New(),
		log:      log,
	}
}

// Signup validates the input, enforces email uniqueness and persists a new
// user with a freshly salted password hash. The unique indexes on email and
// username remain the atomic backstop for concurrent signups.
func (s *AccountService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, domain.ErrMissingFields
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if err := s.policy.Validate(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: lookup email: %w", err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Image:        in.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.SignupsTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user signed up")
	return created, nil
}

// Login verifies the email/password pair. Unknown email and failed password
// verification return distinct errors on purpose; the original surface exposed
// both messages and downstream clients depend on them.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("incorrect_email").Inc()
			return nil, domain.ErrIncorrectEmail
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("incorrect_password").Inc()
		return nil, domain.ErrIncorrectPassword
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// ChangePassword replaces the password hash of the resolved user. The update
// is scoped to the id that was looked up, never to an unqualified filter.
func (s *AccountService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if newPassword == "" {
		return domain.ErrMissingPassword
	}
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	metrics.PasswordChangesTotal.Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// hashPassword derives a salted bcrypt hash; the salt is generated per call,
// so equal passwords never produce equal hashes.
func (s *AccountService) hashPassword(password string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	return string(hash), nil
}
