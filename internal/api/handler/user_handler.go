package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bugtrail/accounts-api/internal/core/domain"
	"github.com/bugtrail/accounts-api/internal/core/ports"
	"github.com/bugtrail/accounts-api/internal/metrics"
)

// UserHandler translates HTTP requests into account service and user
// repository calls.
type UserHandler struct {
	accounts ports.AccountService
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	cache    ports.UserCache
	log      zerolog.Logger
}

func NewUserHandler(accounts ports.AccountService, users ports.UserRepository, tokens ports.TokenIssuer, cache ports.UserCache, log zerolog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, users: users, tokens: tokens, cache: cache, log: log}
}

// List handles GET /users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      500  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if h.cache != nil {
		if payload, ok, err := h.cache.Get(ctx); err != nil {
			h.log.Warn().Err(err).Msg("user list cache unavailable, falling back to store")
		} else if ok {
			metrics.UserListCacheTotal.WithLabelValues("hit").Inc()
			return c.JSONBlob(http.StatusOK, payload)
		} else {
			metrics.UserListCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	users, err := h.users.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	payload, err := json.Marshal(users)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, payload); err != nil {
			h.log.Warn().Err(err).Msg("failed to store user list in cache")
		}
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// Get handles GET /users/:id. A malformed id is rejected before any store
// lookup.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id (hex object id)"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
	}

	user, err := h.users.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetByEmail handles GET /users/email/:email.
//
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "Email address"
// @Success      200    {object}  domain.User
// @Failure      404    {object}  errorResponse
// @Router       /users/email/{email} [get]
func (h *UserHandler) GetByEmail(c echo.Context) error {
	email := c.Param("email")
	if err := c.Validate(&emailParam{Email: email}); err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
	}

	user, err := h.users.FindByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

type emailParam struct {
	Email string `validate:"required,email"`
}

// Me handles GET /users/me for the bearer identity injected by the auth
// middleware.
//
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidUserID) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Signup handles POST /users/signup.
//
// @Summary      Create a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	user, err := h.accounts.Signup(c.Request().Context(), ports.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Image:    req.Image,
	})
	if err != nil {
		if isAuthFailure(err) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	h.invalidateListing(c)

	return c.JSON(http.StatusOK, authResponse{Email: user.Email, Token: token})
}

// Login handles POST /users/login.
//
// @Summary      Verify credentials and issue a token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	user, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if isAuthFailure(err) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Email: user.Email, Token: token})
}

// Update handles PATCH /users/:id with the allow-listed profile fields.
//
// @Summary      Update a user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id (hex object id)"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), id, ports.ProfilePatch{
		Username: req.Username,
		Email:    req.Email,
		Image:    req.Image,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "No such user"})
		case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUsernameTaken):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}
	h.invalidateListing(c)

	return c.JSON(http.StatusOK, user)
}

// ChangePassword handles PATCH /users/:id/password.
//
// @Summary      Change a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "User id (hex object id)"
// @Param        body  body      changePasswordRequest  true  "New password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/password [patch]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), id, req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidUserID):
			return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
		case errors.Is(err, domain.ErrMissingPassword), errors.Is(err, domain.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed"})
}

// Delete handles DELETE /users/:id and returns the deleted user.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id (hex object id)"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "No such user"})
	}

	user, err := h.users.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "No such user"})
		}
		return err
	}
	h.invalidateListing(c)

	return c.JSON(http.StatusOK, user)
}

// isAuthFailure reports whether err is one of the expected signup/login
// rejections that map to a 400 with the error message as body.
func isAuthFailure(err error) bool {
	return errors.Is(err, domain.ErrMissingFields) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrWeakPassword) ||
		errors.Is(err, domain.ErrEmailTaken) ||
		errors.Is(err, domain.ErrUsernameTaken) ||
		errors.Is(err, domain.ErrIncorrectEmail) ||
		errors.Is(err, domain.ErrIncorrectPassword)
}

// invalidateListing drops the cached user listing after a write. Failures are
// logged, not surfaced: the cache expires on its own shortly anyway.
func (h *UserHandler) invalidateListing(c echo.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(c.Request().Context()); err != nil {
		h.log.Warn().Err(err).Msg("failed to invalidate user list cache")
	}
}
