package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bugtrail/accounts-api/internal/core/domain"
	"github.com/bugtrail/accounts-api/internal/core/ports"
)

const validID = "64a2f1c9e4b0d2a1f3c4b5d6"

type stubAccountService struct {
	signupFn         func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	loginFn          func(ctx context.Context, email, password string) (*domain.User, error)
	changePasswordFn func(ctx context.Context, userID, newPassword string) error
}

func (s *stubAccountService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccountService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	return s.changePasswordFn(ctx, userID, newPassword)
}

type stubRepo struct {
	findAllFn       func(ctx context.Context) ([]domain.User, error)
	findByIDFn      func(ctx context.Context, id string) (*domain.User, error)
	findByEmailFn   func(ctx context.Context, email string) (*domain.User, error)
	updateProfileFn func(ctx context.Context, id string, patch ports.ProfilePatch) (*domain.User, error)
	deleteFn        func(ctx context.Context, id string) (*domain.User, error)
}

func (r *stubRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil }

func (r *stubRepo) FindAll(ctx context.Context) ([]domain.User, error) { return r.findAllFn(ctx) }

func (r *stubRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByIDFn(ctx, id)
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmailFn(ctx, email)
}

func (r *stubRepo) UpdateProfile(ctx context.Context, id string, patch ports.ProfilePatch) (*domain.User, error) {
	return r.updateProfileFn(ctx, id, patch)
}

func (r *stubRepo) UpdatePassword(_ context.Context, _ string, _ string) error { return nil }

func (r *stubRepo) Delete(ctx context.Context, id string) (*domain.User, error) {
	return r.deleteFn(ctx, id)
}

type stubIssuer struct {
	token string
}

func (s *stubIssuer) Issue(_ string) (string, error)  { return s.token, nil }
func (s *stubIssuer) Verify(_ string) (string, error) { return validID, nil }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newHandler(accounts ports.AccountService, repo ports.UserRepository, tokens ports.TokenIssuer) *UserHandler {
	return NewUserHandler(accounts, repo, tokens, nil, zerolog.Nop())
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestUserHandler_Signup_Success(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		signupFn: func(_ context.Context, in ports.SignupInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "alice@x.com" || in.Role != "dev" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: validID, Username: in.Username, Email: in.Email, Role: in.Role}, nil
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{token: "token123"})

	req := jsonRequest(http.MethodPost, "/users/signup",
		`{"username":"alice","email":"alice@x.com","password":"Str0ng!Pass","role":"dev"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "alice@x.com" {
		t.Fatalf("unexpected email: %s", resp["email"])
	}
	if resp["token"] == "" {
		t.Fatalf("expected non-empty token")
	}
}

func TestUserHandler_Signup_DuplicateEmail(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		signupFn: func(_ context.Context, _ ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{})

	req := jsonRequest(http.MethodPost, "/users/signup", `{"username":"bob","email":"alice@x.com","password":"Str0ng!Pass","role":"dev"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = h.Signup(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "email already in use" {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestUserHandler_Login_WrongPassword(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		loginFn: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrIncorrectPassword
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{})

	req := jsonRequest(http.MethodPost, "/users/login", `{"email":"alice@x.com","password":"wrong"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = h.Login(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "Incorrect Password" {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestUserHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		loginFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "alice@x.com" || password != "Str0ng!Pass" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.User{ID: validID, Email: email}, nil
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{token: "token123"})

	req := jsonRequest(http.MethodPost, "/users/login", `{"email":"alice@x.com","password":"Str0ng!Pass"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["token"] != "token123" || resp["email"] != "alice@x.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_Get_MalformedID(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			t.Fatalf("store must not be queried for a malformed id")
			return nil, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/users/not-an-id", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-an-id")

	_ = h.Get(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "No such user" {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestUserHandler_Get_Found(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		findByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != validID {
				t.Fatalf("unexpected id: %s", id)
			}
			return &domain.User{ID: validID, Username: "alice", Tickets: []domain.TicketRef{}}, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/users/"+validID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password material leaked in response: %s", rec.Body.String())
	}
}

func TestUserHandler_GetByEmail_InvalidFormat(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		findByEmailFn: func(_ context.Context, _ string) (*domain.User, error) {
			t.Fatalf("store must not be queried for an invalid email")
			return nil, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/users/email/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("email")
	c.SetParamValues("nope")

	_ = h.GetByEmail(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_List(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		findAllFn: func(_ context.Context) ([]domain.User, error) {
			return []domain.User{
				{ID: validID, Username: "alice", Tickets: []domain.TicketRef{}},
				{ID: "64a2f1c9e4b0d2a1f3c4b5d7", Username: "bob", Tickets: []domain.TicketRef{}},
			}, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestUserHandler_Update_AllowListOnly(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		updateProfileFn: func(_ context.Context, id string, patch ports.ProfilePatch) (*domain.User, error) {
			if patch.Username == nil || *patch.Username != "alice2" {
				t.Fatalf("expected username patch, got %+v", patch)
			}
			if patch.Email != nil || patch.Image != nil {
				t.Fatalf("unexpected fields patched: %+v", patch)
			}
			return &domain.User{ID: id, Username: "alice2"}, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	// role and password in the body must be silently dropped, not merged.
	req := jsonRequest(http.MethodPatch, "/users/"+validID,
		`{"username":"alice2","role":"admin","password":"sneaky","passwordHash":"x"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		updateProfileFn: func(_ context.Context, _ string, _ ports.ProfilePatch) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := jsonRequest(http.MethodPatch, "/users/"+validID, `{"username":"ghost"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	_ = h.Update(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "No such user" {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestUserHandler_ChangePassword_Success(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		changePasswordFn: func(_ context.Context, userID, newPassword string) error {
			if userID != validID || newPassword != "N3w!Passw0rd" {
				t.Fatalf("unexpected args: %s %s", userID, newPassword)
			}
			return nil
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{})

	req := jsonRequest(http.MethodPatch, "/users/"+validID+"/password", `{"password":"N3w!Passw0rd"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Password changed" {
		t.Fatalf("unexpected message: %q", resp["message"])
	}
}

func TestUserHandler_ChangePassword_UnknownUser(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		changePasswordFn: func(_ context.Context, _, _ string) error {
			return domain.ErrUserNotFound
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{})

	req := jsonRequest(http.MethodPatch, "/users/"+validID+"/password", `{"password":"N3w!Passw0rd"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	_ = h.ChangePassword(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_ChangePassword_Empty(t *testing.T) {
	e := newTestEcho()
	accounts := &stubAccountService{
		changePasswordFn: func(_ context.Context, _, newPassword string) error {
			if newPassword != "" {
				t.Fatalf("unexpected password: %q", newPassword)
			}
			return domain.ErrMissingPassword
		},
	}
	h := newHandler(accounts, &stubRepo{}, &stubIssuer{})

	req := jsonRequest(http.MethodPatch, "/users/"+validID+"/password", `{"password":""}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	_ = h.ChangePassword(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "Password must be filled" {
		t.Fatalf("unexpected error body: %q", resp["error"])
	}
}

func TestUserHandler_Delete_MalformedID(t *testing.T) {
	e := newTestEcho()
	h := newHandler(&stubAccountService{}, &stubRepo{}, &stubIssuer{})

	req := httptest.NewRequest(http.MethodDelete, "/users/garbage", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("garbage")

	_ = h.Delete(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_Nonexistent(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		deleteFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodDelete, "/users/"+validID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	_ = h.Delete(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "No such user" {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestUserHandler_Delete_ReturnsUser(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		deleteFn: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "alice", Tickets: []domain.TicketRef{}}, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodDelete, "/users/"+validID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(validID)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["username"] != "alice" {
		t.Fatalf("expected deleted user in body, got %+v", resp)
	}
}

func TestUserHandler_Me(t *testing.T) {
	e := newTestEcho()
	repo := &stubRepo{
		findByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "alice", Tickets: []domain.TicketRef{}}, nil
		},
	}
	h := newHandler(&stubAccountService{}, repo, &stubIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", validID)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Me_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	h := newHandler(&stubAccountService{}, &stubRepo{}, &stubIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Me(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
