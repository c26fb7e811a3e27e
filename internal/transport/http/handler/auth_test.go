package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nbekenov/authsvc/internal/domain"
	"github.com/nbekenov/authsvc/internal/transport/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register       func(ctx context.Context, email, password string) (*domain.User, error)
	validLogin     func(ctx context.Context, email, password string) (bool, error)
	createSession  func(ctx context.Context, email string) (string, error)
	destroySession func(ctx context.Context, userID string) error
	requestReset   func(ctx context.Context, email string) (string, error)
	resetPassword  func(ctx context.Context, token, newPassword string) error
}

func (f *fakeAuthUsecase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return f.register(ctx, email, password)
}

func (f *fakeAuthUsecase) ValidLogin(ctx context.Context, email, password string) (bool, error) {
	return f.validLogin(ctx, email, password)
}

func (f *fakeAuthUsecase) CreateSession(ctx context.Context, email string) (string, error) {
	return f.createSession(ctx, email)
}

func (f *fakeAuthUsecase) DestroySession(ctx context.Context, userID string) error {
	return f.destroySession(ctx, userID)
}

func (f *fakeAuthUsecase) RequestReset(ctx context.Context, email string) (string, error) {
	return f.requestReset(ctx, email)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetPassword(ctx, token, newPassword)
}

func newTestEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.GET("/", h.Welcome)
	r.POST("/users", h.Register)
	r.POST("/sessions", h.Login)
	r.POST("/reset_password", h.RequestReset)
	r.PUT("/reset_password", h.UpdatePassword)
	// The session middleware normally populates userID; stub it here.
	r.DELETE("/sessions", func(c *gin.Context) { c.Set("userID", "user-1") }, h.Logout)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---- Welcome ----

func TestWelcome_Returns200(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	newTestEngine(&fakeAuthUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Bienvenue") {
		t.Errorf("body %q missing welcome message", w.Body.String())
	}
}

// ---- Register ----

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	w := doJSON(t, newTestEngine(&fakeAuthUsecase{}), http.MethodPost, "/users", `{bad json}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_InvalidEmail_Returns400(t *testing.T) {
	w := doJSON(t, newTestEngine(&fakeAuthUsecase{}), http.MethodPost, "/users",
		`{"email":"not-an-email","password":"pw"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_Duplicate_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrAlreadyRegistered
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/users",
		`{"email":"a@example.com","password":"pw"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_Success_Returns200WithEmail(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, email, _ string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/users",
		`{"email":"a@example.com","password":"pw"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "a@example.com") {
		t.Errorf("body %q missing registered email", w.Body.String())
	}
}

func TestRegister_StorageError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, errors.New("db down")
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/users",
		`{"email":"a@example.com","password":"pw"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Errorf("body %q leaks internal error", w.Body.String())
	}
}

// ---- Login ----

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		validLogin: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/sessions",
		`{"email":"a@example.com","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_Success_SetsSessionCookie(t *testing.T) {
	uc := &fakeAuthUsecase{
		validLogin:    func(_ context.Context, _, _ string) (bool, error) { return true, nil },
		createSession: func(_ context.Context, _ string) (string, error) { return "tok-123", nil },
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/sessions",
		`{"email":"a@example.com","password":"pw"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" && c.Value == "tok-123" {
			found = true
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("response is missing the session_id cookie")
	}
}

func TestLogin_StorageError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		validLogin: func(_ context.Context, _, _ string) (bool, error) {
			return false, errors.New("db down")
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/sessions",
		`{"email":"a@example.com","password":"pw"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---- Logout ----

func TestLogout_DestroysSessionAndRedirects(t *testing.T) {
	var destroyedID string
	uc := &fakeAuthUsecase{
		destroySession: func(_ context.Context, userID string) error {
			destroyedID = userID
			return nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/sessions", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if destroyedID != "user-1" {
		t.Errorf("destroyed user %q, want user-1", destroyedID)
	}
}

// ---- RequestReset ----

func TestRequestReset_UnknownEmail_Returns403(t *testing.T) {
	uc := &fakeAuthUsecase{
		requestReset: func(_ context.Context, _ string) (string, error) {
			return "", domain.ErrUserNotFound
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/reset_password",
		`{"email":"nobody@example.com"}`)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequestReset_Success_ReturnsToken(t *testing.T) {
	uc := &fakeAuthUsecase{
		requestReset: func(_ context.Context, _ string) (string, error) {
			return "reset-tok", nil
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPost, "/reset_password",
		`{"email":"a@example.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "reset-tok") {
		t.Errorf("body %q missing reset token", w.Body.String())
	}
}

// ---- UpdatePassword ----

func TestUpdatePassword_InvalidToken_Returns403(t *testing.T) {
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, _, _ string) error {
			return domain.ErrInvalidToken
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPut, "/reset_password",
		`{"email":"a@example.com","reset_token":"bad","new_password":"pw"}`)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestUpdatePassword_Success_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, token, newPassword string) error {
			if token != "good-tok" || newPassword != "new-pw" {
				t.Errorf("got (%q, %q), want (good-tok, new-pw)", token, newPassword)
			}
			return nil
		},
	}
	w := doJSON(t, newTestEngine(uc), http.MethodPut, "/reset_password",
		`{"email":"a@example.com","reset_token":"good-tok","new_password":"new-pw"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
