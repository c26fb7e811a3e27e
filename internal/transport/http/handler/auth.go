package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nbekenov/authsvc/internal/domain"
)

// sessionCookie is the cookie carrying the session token.
const sessionCookie = "session_id"

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	ValidLogin(ctx context.Context, email, password string) (bool, error)
	CreateSession(ctx context.Context, email string) (string, error)
	DestroySession(ctx context.Context, userID string) error
	RequestReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("component", "auth_handler"),
	}
}

// GET /
func (h *AuthHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Bienvenue"})
}

type registerRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /users
// Duplicate registration returns 400; the response does not distinguish a
// pre-existing record from a racing registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyRegistered})
			return
		}
		h.logger.Error("register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": user.Email, "message": "user created"})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /sessions
// 401 for any invalid credential; unknown email and wrong password are
// indistinguishable in status, body and shape.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.auth.ValidLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		return
	}

	token, err := h.auth.CreateSession(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"email": req.Email, "message": "logged in"})
}

// DELETE /sessions
// Runs behind the session middleware; the resolved user ID is in the gin
// context. Revoking is idempotent, so a replayed logout still redirects.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.auth.DestroySession(c.Request.Context(), userID); err != nil {
		h.logger.Error("destroy session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// GET /profile
// Runs behind the session middleware.
func (h *AuthHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"email": c.GetString("userEmail")})
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /reset_password
// Unknown email returns 403. The token is returned in the body (coursework
// contract) in addition to the reset email.
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		h.logger.Error("request reset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": req.Email, "reset_token": token})
}

type updatePasswordRequest struct {
	Email       string `json:"email"        binding:"required,email"`
	ResetToken  string `json:"reset_token"  binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PUT /reset_password
// An unknown or already-consumed token returns 403.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		h.logger.Error("reset password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": req.Email, "message": "Password updated"})
}
