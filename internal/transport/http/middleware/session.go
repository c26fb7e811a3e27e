package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nbekenov/authsvc/internal/domain"
)

const errForbidden = "Forbidden"

// sessionResolver is the subset of the auth facade the middleware needs.
type sessionResolver interface {
	GetUserForSession(ctx context.Context, token string) (*domain.User, error)
}

// Session resolves the session_id cookie and sets "userID" and "userEmail"
// in the gin context. Requests without a valid session are rejected with 403.
func Session(auth sessionResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("session_id")
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}

		user, err := auth.GetUserForSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
				return
			}
			logger.ErrorContext(c.Request.Context(), "resolve session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userEmail", user.Email)
		c.Next()
	}
}
