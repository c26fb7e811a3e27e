package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/nbekenov/authsvc/internal/transport/http/handler"
	"github.com/nbekenov/authsvc/internal/transport/http/middleware"
	"github.com/nbekenov/authsvc/internal/usecase"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, auth *usecase.AuthUsecase) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	sessionMW := middleware.Session(auth, logger)

	// Public routes
	r.GET("/", authHandler.Welcome)
	r.POST("/users", authHandler.Register)
	r.POST("/sessions", authHandler.Login)
	r.POST("/reset_password", authHandler.RequestReset)
	r.PUT("/reset_password", authHandler.UpdatePassword)

	// Session-protected routes
	r.DELETE("/sessions", sessionMW, authHandler.Logout)
	r.GET("/profile", sessionMW, authHandler.Profile)

	return r
}
