// Package router assembles the HTTP surface of the auth server.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abdul-Aziz026/school-auth/internal/api/http/handler"
	"github.com/Abdul-Aziz026/school-auth/internal/api/http/middleware"
	"github.com/Abdul-Aziz026/school-auth/internal/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New builds the router with all routes and middleware registered.
func New(
	authService handler.AuthService,
	tokenService handler.TokenService,
	resetService handler.ResetService,
	verifier middleware.TokenVerifier,
	db Pinger,
	logger *logger.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLogging(logger).Handle)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	authHandler := handler.NewAuth(authService, tokenService, resetService, logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.NewAuthenticate(verifier, logger).Handle)
		r.Get("/me", authHandler.Me)
	})

	return r
}
