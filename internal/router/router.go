// Package router sets up all HTTP routes and middleware chains for the API.
// It organizes routes into the public visitor group and the token-guarded
// admin group.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"totisite/internal/handlers"
	"totisite/internal/middleware"
	"totisite/internal/token"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(tokens *token.Service, auth *handlers.Auth, admin *handlers.Admin, visitor *handlers.Visitor) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no auth, no rate limit.
	r.Get("/health", visitor.Health)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints are rate-limited per IP. Form endpoints get a
		// tighter budget than the chat loop.
		chatLimiter := middleware.NewRateLimiter(60, time.Minute)
		formLimiter := middleware.NewRateLimiter(10, time.Minute)

		r.Group(func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Post("/chat", visitor.Chat)
			r.Get("/chat-session", visitor.ChatSessionGet)
			r.Post("/chat-session", visitor.ChatSessionPost)
			r.Post("/anam/session", visitor.AnamSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(formLimiter.Middleware)
			r.Post("/lead", visitor.Lead)
			r.Post("/contact", visitor.Contact)
			r.Post("/newsletter", visitor.Newsletter)
			r.Post("/booking-request", visitor.Booking)
		})

		// Admin routes: bearer token required past login.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireToken(tokens))
				r.Get("/verify", auth.Verify)
				r.Get("/totp", auth.TOTPQRCode)

				r.Get("/data", admin.Data)
				r.Post("/data", admin.Create)
				r.Put("/data", admin.Update)
				r.Patch("/data", admin.Patch)
				r.Delete("/data", admin.Delete)
			})
		})
	})

	return r
}
