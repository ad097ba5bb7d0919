package routes

import (
	"github.com/ghostofweb/portfolio-api/internal/auth"
	"github.com/ghostofweb/portfolio-api/internal/handlers"
	"github.com/ghostofweb/portfolio-api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	userHandler *handlers.UserHandler,
	blogHandler *handlers.BlogHandler,
	tokenManager *auth.TokenManager,
	userResolver auth.UserResolver,
) {
	// Unauthenticated auth/OTP endpoints can trigger outbound mail, so they
	// are rate limited by IP
	rateLimitConfig := middleware.DefaultAuthRateLimit()
	limited := middleware.RateLimitByIP(rateLimitConfig)

	router.Route("/api/user", func(r chi.Router) {
		// Public routes
		r.With(limited).Post("/send-otp", userHandler.SendOTP)
		r.With(limited).Post("/register", userHandler.Register)
		r.With(limited).Post("/login", userHandler.Login)
		r.With(limited).Post("/forgot-password-otp", userHandler.ForgotPasswordOTP)
		r.With(limited).Post("/reset-password-otp", userHandler.ResetPasswordOTP)
		r.With(limited).Post("/forgot-password", userHandler.ForgotPassword)
		r.With(limited).Post("/reset-password/{token}", userHandler.ResetPassword)

		// Protected routes - bearer token required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokenManager, userResolver))

			r.Get("/profile", userHandler.Profile)
			r.Put("/update-profile", userHandler.UpdateProfile)
			r.Post("/send-current-user-otp", userHandler.SendCurrentUserOTP)
			r.Delete("/delete-account", userHandler.DeleteAccount)
			r.Get("/all-users", userHandler.AllUsers)

			// Master-only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireMaster())
				r.Delete("/remove-member/{id}", userHandler.RemoveMember)
			})
		})
	})

	router.Route("/api/blog", func(r chi.Router) {
		// Public routes
		r.Get("/blogs", blogHandler.ListPublished)
		r.Get("/{slug}", blogHandler.GetBySlug)

		// Protected routes - bearer token required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokenManager, userResolver))

			r.Get("/all", blogHandler.ListAll)
			r.Get("/edit/{slug}", blogHandler.GetForEdit)
			r.Post("/create", blogHandler.Create)
			r.Put("/edit/{id}", blogHandler.Update)
			r.Delete("/delete/{id}", blogHandler.Delete)
			r.Post("/upload-image", blogHandler.UploadImage)
		})
	})
}
