package http

import (
	"net/http"

	"github.com/family-connect/internal/application/auth"
	"github.com/family-connect/internal/application/dashboard"
	"github.com/family-connect/internal/application/event"
	"github.com/family-connect/internal/application/notification"
	"github.com/family-connect/internal/application/profile"
	"github.com/family-connect/internal/application/reminder"
	"github.com/family-connect/internal/application/video"
	"github.com/family-connect/internal/config"
	"github.com/family-connect/internal/transport/http/handler"
	appmiddleware "github.com/family-connect/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 20 requests/second, burst of 40, for the whole endpoint.
	apiRL := appmiddleware.NewRateLimiter(rate.Limit(20), 40)
	// 1 request/second, burst of 5, for send_otp and verify_otp.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(1), 5)

	services := handler.Services{
		Auth: auth.NewService(auth.ServiceDeps{
			VerificationRepo: deps.VerificationRepo,
			UserRepo:         deps.UserRepo,
			SessionRepo:      deps.SessionRepo,
			DeviceRepo:       deps.DeviceRepo,
			SMSSender:        deps.SMSSender,
			JWTProvider:      deps.JWTProvider,
			OTP:              cfg.OTP,
			RefreshTokenTTL:  cfg.RefreshTokenTTL,
		}),
		Dashboard:    dashboard.NewService(deps.MenuRepo, deps.AdRepo, deps.Media),
		Reminder:     reminder.NewService(deps.UserRepo),
		Event:        event.NewService(deps.EventRepo, deps.Media),
		Video:        video.NewService(deps.VideoRepo, deps.Media),
		Notification: notification.NewService(deps.NotificationRepo),
		Profile:      profile.NewService(deps.UserRepo, deps.Media),
	}
	api := handler.NewAPIHandler(services, sensitiveRL)

	r.Get("/health", handler.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Use(apiRL.Limit)
		r.Use(appmiddleware.Authenticate(deps.JWTProvider, deps.SessionRepo))
		r.Method(http.MethodGet, "/api", api)
	})

	return r
}
