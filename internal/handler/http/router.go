package http

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/pph21-engine/internal/config"
	"github.com/cmlabs-hris/pph21-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewLogger builds the ECS-formatted JSON logger shared by the request log and the service.
func NewLogger(app config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(app.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app.Name),
		slog.String("env", app.Env),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewRouter(cfg config.HTTPConfig, logger *slog.Logger, JWTService jwt.Service, authHandler AuthHandler, taxHandler TaxHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, cfg.RateWindow))
		}

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/tax", func(r chi.Router) {
				r.Post("/payslips/calculate", taxHandler.CalculatePayslip)
				r.Post("/bpjs", taxHandler.ComputeBPJS)

				r.Route("/periods", func(r chi.Router) {
					r.Post("/compute", taxHandler.ComputePeriod)
					r.Post("/year-end", taxHandler.ComputeYearEnd)
					r.Post("/submit", taxHandler.SubmitPeriod)
				})

				r.Post("/categories/{status}/refresh", taxHandler.RefreshCategory)
				r.Post("/ytd/{employeeID}/{year}/refresh", taxHandler.RefreshYTD)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Delete("/cache", taxHandler.ClearCache)
				})
			})

			r.Route("/auth/tokens", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/", authHandler.IssueToken)
				r.Post("/revoke", authHandler.RevokeToken)
			})
		})
	})
	return r
}
