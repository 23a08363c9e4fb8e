package api

import (
	"banking-backend/internal/api/handler"
	mw "banking-backend/internal/api/middleware"
	"banking-backend/internal/auth"
	"banking-backend/internal/config"
	"banking-backend/internal/domain/loan"
	"log/slog"
	"net/http"
	"time"

	_ "banking-backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRouter(
	authService auth.AuthService,
	loanService loan.LoanService,
	cfg *config.Config,
	redisClient *redis.Client,
	logger *slog.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, redisClient, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, authService, logger)
	setupCustomerRoutes(router, authService, loanService, logger)
	setupAdminRoutes(router, authService, loanService, logger)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Welcome to the Banking Backend API"}`))
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, authService auth.AuthService, logger *slog.Logger) {
	h := handler.NewAuthHandler(authService, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/token", h.Login)
	})
}

func setupCustomerRoutes(router *chi.Mux, authService auth.AuthService, loanService loan.LoanService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(loanService, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(mw.RequireCustomer(authService, logger))
		r.Get("/me", h.Me)
		r.Post("/loans", h.ApplyLoan)
		r.Get("/loans", h.ListLoans)
		r.Get("/loans/{loanID}", h.GetLoan)
	})
}

func setupAdminRoutes(router *chi.Mux, authService auth.AuthService, loanService loan.LoanService, logger *slog.Logger) {
	h := handler.NewAdminHandler(loanService, logger)

	router.Route("/admins", func(r chi.Router) {
		r.Use(mw.RequireAdmin(authService, logger))
		r.Get("/loans", h.ListPendingLoans)
		r.Put("/loans/{loanID}", h.DecideLoan)
	})
}
