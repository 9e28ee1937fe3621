package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sanchaya/society-backend/internal/config"
	"github.com/sanchaya/society-backend/internal/handler"
	"github.com/sanchaya/society-backend/internal/middleware"
	"github.com/sanchaya/society-backend/internal/repository/postgres"
	"github.com/sanchaya/society-backend/internal/service"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	memberRepo := postgres.NewMemberRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	repaymentRepo := postgres.NewRepaymentRepository(pool)
	accrualRepo := postgres.NewAccrualRepository(pool)
	depositRepo := postgres.NewDepositRepository(pool)
	fdCalcRepo := postgres.NewFDCalculationRepository(pool)
	quarterRepo := postgres.NewQuarterRepository(pool)

	// Initialize services
	memberService := service.NewMemberService(memberRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, memberRepo)
	loanService := service.NewLoanService(loanRepo, memberRepo, accrualRepo, repaymentRepo)
	interestService := service.NewInterestService(loanRepo, accrualRepo)
	quarterService := service.NewQuarterService(quarterRepo)
	depositService := service.NewDepositService(depositRepo, fdCalcRepo, memberRepo, subscriptionRepo, repaymentRepo, quarterService)
	profitService := service.NewProfitService(repaymentRepo, accrualRepo, fdCalcRepo, subscriptionRepo)
	reportService := service.NewReportService(loanRepo, memberRepo, accrualRepo, repaymentRepo, subscriptionRepo)
	dashboardService := service.NewDashboardService(loanRepo, repaymentRepo, subscriptionRepo, depositRepo, fdCalcRepo, profitService)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.APIToken)

	// Initialize handlers
	memberHandler := handler.NewMemberHandler(memberService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	loanHandler := handler.NewLoanHandler(loanService, reportService)
	interestHandler := handler.NewInterestHandler(interestService)
	depositHandler := handler.NewDepositHandler(depositService)
	quarterHandler := handler.NewQuarterHandler(quarterService)
	reportHandler := handler.NewReportHandler(profitService, reportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Rate limiting middleware
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()
	e.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, memberHandler, subscriptionHandler, loanHandler, interestHandler, depositHandler, quarterHandler, reportHandler, dashboardHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
