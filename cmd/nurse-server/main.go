package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/360nurse/api/internal/config"
	"github.com/360nurse/api/internal/domain/accounts"
	"github.com/360nurse/api/internal/domain/alerts"
	"github.com/360nurse/api/internal/domain/billing"
	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/domain/emergency"
	"github.com/360nurse/api/internal/domain/vitals"
	"github.com/360nurse/api/internal/platform/auth"
	"github.com/360nurse/api/internal/platform/db"
	"github.com/360nurse/api/internal/platform/middleware"
	"github.com/360nurse/api/internal/platform/paystack"
	"github.com/360nurse/api/internal/platform/sandbox"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nurse-server",
		Short: "360nurse remote patient monitoring API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo users, plans and vitals",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			seeder := sandbox.NewSeeder(
				directory.NewUserRepoPG(pool),
				directory.NewPatientRepoPG(pool),
				directory.NewNurseRepoPG(pool),
				directory.NewFacilityRepoPG(pool),
				directory.NewFacilityAdminRepoPG(pool),
				directory.NewAssignmentRepoPG(pool),
				vitals.NewRepoPG(pool),
				alerts.NewRepoPG(pool),
				emergency.NewRepoPG(pool),
				billing.NewPlanRepoPG(pool),
				db.PoolRunner(pool),
				logger,
			)
			result, err := seeder.Seed(ctx)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Printf("Seeded %d user(s), %d plan(s), %d vital reading(s).\n",
				result.Users, result.Plans, result.VitalReadings)
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	sessionCfg := auth.SessionConfig{
		SigningKey: []byte(cfg.SessionSecret),
		Issuer:     "360nurse",
		TTL:        time.Duration(cfg.SessionTTLHours) * time.Hour,
	}

	// Repositories
	userRepo := directory.NewUserRepoPG(pool)
	patientRepo := directory.NewPatientRepoPG(pool)
	nurseRepo := directory.NewNurseRepoPG(pool)
	facilityRepo := directory.NewFacilityRepoPG(pool)
	facilityAdminRepo := directory.NewFacilityAdminRepoPG(pool)
	assignmentRepo := directory.NewAssignmentRepoPG(pool)
	vitalRepo := vitals.NewRepoPG(pool)
	alertRepo := alerts.NewRepoPG(pool)
	serviceRepo := emergency.NewRepoPG(pool)
	planRepo := billing.NewPlanRepoPG(pool)
	subRepo := billing.NewSubscriptionRepoPG(pool)
	paymentRepo := billing.NewPaymentRepoPG(pool)
	txnRepo := billing.NewTransactionRepoPG(pool)

	runTx := db.PoolRunner(pool)

	// Services
	directorySvc := directory.NewService(userRepo, patientRepo, nurseRepo,
		facilityRepo, facilityAdminRepo, assignmentRepo)
	emergencySvc := emergency.NewService(serviceRepo)
	alertSvc := alerts.NewService(alertRepo, patientRepo, nurseRepo, userRepo,
		assignmentRepo, serviceRepo)
	vitalSvc := vitals.NewService(vitalRepo, patientRepo, nurseRepo,
		assignmentRepo, alertSvc, runTx)

	gateway := paystack.NewClient(paystack.Config{
		SecretKey: cfg.PaystackSecretKey,
		BaseURL:   cfg.PaystackBaseURL,
	})
	billingSvc := billing.NewService(planRepo, subRepo, paymentRepo, txnRepo,
		userRepo, gateway, cfg.AppURL, runTx)

	accountSvc := accounts.NewService(userRepo, patientRepo, nurseRepo,
		facilityRepo, facilityAdminRepo, assignmentRepo, vitalRepo, alertRepo,
		serviceRepo, sessionCfg, runTx)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Public routes: registration and login only.
	public := e.Group("/api")
	accounts.NewHandler(accountSvc).RegisterRoutes(public)

	// Everything else requires a session.
	api := e.Group("/api", auth.SessionMiddleware(sessionCfg), middleware.Audit(logger))
	directory.NewHandler(directorySvc).RegisterRoutes(api)
	vitals.NewHandler(vitalSvc).RegisterRoutes(api)
	alerts.NewHandler(alertSvc).RegisterRoutes(api)
	emergency.NewHandler(emergencySvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
