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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospital/hospital/internal/config"
	"github.com/hospital/hospital/internal/domain/activity"
	"github.com/hospital/hospital/internal/domain/appointment"
	"github.com/hospital/hospital/internal/domain/catalog"
	"github.com/hospital/hospital/internal/domain/shift"
	"github.com/hospital/hospital/internal/platform/auth"
	"github.com/hospital/hospital/internal/platform/db"
	"github.com/hospital/hospital/internal/platform/metrics"
	"github.com/hospital/hospital/internal/platform/middleware"
	"github.com/hospital/hospital/internal/store"
	"github.com/hospital/hospital/internal/store/memory"
	"github.com/hospital/hospital/internal/store/postgres"
	"github.com/hospital/hospital/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-server",
		Short: "Hospital shift roster and appointment API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd, statuses)
			return nil
		},
	})

	return cmd
}

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	pool, err := db.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrations.FS), pool.Close, nil
}

func printStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	// Store
	ctx := context.Background()
	var (
		st     *store.Store
		pinger db.Pinger
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		mem := memory.NewDB()
		st, pinger = mem.Store(), mem
		logger.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer pool.Close()
		st, pinger = postgres.New(pool), pool
		logger.Info().Msg("connected to database")
	}

	var reg *prometheus.Registry
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	e, limiter := newServer(cfg, logger, st, pinger, reg)
	limiter.Start()
	defer limiter.Stop()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.StoreBackend).Msg("starting server")
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
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with every route mounted. reg may be
// nil, which disables metrics. The returned limiter is not started.
func newServer(cfg *config.Config, logger zerolog.Logger, st *store.Store, pinger db.Pinger, reg *prometheus.Registry) (*echo.Echo, *middleware.RateLimiter) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(m.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader, auth.DevRolesHeader},
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}

	// Ops endpoints
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pinger, cfg.StoreBackend))
	if reg != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	limiter := middleware.NewRateLimiter(rateLimitCfg)

	activitySvc := activity.NewService(st.Activity, logger)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(limiter.Middleware())
	apiV1.Use(middleware.ActivityLog(logger, "/api/v1", activitySvc))

	shift.NewHandler(shift.NewService(st, logger, m)).RegisterRoutes(apiV1)
	appointment.NewHandler(appointment.NewService(st, logger, m,
		appointment.WithShiftCoverage(cfg.BookingRequireShift),
	)).RegisterRoutes(apiV1)

	catalog.NewHandler(catalog.NewDoctors(st, logger), "/doctor", auth.RoleAdmin).RegisterRoutes(apiV1)
	catalog.NewHandler(catalog.NewPatients(st, logger), "/patient", auth.RoleRegistrar).RegisterRoutes(apiV1)
	catalog.NewHandler(catalog.NewProcedures(st, logger), "/procedure", auth.RoleAdmin).RegisterRoutes(apiV1)
	catalog.NewHandler(catalog.NewRooms(st, logger), "/room", auth.RoleAdmin).RegisterRoutes(apiV1)

	activity.NewHandler(activitySvc).RegisterRoutes(apiV1)

	return e, limiter
}
