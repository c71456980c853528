package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/campusware/enroll/internal/enroll/http"
	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/internal/enroll/store"
	redisdriver "github.com/campusware/enroll/internal/enroll/store/drivers/redis"
	"github.com/campusware/enroll/internal/enroll/store/drivers/sqlite"
	"github.com/campusware/enroll/internal/enroll/store/memory"
	"github.com/campusware/enroll/pkg/cryptox"
	"github.com/campusware/enroll/pkg/jwtx"
	"github.com/campusware/enroll/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the enrollment service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	revocations store.RevocationStore
	cache       store.Cache

	// Services
	tokenService        *service.TokenService
	sessionService      *service.SessionService
	userService         *service.UserService
	classService        *service.ClassService
	enrollmentService   *service.EnrollmentService
	settingsService     *service.SettingsService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "enroll-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("ENROLL_JWT_SECRET is required")
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initRevocations(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("enroll service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down enroll service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.revocations.Close(); err != nil {
		app.logger.Error("error closing revocation store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("enroll service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRevocations selects the revocation store backend. Without a redis
// address the in-memory store is used; fine for a single node, useless for
// more than one.
func (app *Application) initRevocations() error {
	if app.cfg.RedisAddr == "" {
		mem := memory.NewRevocationStore()
		app.revocations = mem
		app.cache = mem
		app.logger.Warn("no redis address configured, using in-memory revocation store")
		return nil
	}

	rs := redisdriver.Open(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
	if err := rs.Ping(context.Background()); err != nil {
		_ = rs.Close()
		return fmt.Errorf("failed to reach revocation store: %w", err)
	}
	app.revocations = rs
	app.cache = rs
	app.logger.Info("revocation store connected", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:       jwtx.NewCodec([]byte(app.cfg.JWTSecret)),
		Revocations: app.revocations,
	}
	app.sessionService = &service.SessionService{
		Tokens:      app.tokenService,
		Revocations: app.revocations,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Tokens: app.tokenService,
		Issuer: "enroll",
	}
	app.classService = &service.ClassService{Store: app.db}
	app.enrollmentService = &service.EnrollmentService{
		Store: app.db,
		Cache: app.cache,
	}
	app.settingsService = &service.SettingsService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.revocations,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ClassService = app.classService
	router.EnrollmentService = app.enrollmentService
	router.SettingsService = app.settingsService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
