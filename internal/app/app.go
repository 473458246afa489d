package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	activityrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/activity"
	clientrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/client"
	cfrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/customfield"
	fcrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/fieldchoice"
	outcomerepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/outcome"
	reportingrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/reporting"
	slrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	userrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/user"
	"github.com/carelog/carelog-backend/internal/auth"
	"github.com/carelog/carelog-backend/internal/config"
	catalogsvc "github.com/carelog/carelog-backend/internal/service/catalog"
	clientsvc "github.com/carelog/carelog-backend/internal/service/client"
	cfsvc "github.com/carelog/carelog-backend/internal/service/customfield"
	reportingsvc "github.com/carelog/carelog-backend/internal/service/reporting"
	slsvc "github.com/carelog/carelog-backend/internal/service/servicelog"
	usersvc "github.com/carelog/carelog-backend/internal/service/user"
	"github.com/carelog/carelog-backend/internal/transport/middleware"
	"github.com/carelog/carelog-backend/internal/transport/rest"
)

// Services bundles the constructed service layer for the transport tier and
// for tests that wire the app without HTTP.
type Services struct {
	Users        *usersvc.Service
	Clients      *clientsvc.Service
	Catalog      *catalogsvc.Service
	CustomFields *cfsvc.Service
	ServiceLogs  *slsvc.Service
	Reporting    *reportingsvc.Service
}

// Run is the application entry point: load configuration, open the
// database, run migrations, wire services, and serve HTTP until the context
// is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	db, err := sqlite.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrateEnabled() {
		if err := sqlite.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	txManager := sqlite.NewTxManager(db)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	users := userrepo.New(db)
	clients := clientrepo.New(db)
	activities := activityrepo.New(db)
	outcomes := outcomerepo.New(db)
	fields := cfrepo.New(db)
	choices := fcrepo.New(db)
	logs := slrepo.New(db)
	reports := reportingrepo.New(db)

	serviceLogs := slsvc.NewService(logger, logs, txManager, nil)
	if cfg.Reporting.RefreshOnWriteEnabled() {
		serviceLogs = slsvc.NewService(logger, logs, txManager, reports)
	}

	svcs := &Services{
		Users:        usersvc.NewService(logger, users, hasher, jwtManager),
		Clients:      clientsvc.NewService(logger, clients),
		Catalog:      catalogsvc.NewService(logger, activities, outcomes),
		CustomFields: cfsvc.NewService(logger, fields, choices, txManager),
		ServiceLogs:  serviceLogs,
		Reporting:    reportingsvc.NewService(logger, reports),
	}

	healthHandler := rest.NewHealthHandler(db, BuildVersion())
	authHandler := rest.NewAuthHandler(svcs.Users, logger)
	adminHandler := rest.NewAdminHandler(svcs.Reporting, logger)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/live", healthHandler.Live)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)
	mux.Handle("POST /api/v1/auth/login",
		limiter.Limit(cfg.Server.LoginRatePerMinute)(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/v1/admin/reporting/refresh", adminHandler.RefreshReporting)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtManager),
	)(mux)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
