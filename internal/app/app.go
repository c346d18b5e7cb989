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
	"time"

	"go-todo-api/docs"
	"go-todo-api/internal/config"
	"go-todo-api/internal/database"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/logger"
	"go-todo-api/internal/middleware"
	"go-todo-api/internal/repository"
	"go-todo-api/internal/repository/sqlite"
	"go-todo-api/internal/router"
	"go-todo-api/internal/service"
	"go-todo-api/internal/session"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

// stores is one storage backend seen through the service interfaces.
type stores struct {
	users  service.UserStore
	todos  service.TodoStore
	audit  service.AuditStore
	health interface {
		Health(ctx context.Context) error
	}
	close func()
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return stores{
			users:  sqlite.NewUserRepository(db.Conn),
			todos:  sqlite.NewTodoRepository(db.Conn),
			audit:  sqlite.NewAuditRepository(db.Conn),
			health: db,
			close:  db.Close,
		}, nil
	default:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return stores{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return stores{}, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		return stores{
			users:  repository.NewUserRepository(db.Pool),
			todos:  repository.NewTodoRepository(db.Pool),
			audit:  repository.NewAuditRepository(db.Pool),
			health: db,
			close:  db.Close,
		}, nil
	}
}

// NewHandler wires storage, services and handlers into the HTTP router. The
// returned func releases the storage backend.
func NewHandler(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("database ready", "driver", cfg.DatabaseDriver)

	codec, err := session.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		st.close()
		return nil, nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	cookies := session.NewCookies(cfg.CookieOptions())

	authService, err := service.NewAuthService(st.users, codec, cfg.BcryptCost)
	if err != nil {
		st.close()
		return nil, nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	auditService := service.NewAuditService(st.audit)
	todoService := service.NewTodoService(st.todos)

	authenticator := middleware.NewSessionAuthenticator(codec, cookies, authService)

	appRouter := router.New(cfg, authenticator, router.Handlers{
		Auth:   handler.NewAuthHandler(authService, cookies, auditService),
		Todo:   handler.NewTodoHandler(todoService, auditService),
		Audit:  handler.NewAuditHandler(auditService),
		Docs:   handler.NewDocsHandler(docs.OpenAPI),
		Health: handler.NewHealthHandler(st.health),
	})

	return appRouter, st.close, nil
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	appHandler, closeStores, err := NewHandler(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appHandler,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: []func(){closeStores},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}
