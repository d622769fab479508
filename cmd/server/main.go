package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/archetype/archetype/config"
	"github.com/archetype/archetype/internal/api"
	"github.com/archetype/archetype/internal/api/handlers"
	"github.com/archetype/archetype/internal/core/auth"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/core/validation"
	"github.com/archetype/archetype/internal/observability/logger"
	"github.com/archetype/archetype/internal/observability/metrics"
	"github.com/archetype/archetype/internal/storage/memory"
	"github.com/archetype/archetype/internal/storage/postgres"
	"github.com/archetype/archetype/internal/storage/query"
)

var version = "dev"

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Config{
		Env:         cfg.Log.Env,
		Level:       cfg.Log.Level,
		ServiceName: "archetype",
		Version:     version,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := auth.NewTokenService(&cfg.JWT)
	if err != nil {
		return err
	}
	validator, err := validation.NewRequestValidator()
	if err != nil {
		return err
	}

	m := metrics.New()
	compiler := query.NewCompiler(
		query.NewResolver(m),
		query.WithLogger(log.Named("criteria")),
		query.WithRecorder(m),
	)

	repo, closeRepo, err := openRepository(ctx, cfg, compiler, m, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := users.NewService(repo, auth.NewBcryptHasher(0), tokens, cfg.Query, log.Named("users"))

	router := api.NewRouter(
		tokens,
		handlers.NewAuthHandler(svc, validator, log),
		handlers.NewUserHandler(svc, validator, log),
		m,
		log,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Setup(cfg.Server.Mode, cfg.Server.CORSAllowedOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openRepository picks the user store named by database.driver.
func openRepository(ctx context.Context, cfg *config.Config, compiler *query.Compiler, m *metrics.Metrics, log *zap.Logger) (users.Repository, func(), error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUserRepository(compiler), func() {}, nil
	}

	db, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	if err := m.RegisterDB(db.DB, cfg.Database.Name); err != nil {
		log.Warn("database metrics unavailable", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("database schema is current")
	}

	return postgres.NewUserRepository(db, compiler), func() { _ = db.Close() }, nil
}
