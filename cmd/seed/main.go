// Command seed prepares a Postgres database for the API: it applies the
// schema migrations and creates initial users.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/archetype/archetype/config"
	"github.com/archetype/archetype/internal/core/auth"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/observability/logger"
	"github.com/archetype/archetype/internal/storage/postgres"
	"github.com/archetype/archetype/internal/storage/query"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, ServiceName: "archetype-seed"})
	defer func() { _ = log.Sync() }()

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Database bootstrap for the archetype API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := postgres.NewClient(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(); err != nil {
				return err
			}
			log.Info("database schema is current")
			return nil
		},
	}

	var (
		email    = envOr("SEED_USER_EMAIL", "")
		password = envOr("SEED_USER_PASSWORD", "")
		fullName = envOr("SEED_USER_FULL_NAME", "Administrator")
		generate int
	)
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Create a user unless one with the same email exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required (env SEED_USER_EMAIL, SEED_USER_PASSWORD)")
			}
			return seedUsers(cmd.Context(), cfg, log, &users.RegisterRequest{Email: email, Password: password, FullName: fullName}, generate)
		},
	}
	userCmd.Flags().StringVar(&email, "email", email, "Email of the user to create (env SEED_USER_EMAIL)")
	userCmd.Flags().StringVar(&password, "password", password, "Password of the user to create (env SEED_USER_PASSWORD)")
	userCmd.Flags().StringVar(&fullName, "full-name", fullName, "Full name of the user (env SEED_USER_FULL_NAME)")
	userCmd.Flags().IntVar(&generate, "generate", 0, "Also create this many sample users sharing the same password")

	root.AddCommand(migrateCmd)
	root.AddCommand(userCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

// seedUsers registers req and then n generated users. Users that already
// exist are left untouched.
func seedUsers(ctx context.Context, cfg *config.Config, log *zap.Logger, req *users.RegisterRequest, n int) error {
	db, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return err
		}
	}

	tokens, err := auth.NewTokenService(&cfg.JWT)
	if err != nil {
		return err
	}

	repo := postgres.NewUserRepository(db, query.NewCompiler(nil, query.WithLogger(log)))
	svc := users.NewService(repo, auth.NewBcryptHasher(0), tokens, cfg.Query, log)

	requests := append([]*users.RegisterRequest{req}, generated(n, req.Password)...)
	for _, r := range requests {
		if err := seedUser(ctx, svc, log, r); err != nil {
			return err
		}
	}
	return nil
}

func generated(n int, password string) []*users.RegisterRequest {
	out := make([]*users.RegisterRequest, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		out = append(out, &users.RegisterRequest{
			Email:    fmt.Sprintf("user%04d@example.com", i),
			Password: password,
			FullName: fmt.Sprintf("Sample User %04d", i),
		})
	}
	return out
}

func seedUser(ctx context.Context, svc *users.Service, log *zap.Logger, req *users.RegisterRequest) error {
	resp, err := svc.Register(ctx, req)
	if errors.Is(err, users.ErrUserExists) {
		log.Info("user already exists", zap.String("email", req.Email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed %s: %w", req.Email, err)
	}

	log.Info("user created", zap.String("user_id", resp.User.ID), zap.String("email", resp.User.Email))
	return nil
}
