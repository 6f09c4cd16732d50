package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carelink/carelink/internal/config"
	"github.com/carelink/carelink/internal/mockstore"
	"github.com/carelink/carelink/internal/platform/authstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/platform/fbapp"
	"github.com/carelink/carelink/internal/platform/localstore"
	"github.com/carelink/carelink/internal/seed"
)

// Seed targets.
const (
	targetLocal      = "local"
	targetDocstore   = config.BackendDocstore
	targetRelational = config.BackendRelational
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "carelink",
		Short:         "Carelink demo API and dashboards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		logger := newLogger(nil)
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newLogger writes JSON to stdout, or a console format in development.
// Production defaults to info when no level is set.
func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg == nil {
		return logger
	}
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if cfg.LogLevel == "" {
		if cfg.IsProduction() {
			logger = logger.Level(zerolog.InfoLevel)
		}
		return logger
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}
	return logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func firebaseSettings(cfg *config.Config) fbapp.Settings {
	return fbapp.Settings{ProjectID: cfg.FirebaseProjectID, CredentialsFile: cfg.FirebaseCredentialsFile}
}

func authSettings(cfg *config.Config) fbapp.Settings {
	return fbapp.Settings{
		ProjectID:       cfg.AuthProjectID,
		CredentialsFile: cfg.AuthCredentialsFile,
		StorageBucket:   cfg.StorageBucket,
	}
}

// openRemote opens the remote store named by backendName. Missing settings
// give a stub store whose calls fail, so reads fall back to local data.
func openRemote(ctx context.Context, cfg *config.Config, backendName string) (backend.Store, func(), error) {
	switch backendName {
	case config.BackendRelational:
		r, err := db.OpenRelational(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case config.BackendDocstore:
		c, err := docstore.Open(ctx, firebaseSettings(cfg))
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", backendName)
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Clear and repopulate every collection with demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("target")
			provision, _ := cmd.Flags().GetBool("provision-auth")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx := cmd.Context()

			store, closeStore, err := openSeedTarget(ctx, cfg, target)
			if err != nil {
				return err
			}
			defer closeStore()

			fixtures, err := seed.Default()
			if err != nil {
				return err
			}
			var opts []seed.Option
			if provision {
				ac, err := authstore.Open(ctx, authSettings(cfg))
				if err != nil {
					return err
				}
				if ac.IsStub() {
					logger.Warn().Msg("auth provider not configured, accounts will not be provisioned")
				}
				opts = append(opts, seed.WithProvisioner(ac))
			}

			res, err := seed.New(store, fixtures, logger, opts...).Run(ctx)
			if err != nil {
				return fmt.Errorf("seed %s: %w", target, err)
			}
			logger.Info().Str("target", target).Int("provisioned", res.Provisioned).Msg("seed finished")
			return nil
		},
	}
	cmd.Flags().String("target", targetLocal, "Store to seed: local, docstore or relational")
	cmd.Flags().Bool("provision-auth", false, "Also create auth provider accounts for the demo users")
	return cmd
}

// openSeedTarget opens the store a seed run writes to. Remote targets must be
// configured: seeding a stub would fail on the first call anyway.
func openSeedTarget(ctx context.Context, cfg *config.Config, target string) (backend.Store, func(), error) {
	switch target {
	case targetLocal:
		kv, err := localstore.OpenLevelDB(cfg.LocalStorePath)
		if err != nil {
			return nil, nil, err
		}
		return mockstore.New(kv), func() { _ = kv.Close() }, nil
	case targetDocstore:
		if !cfg.DocstoreConfigured() {
			return nil, nil, fmt.Errorf("seed docstore: FIREBASE_PROJECT_ID is not set: %w", backend.ErrNotConfigured)
		}
	case targetRelational:
		if !cfg.RelationalConfigured() {
			return nil, nil, fmt.Errorf("seed relational: DATABASE_URL is not set: %w", backend.ErrNotConfigured)
		}
	default:
		return nil, nil, fmt.Errorf("unknown seed target %q (want local, docstore or relational)", target)
	}
	return openRemote(ctx, cfg, target)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the relational backend schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closePool, err := openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closePool, err := openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	})

	return cmd
}

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.RelationalConfigured() {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set: %w", backend.ErrNotConfigured)
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, db.Migrations()), pool.Close, nil
}
