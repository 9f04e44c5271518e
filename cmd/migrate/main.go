package main

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-company-employees/internal/platform/config"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath    string
		migrationsDir string
	)

	run := func(action string) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, _ []string) error {
			// .env は任意
			_ = godotenv.Load()

			cfg, err := config.Load(effectiveConfigPath(configPath))
			if err != nil {
				return err
			}
			if err := runMigration(action, migrationsDir, cfg.Database.DSN()); err != nil {
				return fmt.Errorf("migration %s failed: %w", action, err)
			}
			log.Printf("migration %s completed", action)
			return nil
		}
	}

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "manage company/employee schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run("up"),
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "assets/migrations", "directory containing migration files")

	rootCmd.AddCommand(
		&cobra.Command{Use: "up", Short: "apply all pending migrations", Args: cobra.NoArgs, RunE: run("up")},
		&cobra.Command{Use: "down", Short: "roll back all migrations", Args: cobra.NoArgs, RunE: run("down")},
		&cobra.Command{Use: "drop", Short: "drop everything in the database", Args: cobra.NoArgs, RunE: run("drop")},
		&cobra.Command{Use: "version", Short: "print the applied migration version", Args: cobra.NoArgs, RunE: run("version")},
	)
	rootCmd.SuggestionsMinimumDistance = 1

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.PathFromEnv()
}

func runMigration(action, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Printf("no migration applied")
				return nil
			}
			return err
		}
		log.Printf("version=%d dirty=%t", version, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
