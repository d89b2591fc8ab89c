package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/spf13/cobra"
)

var (
	dryRun  bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the recurring billing schema to postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dryRun {
			return printMigrations()
		}
		return runMigrations()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List embedded migrations in apply order",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrations, err := postgres.Migrations()
		if err != nil {
			return err
		}
		for _, m := range migrations {
			fmt.Fprintln(os.Stdout, m.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print migration SQL without executing it")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Upper bound on the whole migration run")
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printMigrations() error {
	migrations, err := postgres.Migrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	for _, m := range migrations {
		fmt.Fprintf(os.Stdout, "-- %s\n%s\n", m.Name, m.SQL)
	}
	return nil
}

func runMigrations() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("Running database migrations...")
	if err := db.Migrate(ctx); err != nil {
		log.Errorw("Failed to apply migrations", "error", err)
		return err
	}

	log.Info("Migration completed successfully")
	return nil
}
