// Package main is the entry point for the dweb CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/dweb/dweb/internal/blog"
	"github.com/dweb/dweb/internal/config"
	"github.com/dweb/dweb/internal/database"
	"github.com/dweb/dweb/internal/log"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dweb",
		Short:         "dweb model registry tools",
		Long:          `dweb registers the sample blog models, reports configuration errors such as status or category values colliding with field names, and migrates their tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(checkCmd())
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(inspectCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// offlineRegistry registers the blog models against an in-memory database.
// Registration only parses schemas, so no real database is touched.
func offlineRegistry(ctx context.Context) (*persistence.Registry, func(), error) {
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	reg, err := persistence.NewRegistry(db, persistence.WithLogger(log.Discard().Slog()))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if _, err := blog.Register(reg); err != nil {
		cleanup()
		return nil, nil, err
	}
	return reg, cleanup, nil
}
