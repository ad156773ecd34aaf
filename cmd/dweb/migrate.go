package main

import (
	"errors"
	"fmt"

	"github.com/dweb/dweb"
	"github.com/dweb/dweb/internal/blog"
	"github.com/dweb/dweb/internal/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables of all models",
		Long: `Create or update the tables of all registered models.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables

Environment variables:
  DWEB_DATA_DIR                Data directory (default: ~/.dweb)
  DWEB_DB_URL                  Database URL (default: sqlite:///{data_dir}/dweb.db)
  DWEB_LOG_LEVEL               Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  DWEB_LOG_FORMAT              Log format: pretty, json (default: pretty)
  DWEB_MEDIA_ROOT              Attachment directory (default: {data_dir}/media)
  DWEB_STORAGE_BACKEND         Attachment storage: filesystem, s3 (default: filesystem)
  DWEB_STORAGE_S3_*            S3 storage configuration
    BUCKET, ENDPOINT, REGION, ACCESS_KEY, SECRET_KEY, USE_PATH_STYLE`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}

			logger := log.NewLogger(cfg).Slog()
			client, err := dweb.New(dweb.WithConfig(cfg), dweb.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, client.Close())
			}()

			if _, err := blog.Register(client.Registry()); err != nil {
				return err
			}
			if err := client.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrated %d models\n", len(client.Registry().Models()))
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}
