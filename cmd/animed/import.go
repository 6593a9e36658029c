package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sindrigils/restfulapi-anime/internal/config"
	"github.com/sindrigils/restfulapi-anime/internal/importer"
	"github.com/sindrigils/restfulapi-anime/internal/logging"
	"github.com/sindrigils/restfulapi-anime/internal/store"
)

func importCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Bulk-import anime records from a CSV file",
		Long:  "Read anime records from a CSV file (Rank,Name,Rating,Episodes,Studio,Tags) and insert them into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init("text", logLevel)

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFromFile(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			config.LoadFromEnv(cfg)

			ctx := context.Background()
			db, err := store.New(ctx, cfg.Postgres.DSN)
			if err != nil {
				return fmt.Errorf("connect store: %w", err)
			}
			defer db.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := importer.Import(ctx, db, f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			logging.Op().Info("import finished", "imported", res.Imported, "skipped", res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")

	return cmd
}
