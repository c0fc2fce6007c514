package main

import (
	"fmt"

	"github.com/bissquit/fieldops/internal/pkg/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run PostgreSQL migrations",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is not configured")
		}
		return postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert migrations",
	Long:  "Revert all migrations by default.\nIf step is provided, it will revert `N` migrations.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is not configured")
		}

		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return fmt.Errorf("read flag `step`: %w", err)
		}
		return postgres.MigrateDown(cfg.Database.URL, cfg.Database.MigrationsPath, step)
	},
}

func init() {
	migrateDownCmd.Flags().IntP("step", "s", 0, "Number of migrations to revert")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
