package admin

import (
	"fmt"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/database"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command group
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cli.Require(cmd, cli.RequiresDatabase)
	cmd.PersistentFlags().String("dir", database.DefaultMigrationsDir, "Migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, 0)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return runMigrate(cmd, steps)
		},
	}
	down.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

// runMigrate migrates up when steps is zero and down by steps otherwise.
func runMigrate(cmd *cobra.Command, steps int) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")

	var status *database.MigrationStatus
	if steps == 0 {
		status, err = database.Migrate(cfg.DatabaseURL, dir, logger)
	} else {
		status, err = database.Rollback(cfg.DatabaseURL, dir, steps, logger)
	}
	if err != nil {
		return err
	}

	state := "up to date"
	if status.Applied {
		state = "changed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (%s)\n", status.Version, state)
	return nil
}
