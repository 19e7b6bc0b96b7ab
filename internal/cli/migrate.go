package cli

import (
	"github.com/spf13/cobra"

	"meetmatch/internal/database"
	applog "meetmatch/pkg/log"
)

// NewMigrateCommand creates the command that applies the database schema.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Creates or updates every table and index. Safe to run repeatedly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			logger := applog.WithComponent("migrate")
			logger.Info().Str("driver", cfg.DatabaseDriver).Msg("Schema applied")
			return nil
		},
	}
}
