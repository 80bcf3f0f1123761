package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/seo-reporter/internal/config"
	"github.com/JakeFAU/seo-reporter/internal/logging"
	"github.com/JakeFAU/seo-reporter/internal/server"
)

func newMigrateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the audit, scrape session and lead tables if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.NewWithLevel(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("logger init failed: %w", err)
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush
			return server.Migrate(cmd.Context(), &cfg, logger.Named("migrate"))
		},
	}
}
