// Package cmd defines the CLI commands for the seoreporter executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root command and attaches its subcommands.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "seoreporter",
		Short: "Backend for SEO audits, lead scraping and outreach email.",
		Long: `seoreporter serves the JSON API behind the SEO reporter dashboard.
Audits, lead searches and outreach email are delegated to n8n webhooks;
results are stored in Postgres.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")

	cmd.AddCommand(newServeCmd(&cfgFile))
	cmd.AddCommand(newMigrateCmd(&cfgFile))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
