// Command ingestd runs document ingest pipelines over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/ingest/version"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Document ingest pipeline node",
		Long: `ingestd runs write requests through configurable processor pipelines
before they are stored.

Configuration sources (in order of precedence):
1. Environment variables (INGESTD_* prefix, .env supported)
2. The file given with --config, else ./config.yml and friends
3. Default values`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML)")

	root.AddCommand(
		newServeCmd(&configPath),
		newSimulateCmd(),
		newValidateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			},
		},
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
