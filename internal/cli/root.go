package cli

import (
	"github.com/spf13/cobra"
)

const appName = "templogger"

// NewRootCmd builds the command tree. version is "dev" unless set at link time.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Templogger - room temperature logging and plotting",
		Long: `Templogger stores temperature readings reported by room sensors in
per-room log files and renders them as daily plots, over HTTP or offline.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(version), newPlotCmd(version))
	return root
}
