package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/honeybadger-loader/internal/serverinfo"
)

// newServerDetailsCmd creates the `server-details` command, which prints the
// server context that would accompany a report sent from this host.
func newServerDetailsCmd(a *app) *cobra.Command {
	var pretty bool

	serverCmd := &cobra.Command{
		Use:   "server-details",
		Short: "Prints this host's server context as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collector := serverinfo.NewCollector(a.provider(), a.logger())
			details := collector.ServerDetails(a.cfg.Honeybadger().Environment)
			return writeJSON(cmd.OutOrStdout(), details, pretty)
		},
	}

	serverCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	serverCmd.Flags().StringP("environment", "e", "", "environment name to report (overrides honeybadger.environment)")
	_ = a.v.BindPFlag("honeybadger.environment", serverCmd.Flags().Lookup("environment"))
	return serverCmd
}
