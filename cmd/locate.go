package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/honeybadger-loader/internal/loader"
)

// newLocateCmd creates the `locate` command. It only runs the redirect probe
// and prints the Read API URI the notice would be fetched from.
func newLocateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <notice-id>",
		Short: "Prints the Read API location of a notice without fetching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid notice id %q: %w", args[0], err)
			}

			l, err := loader.New(a.cfg, a.provider(), a.logger())
			if err != nil {
				return err
			}
			defer l.Close()

			uri, err := l.FindFaultURI(cmd.Context(), id)
			if err != nil {
				return err
			}
			if uri == nil {
				return fmt.Errorf("notice %s not found", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri.String())
			return nil
		},
	}
}
