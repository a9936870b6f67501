package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/honeybadger-loader/internal/dto"
	"github.com/xkilldash9x/honeybadger-loader/internal/loader"
)

// fetchResult is one entry of the fetch command's output.
type fetchResult struct {
	ID     string             `json:"id"`
	Found  bool               `json:"found"`
	Notice *dto.ReportedError `json:"notice,omitempty"`
}

// newFetchCmd creates the `fetch` command.
func newFetchCmd(a *app) *cobra.Command {
	var pretty bool

	fetchCmd := &cobra.Command{
		Use:   "fetch <notice-id>...",
		Short: "Fetches reported errors by notice id and prints them as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			l, err := loader.New(a.cfg, a.provider(), a.logger())
			if err != nil {
				return err
			}
			defer l.Close()

			opts := loader.BatchOptionsFromConfig(a.cfg.Honeybadger())
			reports, err := l.FindAll(cmd.Context(), ids, opts)
			if err != nil {
				return err
			}

			results := make([]fetchResult, len(ids))
			for i, id := range ids {
				results[i] = fetchResult{ID: id.String(), Found: reports[i] != nil, Notice: reports[i]}
				if reports[i] == nil {
					a.logger().Warn("Notice not found", zap.Stringer("notice_id", id))
				}
			}
			return writeJSON(cmd.OutOrStdout(), results, pretty)
		},
	}

	fetchCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	fetchCmd.Flags().Int("concurrency", 0, "maximum lookups in flight (overrides honeybadger.concurrency)")
	fetchCmd.Flags().Float64("rate", 0, "lookups started per second, 0 for unlimited (overrides honeybadger.rate_limit)")
	_ = a.v.BindPFlag("honeybadger.concurrency", fetchCmd.Flags().Lookup("concurrency"))
	_ = a.v.BindPFlag("honeybadger.rate_limit", fetchCmd.Flags().Lookup("rate"))
	return fetchCmd
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid notice id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	api := json.ConfigCompatibleWithStandardLibrary
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = api.MarshalIndent(v, "", "  ")
	} else {
		out, err = api.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
