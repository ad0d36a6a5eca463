package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mobcsv/internal/history"
)

var errHistoryDisabled = errors.New("run history is disabled: set DATABASE_URL")

func historyCmd(a *app) *cobra.Command {
	var limit int
	var format string

	c := &cobra.Command{
		Use:   "history",
		Short: "List recent runs recorded in the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Database.HistoryEnabled() {
				return errHistoryDisabled
			}

			pool, store, err := history.Connect(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs, format)
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	c.Flags().StringVar(&format, "format", "pretty", "output format: pretty|json")
	return c
}

func printRuns(w io.Writer, runs []history.Run, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case "pretty", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSOURCE\tRULE\tREAD\tACCEPTED\tREJECTED\tDURATION\tINPUT\tERROR")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
				r.StartedAt.Local().Format(time.DateTime),
				r.Source, r.Rule, r.Read, r.Accepted, r.Rejected,
				r.Duration.Round(time.Millisecond), r.Input, r.Error,
			)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}
