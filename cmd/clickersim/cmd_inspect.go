package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dasje/cookie-clicker-simulator/internal/persistence/runlog"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <archive.run.zst>",
		Short: "Print an archived run's header and trailing events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("events")
			verify, _ := cmd.Flags().GetBool("verify")
			jsonOut, _ := cmd.Flags().GetBool("json")

			rec, err := runlog.Read(args[0])
			if err != nil {
				return err
			}
			if verify {
				if err := runlog.Verify(rec); err != nil {
					return fmt.Errorf("verify %s: %w", args[0], err)
				}
			}

			if jsonOut {
				payload := struct {
					Header   runlog.Header  `json:"header"`
					Tail     []engine.Event `json:"tail,omitempty"`
					Verified bool           `json:"verified"`
				}{rec.Header, tailEvents(rec.Events, n), verify}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			}

			h := rec.Header
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "run %s\n", h.RunID)
			fmt.Fprintf(w, "  created    %s\n", h.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(w, "  strategy   %s\n", h.Strategy)
			fmt.Fprintf(w, "  horizon    %s\n", humanize.CommafWithDigits(h.Horizon, 2))
			fmt.Fprintf(w, "  base rate  %s\n", humanize.CommafWithDigits(h.BaseRate, 2))
			fmt.Fprintf(w, "  catalog    %s\n", h.CatalogDigest)
			fmt.Fprintf(w, "  events     %d\n", h.Events)
			fmt.Fprintf(w, "  final      t=%s balance=%s lifetime=%s rate=%s\n",
				humanize.CommafWithDigits(h.Final.Elapsed, 2),
				humanize.CommafWithDigits(h.Final.Balance, 2),
				humanize.CommafWithDigits(h.Final.Total, 2),
				humanize.CommafWithDigits(h.Final.Rate, 2))
			if len(h.Purchases) > 0 {
				fmt.Fprintln(w, "  purchases")
				for _, pc := range h.Purchases {
					fmt.Fprintf(w, "    %s x%d\n", pc.Item, pc.Count)
				}
			}
			if verify {
				fmt.Fprintln(w, "  verified   ok")
			}

			tail := tailEvents(rec.Events, n)
			if len(tail) > 0 {
				fmt.Fprintf(w, "\nlast %d event(s):\n", len(tail))
				for _, ev := range tail {
					if ev.Item == "" {
						fmt.Fprintf(w, "  t=%-12.2f start\n", ev.Time)
						continue
					}
					fmt.Fprintf(w, "  t=%-12.2f buy %-24s cost=%s total=%s\n",
						ev.Time, ev.Item,
						humanize.CommafWithDigits(ev.Cost, 2),
						humanize.CommafWithDigits(ev.Total, 2))
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("events", 10, "How many trailing events to print (0 for none)")
	cmd.Flags().Bool("verify", false, "Recompute the history digest and fail on mismatch")
	return cmd
}

func tailEvents(events []engine.Event, n int) []engine.Event {
	if n <= 0 || len(events) == 0 {
		return nil
	}
	if n >= len(events) {
		return events
	}
	return events[len(events)-n:]
}
