package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dasje/cookie-clicker-simulator/internal/persistence/resultdb"
	"github.com/dasje/cookie-clicker-simulator/internal/persistence/runlog"
	"github.com/dasje/cookie-clicker-simulator/internal/report"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/strategy"
)

type runSummary struct {
	RunID     string  `json:"run_id"`
	Strategy  string  `json:"strategy"`
	Horizon   float64 `json:"horizon"`
	Events    int     `json:"events"`
	Purchases int     `json:"purchases"`
	Balance   float64 `json:"balance"`
	Total     float64 `json:"total"`
	Rate      float64 `json:"rate"`
	Archive   string  `json:"archive,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one run per strategy and print a comparison",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("horizon") {
				cfg.Horizon, _ = cmd.Flags().GetFloat64("horizon")
			}
			if cmd.Flags().Changed("base-rate") {
				cfg.BaseRate, _ = cmd.Flags().GetFloat64("base-rate")
			}
			if cmd.Flags().Changed("catalog") {
				cfg.CatalogPath, _ = cmd.Flags().GetString("catalog")
			}
			if cmd.Flags().Changed("strategy") {
				cfg.Strategies, _ = cmd.Flags().GetStringSlice("strategy")
			}
			if cmd.Flags().Changed("archive-dir") {
				cfg.Output.ArchiveDir, _ = cmd.Flags().GetString("archive-dir")
			}
			if cmd.Flags().Changed("db") {
				cfg.Output.ResultsDB, _ = cmd.Flags().GetString("db")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			tally, _ := cmd.Flags().GetBool("tally")

			log := newRootLogger(cmd)
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			var db *resultdb.DB
			if cfg.Output.ResultsDB != "" {
				db, err = resultdb.Open(cfg.Output.ResultsDB)
				if err != nil {
					return fmt.Errorf("open results db: %w", err)
				}
				defer db.Close()
			}

			summaries := make([]runSummary, 0, len(cfg.Strategies))
			tallies := make([][]report.ItemCount, 0, len(cfg.Strategies))
			for _, name := range cfg.Strategies {
				strat, err := strategy.ByName(name)
				if err != nil {
					return err
				}
				runID := uuid.NewString()
				st, err := engine.SimulateWithOptions(cat, cfg.Horizon, strat, engine.Options{BaseRate: cfg.BaseRate})
				if err != nil {
					return fmt.Errorf("run %s: %w", name, err)
				}
				rec := runlog.NewRecord(runID, name, cfg.Horizon, cfg.BaseRate, cat.Digest(), st)

				archivePath := ""
				if cfg.Output.ArchiveDir != "" {
					archivePath = filepath.Join(cfg.Output.ArchiveDir, runID+runlog.Ext)
					if err := runlog.Write(archivePath, rec); err != nil {
						return fmt.Errorf("write archive: %w", err)
					}
					log.Debug("archived run", "run_id", runID, "path", archivePath)
				}
				if db != nil {
					if err := db.InsertRun(resultdb.RunFromRecord(rec, archivePath), rec.Events); err != nil {
						return fmt.Errorf("index run: %w", err)
					}
				}

				history := st.History()
				summaries = append(summaries, runSummary{
					RunID:     runID,
					Strategy:  name,
					Horizon:   cfg.Horizon,
					Events:    len(history),
					Purchases: len(history) - 1,
					Balance:   st.Balance(),
					Total:     st.LifetimeTotal(),
					Rate:      st.Rate(),
					Archive:   archivePath,
				})
				tallies = append(tallies, report.PurchaseCounts(history))
				log.Info("run complete", "run_id", runID, "strategy", name,
					"purchases", len(history)-1, "total", st.LifetimeTotal())
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Horizon %s, base rate %s, %d item(s)\n\n",
				humanize.CommafWithDigits(cfg.Horizon, 2),
				humanize.CommafWithDigits(cfg.BaseRate, 2),
				len(cat.Items()))
			fmt.Fprintf(out, "%-12s %9s %16s %20s %14s %-8s\n",
				"Strategy", "Buys", "Balance", "Lifetime", "Rate", "Run")
			fmt.Fprintln(out, strings.Repeat("-", 84))
			for _, s := range summaries {
				shortID := s.RunID
				if len(shortID) > 8 {
					shortID = shortID[:8]
				}
				fmt.Fprintf(out, "%-12s %9d %16s %20s %14s %-8s\n",
					s.Strategy,
					s.Purchases,
					humanize.CommafWithDigits(s.Balance, 2),
					humanize.CommafWithDigits(s.Total, 2),
					humanize.CommafWithDigits(s.Rate, 2),
					shortID,
				)
			}
			if tally {
				for i, s := range summaries {
					fmt.Fprintf(out, "\n%s bought:\n", s.Strategy)
					for _, pc := range tallies[i] {
						fmt.Fprintf(out, "  %s x%d\n", pc.Item, pc.Count)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64("horizon", 0, "Run length in seconds (overrides config)")
	cmd.Flags().Float64("base-rate", 0, "Base production rate (overrides config)")
	cmd.Flags().String("catalog", "", "Catalog JSON path (overrides config)")
	cmd.Flags().StringSlice("strategy", nil,
		fmt.Sprintf("Strategy to run, repeatable: %s, or always:<item> (overrides config)",
			strings.Join(strategy.Names(), ", ")))
	cmd.Flags().String("archive-dir", "", "Write one .run.zst archive per run into this directory")
	cmd.Flags().String("db", "", "Index runs into this SQLite results database")
	cmd.Flags().Bool("tally", false, "Print the per-item purchase tally for each run")
	return cmd
}
