package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dasje/cookie-clicker-simulator/internal/persistence/resultdb"
	"github.com/dasje/cookie-clicker-simulator/internal/persistence/runlog"
	"github.com/dasje/cookie-clicker-simulator/internal/report"
)

type renderInput struct {
	Strategy string
	RunID    string
	Points   []report.Point
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [archive.run.zst | archive-dir]...",
		Short: "Render runs as an HTML comparison chart",
		Long: `render plots lifetime total against time for one or more runs.
Runs come from .run.zst archives given as arguments (directories are
expanded) or from a results database via --db.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dbPath, _ := cmd.Flags().GetString("db")
			runIDs, _ := cmd.Flags().GetStringSlice("run")
			outPath, _ := cmd.Flags().GetString("out")
			csvPath, _ := cmd.Flags().GetString("csv")
			title, _ := cmd.Flags().GetString("title")

			// The configured chart directory applies when --out is left at
			// its default.
			if !cmd.Flags().Changed("out") && cfg.Output.ChartDir != "" {
				if err := os.MkdirAll(cfg.Output.ChartDir, 0o755); err != nil {
					return err
				}
				outPath = filepath.Join(cfg.Output.ChartDir, outPath)
			}

			if len(args) == 0 && dbPath == "" {
				return fmt.Errorf("nothing to render: pass archives or --db")
			}

			var inputs []renderInput
			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					return err
				}
				paths := []string{arg}
				if info.IsDir() {
					paths, err = runlog.List(arg)
					if err != nil {
						return err
					}
				}
				for _, p := range paths {
					rec, err := runlog.Read(p)
					if err != nil {
						return fmt.Errorf("read %s: %w", p, err)
					}
					inputs = append(inputs, renderInput{
						Strategy: rec.Header.Strategy,
						RunID:    rec.Header.RunID,
						Points:   report.Points(rec.Events),
					})
				}
			}

			if dbPath != "" {
				db, err := resultdb.Open(dbPath)
				if err != nil {
					return fmt.Errorf("open results db: %w", err)
				}
				defer db.Close()
				runs, err := db.ListRuns()
				if err != nil {
					return err
				}
				keep := map[string]bool{}
				for _, id := range runIDs {
					keep[id] = true
				}
				for _, r := range runs {
					if len(keep) > 0 && !keep[r.RunID] {
						continue
					}
					pts, err := db.Points(r.RunID)
					if err != nil {
						return err
					}
					inputs = append(inputs, renderInput{Strategy: r.Strategy, RunID: r.RunID, Points: pts})
				}
			}

			if len(inputs) == 0 {
				return fmt.Errorf("no runs matched")
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			series := buildSeries(inputs)
			if err := report.RenderChart(f, title, series); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d series)\n", outPath, len(series))

			if csvPath != "" {
				cf, err := os.Create(csvPath)
				if err != nil {
					return err
				}
				defer cf.Close()
				if err := report.WriteCSV(cf, series); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "Read runs from this results database instead of archives")
	cmd.Flags().StringSlice("run", nil, "Run id to include from --db, repeatable (default: all)")
	cmd.Flags().String("out", "chart.html", "Output HTML path")
	cmd.Flags().String("csv", "", "Also write the plotted points as CSV to this path")
	cmd.Flags().String("title", "strategy comparison", "Chart title")
	return cmd
}

// buildSeries names each series by strategy, falling back to a short
// run id suffix when the same strategy appears more than once.
func buildSeries(inputs []renderInput) []report.Series {
	count := map[string]int{}
	for _, in := range inputs {
		count[in.Strategy]++
	}
	out := make([]report.Series, 0, len(inputs))
	for _, in := range inputs {
		name := in.Strategy
		if count[in.Strategy] > 1 {
			id := in.RunID
			if len(id) > 8 {
				id = id[:8]
			}
			name = fmt.Sprintf("%s (%s)", in.Strategy, id)
		}
		out = append(out, report.Series{Name: name, Points: in.Points})
	}
	return out
}
