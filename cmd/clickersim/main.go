package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dasje/cookie-clicker-simulator/internal/config"
	"github.com/dasje/cookie-clicker-simulator/internal/logging"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clickersim",
		Short: "Incremental-game purchase strategy simulator",
		Long: `clickersim runs idle-game economies to a fixed horizon: a catalog of
purchasable items, a balance accruing at the current production rate,
and a pluggable strategy deciding what to buy next.

Runs can be archived, indexed into a results database, rendered as
comparison charts, or streamed live over a websocket.`,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to sim.yaml (built-in defaults when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: error, warn, info, debug")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for tooling consumption)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newRenderCmd(),
		newInspectCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "clickersim version %s\n", version)
			}
		},
	}
}

// loadConfig resolves the --config flag. An empty flag means built-in
// defaults rather than an error, so the tool works out of the box.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.New(catalog.ClassicItems())
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func newRootLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.NewLogger(level, os.Stderr)
}
