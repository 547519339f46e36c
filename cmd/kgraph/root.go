package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kgraph-ai/kgraph/internal/config"
	"github.com/kgraph-ai/kgraph/internal/observability"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kgraph",
	Short: "kgraph - knowledge-graph question answering",
	Long: `kgraph answers natural-language questions over a knowledge graph.

A question is translated into a graph query for the configured backend,
executed, and the result synthesised into a natural-language answer.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads configuration before any command runs. Commands that work
// without configuration skip it.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "init" {
		return nil
	}

	path := configFile
	if path == "" {
		path = defaultConfigPath()
	}

	loaded, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = observability.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	return nil
}

// defaultConfigPath returns ~/.kgraph/kgraph.yaml, falling back to the
// working directory when the home directory is unknown.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kgraph.yaml"
	}
	return filepath.Join(home, ".kgraph", "kgraph.yaml")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default ~/.kgraph/kgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
