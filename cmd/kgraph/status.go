package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph-ai/kgraph/internal/llm"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend and completion provider health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	completer, err := llm.NewCompleter(cfg.LLM.ToProviderConfig())
	if err != nil {
		return err
	}

	registry := llm.NewRegistry()
	if err := registry.Register(completer); err != nil {
		return err
	}

	backendHealth := store.Health(ctx)
	providerHealth := registry.Health(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "backend (%s):  %s - %s\n", store.Kind(), backendHealth.State, backendHealth.Message)
	fmt.Fprintf(out, "llm providers: %s - %s\n", providerHealth.State, providerHealth.Message)

	if !backendHealth.IsHealthy() || !providerHealth.IsHealthy() {
		return fmt.Errorf("one or more components unhealthy")
	}
	return nil
}
