package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var asyncMode bool

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a natural-language question over the knowledge graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&asyncMode, "async", false, "run the query on a background goroutine")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx := cmd.Context()

	if cfg.Engine.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Engine.QueryTimeout)
		defer cancel()
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	var answer string
	if asyncMode {
		result := <-rt.engine.QueryAsync(ctx, question)
		if result.Err != nil {
			return result.Err
		}
		answer = result.Answer
	} else {
		answer, err = rt.engine.Query(ctx, question)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

var generateCmd = &cobra.Command{
	Use:   "generate <question>",
	Short: "Translate a question into a graph query without executing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close(context.Background())

		generated, err := rt.engine.GenerateQuery(cmd.Context(), question)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), generated)
		return nil
	},
}
