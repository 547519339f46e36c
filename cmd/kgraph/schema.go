package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshSchema bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the backend graph schema",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&refreshSchema, "refresh", false, "re-introspect the backend instead of using the cached schema")
}

func runSchema(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	schema := rt.engine.Schema()
	if refreshSchema {
		schema, err = rt.engine.RefreshSchema(cmd.Context())
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), schema)
	return nil
}
