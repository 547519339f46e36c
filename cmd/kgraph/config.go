package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kgraph-ai/kgraph/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kgraph configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = defaultConfigPath()
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return err
		}

		if err := config.Write(config.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Backend.Neo4j.Password != "" {
			shown.Backend.Neo4j.Password = "[REDACTED]"
		}
		if shown.LLM.APIKey != "" {
			shown.LLM.APIKey = "[REDACTED]"
		}

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		cmd.OutOrStdout().Write(data)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
