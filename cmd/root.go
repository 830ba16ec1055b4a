package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tripcost/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "tripcost",
	Short:         "Trip cost prediction client",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults apply when empty")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
