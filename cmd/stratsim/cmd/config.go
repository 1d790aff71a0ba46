package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantxyz/stratsim/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default config file to get started",
	Long: `Write a default configuration to the given path. The format follows
the file extension: .yaml/.yml for YAML, anything else for JSON.

Example:
  stratsim config price-channel.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.SaveToFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
