package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stratsim",
	Short: "An event-driven multi-instrument strategy simulator",
	Long: `Stratsim replays stored candle history (or a live exchange stream)
through an event bus, executes strategy orders against a simulated
account, and journals the resulting trades and equity curve.

It provides tools for:
  - Backtesting strategies over SQLite candle stores
  - Driving the same strategies from live kline websockets
  - Journaling trades and equity to CSV or SQLite
  - ATR-based stop-loss and take-profit levels`,
}

var debug bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose development logging")
}
