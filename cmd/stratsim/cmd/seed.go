package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/feed"
	"github.com/quantxyz/stratsim/internal/logger"
	"github.com/quantxyz/stratsim/market"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load candle CSV files into the bar store",
	Long: `Load a CSV of candles into the SQLite bar store used by history mode.

Rows are: timestamp,open,high,low,close,volume
where timestamp is epoch milliseconds (or seconds; both are accepted).
A header row is allowed. Prices are stored as-is without float
round-tripping.

Example:
  stratsim seed --db bars.db --symbol BTCUSDT --interval 1h btcusdt_1h.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

var (
	seedDBPath   string
	seedSymbol   string
	seedInterval string
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedDBPath, "db", "bars.db", "bar store path")
	seedCmd.Flags().StringVar(&seedSymbol, "symbol", "", "instrument symbol (required)")
	seedCmd.Flags().StringVar(&seedInterval, "interval", "", "candle interval, e.g. 1h (required)")
	seedCmd.MarkFlagRequired("symbol")
	seedCmd.MarkFlagRequired("interval")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if !market.KnownInterval(seedInterval) {
		return fmt.Errorf("unknown interval: %s", seedInterval)
	}

	log, err := logger.New(debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	store, err := feed.NewSQLiteStore(seedDBPath, log)
	if err != nil {
		return fmt.Errorf("open bar store: %w", err)
	}
	defer store.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var inserted, skipped int
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "timestamp") {
				continue
			}
		}

		if len(row) < 6 {
			skipped++
			continue
		}

		ts, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			log.Warn("skipping row with bad timestamp", zap.String("value", row[0]))
			skipped++
			continue
		}

		err = store.SeedRaw(cmd.Context(), seedSymbol, seedInterval, ts,
			strings.TrimSpace(row[1]),
			strings.TrimSpace(row[2]),
			strings.TrimSpace(row[3]),
			strings.TrimSpace(row[4]),
			strings.TrimSpace(row[5]))
		if err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
		inserted++
	}

	log.Info("seed complete",
		zap.String("item", market.Item(seedSymbol, seedInterval)),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped))
	return nil
}
