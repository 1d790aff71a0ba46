package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/config"
	"github.com/quantxyz/stratsim/feed"
	"github.com/quantxyz/stratsim/internal/logger"
	"github.com/quantxyz/stratsim/journal"
	"github.com/quantxyz/stratsim/pkg/id"
	"github.com/quantxyz/stratsim/sim"
	"github.com/quantxyz/stratsim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a config file",
	Long: `Run a strategy simulation using settings from a configuration file.

The config file selects the instrument universe, the candle source
(SQLite history or a live websocket), the strategy, sizing and stop
rules, and the journal.

Example:
  stratsim run --config examples/configs/price-channel.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	j, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	producer, closeFeed, err := buildProducer(cfg, log)
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	defer closeFeed()

	handler, err := strategies.ByName(cfg.Strategy.Name, strategies.Config{
		Window:     cfg.Strategy.Window,
		ATRPeriod:  cfg.Strategy.ATRPeriod,
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
		ADXPeriod:  cfg.Strategy.ADXPeriod,
		QtyCap:     cfg.Strategy.QtyCap,
		Log:        log,
	})
	if err != nil {
		return err
	}

	params := cfg.Params()
	rt := sim.NewRuntime(params, handler, producer)
	rt.SetLogger(log)
	rt.SetJournal(j)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now().UnixMilli()
	log.Info("simulation starting",
		zap.String("strategy", cfg.Strategy.Name),
		zap.Strings("symbols", cfg.Market.Symbols),
		zap.Strings("intervals", cfg.Market.Intervals),
		zap.Float64("capital", cfg.Account.Capital))

	if err := rt.Run(ctx); err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}
	stoppedAt := time.Now().UnixMilli()

	summarize(rt, params, cfg, j, startedAt, stoppedAt, log)
	return nil
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func buildProducer(cfg *config.Config, log *zap.Logger) (sim.Producer, func(), error) {
	if cfg.Feed.Mode == "live" {
		lf := feed.NewLiveFeed(cfg.Feed.LiveURL, cfg.Streams(), log)
		return lf, func() {}, nil
	}

	store, err := feed.NewSQLiteStore(cfg.Feed.DBPath, log)
	if err != nil {
		return nil, nil, err
	}
	p := feed.NewHistoryProducer(store, cfg.Streams(), log)
	return p, func() { _ = store.Close() }, nil
}

// summarize logs per-item results and records the run when the journal is
// a SQLite store.
func summarize(rt *sim.Runtime, params sim.Params, cfg *config.Config, j journal.Journal, startedAt, stoppedAt int64, log *zap.Logger) {
	var trades int
	var netPnL float64

	for _, item := range params.Items() {
		var itemTrades int
		var itemPnL float64
		for _, rec := range rt.Context().TradeRecords(item) {
			if rec.IsOpen() {
				continue
			}
			itemTrades++
			itemPnL += rec.Size * (rec.PriceClose - rec.PriceOpen)
		}
		trades += itemTrades
		netPnL += itemPnL

		eq, ok := rt.Context().LastEquity(item)
		if !ok {
			continue
		}
		log.Info("item result",
			zap.String("item", item),
			zap.Int("closed_trades", itemTrades),
			zap.Float64("pnl", itemPnL),
			zap.Float64("equity", eq.Value),
			zap.Float64("cash_avail", eq.CashAvail))
	}

	log.Info("simulation finished",
		zap.Int("closed_trades", trades),
		zap.Float64("net_pnl", netPnL),
		zap.Duration("elapsed", time.Duration(stoppedAt-startedAt)*time.Millisecond))

	if sq, ok := j.(*journal.SQLite); ok {
		err := sq.RecordRun(journal.Run{
			ID:        id.New(),
			Strategy:  cfg.Strategy.Name,
			Items:     strings.Join(params.Items(), ","),
			Capital:   cfg.Account.Capital,
			StartedAt: startedAt,
			StoppedAt: stoppedAt,
			Trades:    trades,
			NetPnL:    netPnL,
		})
		if err != nil {
			log.Warn("record run", zap.Error(err))
		}
	}
}
