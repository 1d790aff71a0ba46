package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantxyz/stratsim/feed"
	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/sim"
)

// Config represents the complete simulation configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Market   MarketConfig   `json:"market" yaml:"market"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Feed     FeedConfig     `json:"feed" yaml:"feed"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	Capital float64 `json:"capital" yaml:"capital"`
	FeeRate float64 `json:"fee_rate" yaml:"fee_rate"`
}

// MarketConfig names the instrument universe and the replay window,
// epoch milliseconds. End 0 means open-ended.
type MarketConfig struct {
	Symbols   []string `json:"symbols" yaml:"symbols"`
	Intervals []string `json:"intervals" yaml:"intervals"`
	Start     int64    `json:"start,omitempty" yaml:"start,omitempty"`
	End       int64    `json:"end,omitempty" yaml:"end,omitempty"`
}

// StrategyConfig contains strategy parameters
type StrategyConfig struct {
	Name       string  `json:"name" yaml:"name"`
	Window     int     `json:"window,omitempty" yaml:"window,omitempty"`
	ATRPeriod  int     `json:"atr_period,omitempty" yaml:"atr_period,omitempty"`
	FastPeriod int     `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod int     `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`
	ADXPeriod  int     `json:"adx_period,omitempty" yaml:"adx_period,omitempty"`
	QtyCap     float64 `json:"qty_cap,omitempty" yaml:"qty_cap,omitempty"`
}

// RiskConfig contains sizing and protective stop parameters
type RiskConfig struct {
	UsePercentOfEquity bool    `json:"use_percent_of_equity" yaml:"use_percent_of_equity"`
	PercentOfEquity    float64 `json:"percent_of_equity,omitempty" yaml:"percent_of_equity,omitempty"`
	PercentPerTrade    float64 `json:"percent_per_trade,omitempty" yaml:"percent_per_trade,omitempty"`

	StopLossEnabled   bool    `json:"stop_loss_enabled" yaml:"stop_loss_enabled"`
	StopLossATR       float64 `json:"stop_loss_atr,omitempty" yaml:"stop_loss_atr,omitempty"`
	TakeProfitEnabled bool    `json:"take_profit_enabled" yaml:"take_profit_enabled"`
	TakeProfitATR     float64 `json:"take_profit_atr,omitempty" yaml:"take_profit_atr,omitempty"`
}

// FeedConfig selects where candles come from
type FeedConfig struct {
	Mode       string `json:"mode" yaml:"mode"` // "history" or "live"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	LiveURL    string `json:"live_url,omitempty" yaml:"live_url,omitempty"`
	Quiescence string `json:"quiescence,omitempty" yaml:"quiescence,omitempty"` // e.g. "20s"
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns a runnable starting configuration.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Capital: 4000,
			FeeRate: 0.001,
		},
		Market: MarketConfig{
			Symbols:   []string{"BTCUSDT"},
			Intervals: []string{"1h"},
		},
		Strategy: StrategyConfig{
			Name:      "price-channel",
			Window:    20,
			ATRPeriod: 14,
			QtyCap:    100,
		},
		Risk: RiskConfig{
			PercentPerTrade: 0.025,
		},
		Feed: FeedConfig{
			Mode:       "history",
			DBPath:     "bars.db",
			Quiescence: "20s",
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Capital <= 0 {
		return fmt.Errorf("account.capital must be positive")
	}
	if c.Account.FeeRate < 0 || c.Account.FeeRate >= 1 {
		return fmt.Errorf("account.fee_rate must be in [0, 1)")
	}

	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols is required")
	}
	if len(c.Market.Intervals) == 0 {
		return fmt.Errorf("market.intervals is required")
	}
	for _, iv := range c.Market.Intervals {
		if !market.KnownInterval(iv) {
			return fmt.Errorf("unknown interval: %s", iv)
		}
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	if c.Risk.UsePercentOfEquity {
		if c.Risk.PercentOfEquity <= 0 || c.Risk.PercentOfEquity > 1 {
			return fmt.Errorf("risk.percent_of_equity must be in (0, 1]")
		}
	} else {
		if c.Risk.PercentPerTrade <= 0 || c.Risk.PercentPerTrade > 1 {
			return fmt.Errorf("risk.percent_per_trade must be in (0, 1]")
		}
	}

	switch c.Feed.Mode {
	case "history":
		if c.Feed.DBPath == "" {
			return fmt.Errorf("feed.db_path required for history mode")
		}
	case "live":
		if c.Feed.LiveURL == "" {
			return fmt.Errorf("feed.live_url required for live mode")
		}
	default:
		return fmt.Errorf("feed.mode must be 'history' or 'live'")
	}
	if c.Feed.Quiescence != "" {
		if _, err := time.ParseDuration(c.Feed.Quiescence); err != nil {
			return fmt.Errorf("feed.quiescence: %w", err)
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	return nil
}

// Params translates the configuration into simulation parameters.
func (c *Config) Params() sim.Params {
	p := sim.Params{
		Symbols:            c.Market.Symbols,
		Intervals:          c.Market.Intervals,
		InitialCapital:     c.Account.Capital,
		FeeRate:            c.Account.FeeRate,
		UsePercentOfEquity: c.Risk.UsePercentOfEquity,
		PercentOfEquity:    c.Risk.PercentOfEquity,
		PercentPerTrade:    c.Risk.PercentPerTrade,
		StopLossEnabled:    c.Risk.StopLossEnabled,
		StopLossATR:        c.Risk.StopLossATR,
		TakeProfitEnabled:  c.Risk.TakeProfitEnabled,
		TakeProfitATR:      c.Risk.TakeProfitATR,
	}

	if c.Feed.Quiescence != "" {
		if d, err := time.ParseDuration(c.Feed.Quiescence); err == nil {
			p.Quiescence = d
		}
	}
	return p
}

// Streams translates the configured universe into feed streams.
func (c *Config) Streams() []feed.Stream {
	out := make([]feed.Stream, 0, len(c.Market.Symbols)*len(c.Market.Intervals))
	for _, sym := range c.Market.Symbols {
		for _, iv := range c.Market.Intervals {
			out = append(out, feed.Stream{
				Symbol:   sym,
				Interval: iv,
				Start:    c.Market.Start,
				End:      c.Market.End,
			})
		}
	}
	return out
}
