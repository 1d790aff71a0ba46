package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	yml := `
account:
  capital: 5000
  fee_rate: 0.001
market:
  symbols: [BTCUSDT, ETHUSDT]
  intervals: [1h, 4h]
  start: 1700000000000
strategy:
  name: price-channel
  window: 10
  atr_period: 7
  qty_cap: 100
risk:
  use_percent_of_equity: true
  percent_of_equity: 0.1
  stop_loss_enabled: true
  stop_loss_atr: 2
feed:
  mode: history
  db_path: bars.db
  quiescence: 5s
journal:
  type: sqlite
  db_path: journal.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := LoadFromFile(path)
	assert.NoError(t, err)

	assert.Equal(t, 5000.0, cfg.Account.Capital)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Market.Symbols)
	assert.Equal(t, "price-channel", cfg.Strategy.Name)
	assert.True(t, cfg.Risk.UsePercentOfEquity)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	params := cfg.Params()
	assert.Equal(t, 5*time.Second, params.Quiescence)
	assert.Len(t, params.Items(), 4)
	assert.True(t, params.StopLossEnabled)
	assert.Equal(t, 2.0, params.StopLossATR)

	streams := cfg.Streams()
	assert.Len(t, streams, 4)
	assert.Equal(t, int64(1700000000000), streams[0].Start)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	assert.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg.Account.Capital, got.Account.Capital)
	assert.Equal(t, cfg.Strategy.Name, got.Strategy.Name)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Account.Capital = 0 }},
		{"fee too high", func(c *Config) { c.Account.FeeRate = 1 }},
		{"no symbols", func(c *Config) { c.Market.Symbols = nil }},
		{"no intervals", func(c *Config) { c.Market.Intervals = nil }},
		{"bad interval", func(c *Config) { c.Market.Intervals = []string{"7m"} }},
		{"no strategy", func(c *Config) { c.Strategy.Name = "" }},
		{"bad fraction", func(c *Config) { c.Risk.PercentPerTrade = 1.5 }},
		{"equity mode no fraction", func(c *Config) {
			c.Risk.UsePercentOfEquity = true
			c.Risk.PercentOfEquity = 0
		}},
		{"bad feed mode", func(c *Config) { c.Feed.Mode = "replay" }},
		{"history without db", func(c *Config) { c.Feed.DBPath = "" }},
		{"live without url", func(c *Config) {
			c.Feed.Mode = "live"
			c.Feed.LiveURL = ""
		}},
		{"bad quiescence", func(c *Config) { c.Feed.Quiescence = "soon" }},
		{"csv without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"sqlite without db", func(c *Config) { c.Journal.Type = "sqlite" }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
