// Package market defines the bar data model shared by feeds, the
// simulation core, and strategies.
package market

import "strconv"

// Bar is one OHLCV sample for an instrument at a given interval.
// Identity is (Symbol, Interval, Timestamp); bars are immutable once
// emitted.
type Bar struct {
	Symbol    string
	Interval  string
	Timestamp int64 // milliseconds since epoch
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Item returns the composite stream key for the bar, e.g. "BTCUSDT_1d".
func (b Bar) Item() string {
	return Item(b.Symbol, b.Interval)
}

// Item builds the composite key for one (symbol, interval) stream.
func Item(symbol, interval string) string {
	return symbol + "_" + interval
}

// Intervals is the set of bar intervals the feeds understand.
var Intervals = []string{
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "8h", "12h",
	"1d", "3d", "1w", "1M",
}

// KnownInterval reports whether iv is a supported bar interval.
func KnownInterval(iv string) bool {
	for _, known := range Intervals {
		if iv == known {
			return true
		}
	}
	return false
}

// NormalizeMillis converts second-resolution timestamps to milliseconds.
// Resolution is detected by decimal digit count: ten digits is seconds,
// anything else is assumed to already be milliseconds.
func NormalizeMillis(ts int64) int64 {
	if ts > 0 && len(strconv.FormatInt(ts, 10)) == 10 {
		return ts * 1000
	}
	return ts
}
