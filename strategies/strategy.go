package strategies

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/sim"
)

// Config carries the knobs shared across the built-in strategies. Each
// strategy reads only the fields it cares about.
type Config struct {
	// Channel breakout window and ATR period for price-channel.
	Window    int
	ATRPeriod int

	// EMA periods for the ema-cross variants, plus the ADX period for
	// the filtered one.
	FastPeriod int
	SlowPeriod int
	ADXPeriod  int

	// QtyCap bounds the margin committed per order, in quote units.
	// Zero means no cap.
	QtyCap float64

	Log *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// ByName builds one of the built-in strategies.
func ByName(name string, cfg Config) (sim.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "price-channel", "pricechannel":
		return NewPriceChannel(cfg), nil

	case "ema-cross", "emacross":
		return NewEMACross(cfg), nil

	case "ema-cross-adx", "emacrossadx":
		return NewEMACrossADX(cfg), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, price-channel, ema-cross, ema-cross-adx)", name)
	}
}
