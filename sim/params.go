package sim

import "time"

// DefaultQuiescence is how long the dispatch loop waits with no events
// before it concludes the stream has ended.
const DefaultQuiescence = 20 * time.Second

// Params configures one simulation run.
type Params struct {
	// Instrument universe: one event stream per symbol × interval.
	Symbols   []string
	Intervals []string

	InitialCapital float64
	FeeRate        float64

	// Position sizing: every order commits a fixed fraction of either the
	// initial capital or the item's current equity.
	UsePercentOfEquity bool
	PercentOfEquity    float64
	PercentPerTrade    float64

	// Stop-loss / take-profit levels as ATR multiples off the average
	// entry price. Applied only once an ATR has been cached for the item.
	StopLossEnabled   bool
	StopLossATR       float64
	TakeProfitEnabled bool
	TakeProfitATR     float64

	// Quiescence falls back to DefaultQuiescence when zero.
	Quiescence time.Duration
}

// Items enumerates the configured (symbol, interval) stream keys.
func (p Params) Items() []string {
	items := make([]string, 0, len(p.Symbols)*len(p.Intervals))
	for _, sym := range p.Symbols {
		for _, iv := range p.Intervals {
			items = append(items, sym+"_"+iv)
		}
	}
	return items
}

func (p Params) quiescence() time.Duration {
	if p.Quiescence <= 0 {
		return DefaultQuiescence
	}
	return p.Quiescence
}
