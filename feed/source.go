// Package feed supplies candle events to the simulation bus, either from
// a historical bar store or from a live exchange stream.
package feed

import (
	"context"

	"github.com/quantxyz/stratsim/market"
)

// A Stream names one candle series to feed: a symbol at an interval, with
// an optional fetch window in epoch milliseconds. End <= Start means an
// open-ended window.
type Stream struct {
	Symbol   string
	Interval string
	Start    int64
	End      int64
}

// BarSource hands out stored bars for one stream, ordered by timestamp.
type BarSource interface {
	Bars(ctx context.Context, s Stream) ([]market.Bar, error)
	Close() error
}
