package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/sim"
)

// HistoryProducer replays stored bars onto the bus, one goroutine per
// stream. The most recent stored bar of each stream is withheld since it
// may still be forming.
type HistoryProducer struct {
	src     BarSource
	streams []Stream
	log     *zap.Logger
}

func NewHistoryProducer(src BarSource, streams []Stream, log *zap.Logger) *HistoryProducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryProducer{src: src, streams: streams, log: log}
}

// Produce publishes every stream's bars and returns once all streams are
// exhausted. A stream whose fetch fails is logged and skipped; the other
// streams keep going.
func (p *HistoryProducer) Produce(ctx context.Context, bus *sim.Bus) {
	var wg sync.WaitGroup
	for _, s := range p.streams {
		if !market.KnownInterval(s.Interval) {
			p.log.Warn("skipping stream with unknown interval",
				zap.String("symbol", s.Symbol),
				zap.String("interval", s.Interval))
			continue
		}

		wg.Add(1)
		go func(s Stream) {
			defer wg.Done()
			p.produceStream(ctx, bus, s)
		}(s)
	}
	wg.Wait()
}

func (p *HistoryProducer) produceStream(ctx context.Context, bus *sim.Bus, s Stream) {
	item := market.Item(s.Symbol, s.Interval)

	bars, err := p.src.Bars(ctx, s)
	if err != nil {
		p.log.Warn("bar fetch failed, stream produces nothing",
			zap.String("item", item), zap.Error(err))
		return
	}
	if len(bars) == 0 {
		p.log.Info("no bars in window", zap.String("item", item))
		return
	}

	// The newest bar may still be open.
	bars = bars[:len(bars)-1]

	published := 0
	for _, b := range bars {
		if ctx.Err() != nil {
			return
		}
		if err := bus.Publish(sim.CandleEvent(b)); err != nil {
			p.log.Info("bus closed mid-stream",
				zap.String("item", item), zap.Int("published", published))
			return
		}
		published++
	}

	p.log.Info("stream exhausted",
		zap.String("item", item), zap.Int("published", published))
}
