package sim

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantxyz/stratsim/journal"
	"github.com/quantxyz/stratsim/market"
)

// recorder captures every callback in arrival order.
type recorder struct {
	inits    int
	finishes int
	calls    []string
	candles  []market.Bar

	onCandle func(rt *Runtime, bar market.Bar)
}

func (r *recorder) OnInit(rt *Runtime) {
	r.inits++
	r.calls = append(r.calls, "init")
}

func (r *recorder) OnCandle(rt *Runtime, bar market.Bar) {
	r.calls = append(r.calls, "candle")
	r.candles = append(r.candles, bar)
	if r.onCandle != nil {
		r.onCandle(rt, bar)
	}
}

func (r *recorder) OnOrder(rt *Runtime, o Order)             { r.calls = append(r.calls, "order") }
func (r *recorder) OnPosition(rt *Runtime, p Position)       { r.calls = append(r.calls, "position") }
func (r *recorder) OnEquity(rt *Runtime, e Equity)           { r.calls = append(r.calls, "equity") }
func (r *recorder) OnTradeRecord(rt *Runtime, x TradeRecord) { r.calls = append(r.calls, "trade") }

func (r *recorder) OnFinish(rt *Runtime) {
	r.finishes++
	r.calls = append(r.calls, "finish")
}

// producerFunc adapts a function to the Producer interface.
type producerFunc func(ctx context.Context, bus *Bus)

func (f producerFunc) Produce(ctx context.Context, bus *Bus) { f(ctx, bus) }

func barsProducer(bars ...market.Bar) producerFunc {
	return func(ctx context.Context, bus *Bus) {
		for _, b := range bars {
			if err := bus.Publish(CandleEvent(b)); err != nil {
				return
			}
		}
	}
}

func testParams() Params {
	p := defaultParams()
	p.Quiescence = 50 * time.Millisecond
	return p
}

func TestRuntimeSeedsStateAndFinishes(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	rt := NewRuntime(testParams(), rec, barsProducer(
		testBar(1, 100), testBar(2, 101), testBar(3, 102),
	))

	assert.Equal(t, StateStarting, rt.State())
	assert.NoError(t, rt.Run(context.Background()))

	assert.Equal(t, StateFinished, rt.State())
	assert.Equal(t, 1, rec.inits)
	assert.Equal(t, 1, rec.finishes)
	assert.Len(t, rec.candles, 3)
	assert.Equal(t, "finish", rec.calls[len(rec.calls)-1])

	// Bars were applied before each callback.
	assert.Len(t, rt.Context().Bars(testItem), 3)

	// Initial equity and a flat position are seeded for the configured item.
	eq, ok := rt.Context().LastEquity(testItem)
	assert.True(t, ok)
	assert.Equal(t, 4000.0, eq.Value)
	assert.Equal(t, 4000.0, eq.CashAvail)
	pos, ok := rt.Context().Position(testItem)
	assert.True(t, ok)
	assert.Zero(t, pos.Size)
}

func TestRuntimeClosedBusSkipsFinishCallback(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	rt := NewRuntime(testParams(), rec, producerFunc(func(ctx context.Context, bus *Bus) {
		_ = bus.Publish(CandleEvent(testBar(1, 100)))
		bus.Close()
	}))

	assert.NoError(t, rt.Run(context.Background()))

	assert.Equal(t, StateFinished, rt.State())
	assert.Len(t, rec.candles, 1)
	assert.Zero(t, rec.finishes)
}

func TestRuntimeCancelStopsDispatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	params := testParams()
	params.Quiescence = time.Hour

	rec := &recorder{}
	rt := NewRuntime(params, rec, producerFunc(func(ctx context.Context, bus *Bus) {
		<-ctx.Done()
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = rt.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not stop on context cancel")
	}

	assert.Equal(t, StateFinished, rt.State())
	assert.Zero(t, rec.finishes)
}

func TestRuntimeOrderEventsPrecedeNextCandle(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	rec.onCandle = func(rt *Runtime, bar market.Bar) {
		if bar.Timestamp == 1 {
			rt.Buy(bar.Item(), bar.Close, bar.Timestamp, 100)
		}
	}

	rt := NewRuntime(testParams(), rec, barsProducer(
		testBar(1, 100), testBar(2, 101),
	))
	assert.NoError(t, rt.Run(context.Background()))

	// Everything the first bar's order produced is dispatched before the
	// second bar, even though the second bar was already on the bus.
	want := []string{
		"init",
		"candle",
		"position", "trade", "order", "equity",
		"candle",
		"finish",
	}
	assert.Equal(t, want, rec.calls)
}

func TestRuntimeSynthesizesExactlyOneFinish(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	rt := NewRuntime(testParams(), rec, barsProducer(testBar(1, 100)))

	assert.NoError(t, rt.Run(context.Background()))
	assert.Equal(t, 1, rec.finishes)
}

func TestRuntimeJournalsTradesAndEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := journal.NewSQLite(filepath.Join(dir, "journal.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	rec := &recorder{}
	rec.onCandle = func(rt *Runtime, bar market.Bar) {
		switch bar.Timestamp {
		case 1:
			rt.Buy(bar.Item(), bar.Close, bar.Timestamp, 100)
		case 2:
			rt.Sell(bar.Item(), bar.Close, bar.Timestamp, 100)
		}
	}

	rt := NewRuntime(testParams(), rec, barsProducer(
		testBar(1, 100), testBar(2, 110),
	))
	rt.SetJournal(j)

	assert.NoError(t, rt.Run(context.Background()))

	// The flip on bar 2 closed the long opened on bar 1.
	trades, err := j.ListTradesClosedBetween(testItem, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, trades, 1)
	assert.Equal(t, SideBuy, trades[0].Side)
	assert.InDelta(t, 100.0, trades[0].PriceOpen, 1e-9)
	assert.InDelta(t, 110.0, trades[0].PriceClose, 1e-9)
	assert.NotEmpty(t, trades[0].ID)

	// One equity snapshot per fill.
	points, err := j.ListEquityBetween(testItem, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, points, 2)
}
