package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantxyz/stratsim/market"
)

func testBars() []market.Bar {
	return []market.Bar{
		{High: 105, Low: 99, Close: 102},
		{High: 107, Low: 101, Close: 105},
		{High: 108, Low: 104, Close: 106},
		{High: 110, Low: 105, Close: 108},
		{High: 112, Low: 107, Close: 110},
	}
}

func TestSimpleMAStreaming(t *testing.T) {
	t.Parallel()

	bars := testBars()

	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(bars[0])
	assert.False(t, ma.Ready())

	ma.Update(bars[1])
	assert.False(t, ma.Ready())

	ma.Update(bars[2])
	assert.True(t, ma.Ready())
	assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 1e-9)

	// The window slides to the last 3 closes.
	ma.Update(bars[3])
	assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 1e-9)
}

func TestSimpleMAReset(t *testing.T) {
	t.Parallel()

	bars := testBars()

	ma := NewMA(2)
	ma.Update(bars[0])
	ma.Update(bars[1])
	assert.True(t, ma.Ready())

	ma.Reset()
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())
}

func TestExponentialMAStreamingMatchesBatch(t *testing.T) {
	t.Parallel()

	bars := testBars()

	ema := NewEMA(3)
	assert.Equal(t, "EMA(3)", ema.Name())
	assert.Equal(t, 1, ema.Warmup())
	assert.False(t, ema.Ready())

	// First value equals the first close.
	ema.Update(bars[0])
	assert.True(t, ema.Ready())
	assert.InDelta(t, 102.0, ema.Value(), 1e-9)

	for _, b := range bars[1:] {
		ema.Update(b)
	}

	batch := EMA(Closes(bars), 3)
	assert.InDelta(t, batch[len(batch)-1], ema.Value(), 1e-9)
}

func TestATRStreamMatchesBatch(t *testing.T) {
	t.Parallel()

	bars := testBars()

	atr := NewATR(3)
	assert.Equal(t, "ATR(3)", atr.Name())
	assert.Equal(t, 4, atr.Warmup())

	for i, b := range bars {
		atr.Update(b)
		if i < 3 {
			assert.False(t, atr.Ready(), "bar %d", i)
			assert.Equal(t, 0.0, atr.Value())
		}
	}
	assert.True(t, atr.Ready())

	batch := ATR(bars, 3)
	assert.InDelta(t, batch[len(batch)-1], atr.Value(), 1e-9)
}

func TestATRStreamReset(t *testing.T) {
	t.Parallel()

	atr := NewATR(2)
	for _, b := range testBars() {
		atr.Update(b)
	}
	assert.True(t, atr.Ready())

	atr.Reset()
	assert.False(t, atr.Ready())
	assert.Equal(t, 0.0, atr.Value())
}

func TestADXWarmupAndRange(t *testing.T) {
	t.Parallel()

	// Trending series with expanding highs.
	bars := []market.Bar{
		{High: 100, Low: 95, Close: 98},
		{High: 102, Low: 97, Close: 101},
		{High: 104, Low: 99, Close: 103},
		{High: 106, Low: 101, Close: 105},
		{High: 108, Low: 103, Close: 107},
		{High: 110, Low: 105, Close: 109},
		{High: 112, Low: 107, Close: 111},
	}

	adx := NewADX(2)

	var readyAt int
	for i, b := range bars {
		_, ok := adx.Update(b)
		if ok && readyAt == 0 {
			readyAt = i + 1
		}
	}

	// Ready after 2*Period+1 bars.
	assert.Equal(t, 5, readyAt)
	assert.True(t, adx.Ready())
	assert.GreaterOrEqual(t, adx.Value(), 0.0)
	assert.LessOrEqual(t, adx.Value(), 100.0)
}
