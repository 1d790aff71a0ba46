package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextAbsentLookups(t *testing.T) {
	t.Parallel()

	c := NewContext()

	assert.Empty(t, c.Bars("BTCUSDT_1h"))

	_, ok := c.LastEquity("BTCUSDT_1h")
	assert.False(t, ok)

	_, ok = c.LastTradeRecord("BTCUSDT_1h")
	assert.False(t, ok)

	_, ok = c.Position("BTCUSDT_1h")
	assert.False(t, ok)

	_, ok = c.ATR("BTCUSDT_1h")
	assert.False(t, ok)
}

func TestContextBarsAppendPerItem(t *testing.T) {
	t.Parallel()

	c := NewContext()
	c.PushBar(testBar(1, 100))
	c.PushBar(testBar(2, 101))

	bars := c.Bars("BTCUSDT_1h")
	assert.Len(t, bars, 2)
	assert.Equal(t, int64(1), bars[0].Timestamp)
	assert.Equal(t, int64(2), bars[1].Timestamp)

	assert.Empty(t, c.Bars("ETHUSDT_1h"))
}

func TestContextEquityHistory(t *testing.T) {
	t.Parallel()

	c := NewContext()
	c.PushEquity(Equity{Item: "X", Value: 1})
	c.PushEquity(Equity{Item: "X", Value: 2})

	last, ok := c.LastEquity("X")
	assert.True(t, ok)
	assert.Equal(t, 2.0, last.Value)
	assert.Len(t, c.Equities("X"), 2)
}

func TestContextUpdateLastTradeRecord(t *testing.T) {
	t.Parallel()

	c := NewContext()

	// Editing an empty history is a no-op.
	c.UpdateLastTradeRecord(TradeRecord{Item: "X", Size: 9})
	assert.Empty(t, c.TradeRecords("X"))

	c.PushTradeRecord(TradeRecord{Item: "X", Side: SideBuy, Size: 1})
	c.PushTradeRecord(TradeRecord{Item: "X", Side: SideBuy, Size: 2})

	c.UpdateLastTradeRecord(TradeRecord{Item: "X", Side: SideBuy, Size: 5})

	recs := c.TradeRecords("X")
	assert.Len(t, recs, 2)
	assert.Equal(t, 1.0, recs[0].Size)
	assert.Equal(t, 5.0, recs[1].Size)
}

func TestContextPositionLatestWins(t *testing.T) {
	t.Parallel()

	c := NewContext()
	c.SetPosition(Position{Item: "X", Size: 1})
	c.SetPosition(Position{Item: "X", Size: -2})

	p, ok := c.Position("X")
	assert.True(t, ok)
	assert.Equal(t, -2.0, p.Size)
}

func TestContextATR(t *testing.T) {
	t.Parallel()

	c := NewContext()
	c.SetATR("X", 1.5)
	c.SetATR("X", 2.5)

	v, ok := c.ATR("X")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestTradeRecordIsOpen(t *testing.T) {
	t.Parallel()

	assert.True(t, TradeRecord{TimeOpen: 1}.IsOpen())
	assert.False(t, TradeRecord{TimeOpen: 1, TimeClose: 2}.IsOpen())
}
