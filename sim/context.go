package sim

import "github.com/quantxyz/stratsim/market"

// Context holds all simulation state, keyed by item. It is owned and
// mutated exclusively by the dispatch goroutine, so no locking is needed.
//
// Bar, trade-record, and equity histories are append-only; only the tail
// trade record may be edited in place. Positions and ATR values are
// latest-wins.
type Context struct {
	bars      map[string][]market.Bar
	positions map[string]Position
	trades    map[string][]TradeRecord
	equities  map[string][]Equity
	atrs      map[string]float64
}

// NewContext returns an empty simulation context.
func NewContext() *Context {
	return &Context{
		bars:      make(map[string][]market.Bar),
		positions: make(map[string]Position),
		trades:    make(map[string][]TradeRecord),
		equities:  make(map[string][]Equity),
		atrs:      make(map[string]float64),
	}
}

// PushBar appends a bar to its item's history.
func (c *Context) PushBar(b market.Bar) {
	item := b.Item()
	c.bars[item] = append(c.bars[item], b)
}

// Bars returns the bar history for item. The returned slice is shared;
// callers must not mutate it.
func (c *Context) Bars(item string) []market.Bar {
	return c.bars[item]
}

// PushEquity appends an equity snapshot.
func (c *Context) PushEquity(e Equity) {
	c.equities[e.Item] = append(c.equities[e.Item], e)
}

// LastEquity returns the most recent equity snapshot for item.
func (c *Context) LastEquity(item string) (Equity, bool) {
	hist := c.equities[item]
	if len(hist) == 0 {
		return Equity{}, false
	}
	return hist[len(hist)-1], true
}

// Equities returns the full equity history for item.
func (c *Context) Equities(item string) []Equity {
	return c.equities[item]
}

// PushTradeRecord appends a trade record.
func (c *Context) PushTradeRecord(r TradeRecord) {
	c.trades[r.Item] = append(c.trades[r.Item], r)
}

// UpdateLastTradeRecord replaces the tail record of item's history. It is a
// no-op when the history is empty.
func (c *Context) UpdateLastTradeRecord(r TradeRecord) {
	hist := c.trades[r.Item]
	if len(hist) == 0 {
		return
	}
	hist[len(hist)-1] = r
}

// LastTradeRecord returns the tail trade record for item.
func (c *Context) LastTradeRecord(item string) (TradeRecord, bool) {
	hist := c.trades[item]
	if len(hist) == 0 {
		return TradeRecord{}, false
	}
	return hist[len(hist)-1], true
}

// TradeRecords returns the full trade-record history for item.
func (c *Context) TradeRecords(item string) []TradeRecord {
	return c.trades[item]
}

// SetPosition overwrites the current position for its item.
func (c *Context) SetPosition(p Position) {
	c.positions[p.Item] = p
}

// Position returns the current position for item.
func (c *Context) Position(item string) (Position, bool) {
	p, ok := c.positions[item]
	return p, ok
}

// SetATR caches the latest ATR value for item.
func (c *Context) SetATR(item string, atr float64) {
	c.atrs[item] = atr
}

// ATR returns the cached ATR for item.
func (c *Context) ATR(item string) (float64, bool) {
	v, ok := c.atrs[item]
	return v, ok
}
