package sim

import (
	"go.uber.org/zap"
)

// Engine executes fills against the simulation context. Submit runs
// synchronously on the dispatch goroutine: it mutates the context in place
// and hands the resulting events to emit, so the latest equity snapshot is
// always the basis for the next order's cash check.
type Engine struct {
	params  Params
	ctx     *Context
	emit    func(Event)
	onClose func(TradeRecord)
	log     *zap.Logger
}

// NewEngine wires an execution engine to a context and an event sink.
func NewEngine(params Params, ctx *Context, emit func(Event), log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{params: params, ctx: ctx, emit: emit, log: log}
}

// SetTradeClosedFunc registers an optional hook invoked with each trade
// record the engine closes.
func (e *Engine) SetTradeClosedFunc(fn func(TradeRecord)) {
	e.onClose = fn
}

// Buy submits a long fill request. qtyCap, when positive and below the
// configured order size, caps the committed margin.
func (e *Engine) Buy(item string, price float64, ts int64, qtyCap float64) {
	e.submit(item, price, ts, qtyCap, +1)
}

// Sell submits a short fill request with the same sizing rules as Buy.
func (e *Engine) Sell(item string, price float64, ts int64, qtyCap float64) {
	e.submit(item, price, ts, qtyCap, -1)
}

// submit sizes the order, checks funds, and reconciles position, trade
// record, and equity state. A request whose margin plus fee would exceed
// available cash is dropped silently: no state change, no events.
func (e *Engine) submit(item string, price float64, ts int64, qtyCap float64, sign float64) {
	if price <= 0 {
		e.log.Warn("order rejected: non-positive price",
			zap.String("item", item), zap.Float64("price", price))
		return
	}

	lastEq, ok := e.ctx.LastEquity(item)
	if !ok {
		lastEq = Equity{
			Item:      item,
			Timestamp: ts,
			Value:     e.params.InitialCapital,
			CashAvail: e.params.InitialCapital,
		}
	}

	margin := e.orderMargin(lastEq)
	if qtyCap > 0 && qtyCap < margin {
		margin = qtyCap
	}

	fee := margin * e.params.FeeRate
	if margin+fee >= lastEq.CashAvail {
		return
	}

	qty := sign * margin / price
	order := Order{Item: item, Price: price, Qty: qty, Timestamp: ts}

	e.applyPosition(order)
	e.applyTradeRecord(order)
	e.emit(orderEvent(order))

	eq := Equity{
		Item:        item,
		Timestamp:   ts,
		Value:       lastEq.Value - fee,
		CloseLatest: price,
		PosSize:     qty,
		CashAvail:   lastEq.CashAvail - margin - fee,
	}
	if lastEq.PosSize*qty > 0 {
		eq.PosSize = lastEq.PosSize + qty
	}
	e.ctx.PushEquity(eq)
	e.emit(equityEvent(eq))
}

// orderMargin returns the capital committed to one order before fees.
func (e *Engine) orderMargin(lastEq Equity) float64 {
	if e.params.UsePercentOfEquity {
		return lastEq.Value * e.params.PercentOfEquity
	}
	return e.params.InitialCapital * e.params.PercentPerTrade
}

// applyPosition reconciles the item's position with the fill. A same-sign
// fill accumulates size at the size-weighted average price; an opposite-sign
// fill replaces size and price with the fill's own values rather than
// netting against the prior size.
func (e *Engine) applyPosition(o Order) {
	pos := Position{
		Item:      o.Item,
		Size:      o.Qty,
		Price:     o.Price,
		Highest:   o.Price,
		Lowest:    o.Price,
		Timestamp: o.Timestamp,
	}

	if prior, ok := e.ctx.Position(o.Item); ok {
		if prior.Size*o.Qty > 0 {
			pos.Size = prior.Size + o.Qty
			pos.Price = (prior.Size*prior.Price + o.Qty*o.Price) / pos.Size
		}
		if prior.Highest > 0 {
			pos.Highest = prior.Highest
		}
		if prior.Lowest > 0 {
			pos.Lowest = prior.Lowest
		}
	}

	if atr, ok := e.ctx.ATR(o.Item); ok {
		if e.params.StopLossEnabled {
			pos.StopLoss = pos.Price - e.params.StopLossATR*atr
		}
		if e.params.TakeProfitEnabled {
			pos.TakeProfit = pos.Price + e.params.TakeProfitATR*atr
		}
	}

	e.ctx.SetPosition(pos)
	e.emit(positionEvent(pos))
}

// applyTradeRecord merges the fill into the item's trade history. Same-sign
// fills extend the open tail in place without an event; an opposite-sign
// fill closes the tail and opens a fresh record, emitting an event for the
// new record only.
func (e *Engine) applyTradeRecord(o Order) {
	last, ok := e.ctx.LastTradeRecord(o.Item)

	switch {
	case !ok:
		rec := openTradeRecord(o)
		e.ctx.PushTradeRecord(rec)
		e.emit(tradeEvent(rec))

	case last.Size*o.Qty > 0:
		size := last.Size + o.Qty
		last.PriceOpen = (last.PriceOpen*last.Size + o.Price*o.Qty) / size
		last.Size = size
		last.TimeOpen = o.Timestamp
		e.ctx.UpdateLastTradeRecord(last)

	default:
		last.PriceClose = o.Price
		last.TimeClose = o.Timestamp
		last.LabelClose = LabelClose
		e.ctx.UpdateLastTradeRecord(last)
		if e.onClose != nil {
			e.onClose(last)
		}

		rec := openTradeRecord(o)
		e.ctx.PushTradeRecord(rec)
		e.emit(tradeEvent(rec))
	}
}

func openTradeRecord(o Order) TradeRecord {
	side := SideBuy
	if o.Qty < 0 {
		side = SideSell
	}
	return TradeRecord{
		Item:      o.Item,
		Side:      side,
		Size:      o.Qty,
		PriceOpen: o.Price,
		TimeOpen:  o.Timestamp,
	}
}
