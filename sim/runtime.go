package sim

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/journal"
	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/pkg/id"
)

// State is the dispatch-loop lifecycle phase.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateDraining
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Handler is the pluggable strategy policy. All callbacks run synchronously
// on the dispatch goroutine and may call Buy/Sell on the runtime.
type Handler interface {
	OnInit(rt *Runtime)
	OnCandle(rt *Runtime, bar market.Bar)
	OnOrder(rt *Runtime, o Order)
	OnPosition(rt *Runtime, p Position)
	OnEquity(rt *Runtime, e Equity)
	OnTradeRecord(rt *Runtime, r TradeRecord)
	OnFinish(rt *Runtime)
}

// Producer feeds Candle events onto the bus. Produce returns once the
// producer has nothing more to publish; it must stop early when ctx is
// cancelled or the bus is closed.
type Producer interface {
	Produce(ctx context.Context, bus *Bus)
}

// Runtime owns the event bus, the simulation context, and the execution
// engine, and drives the strategy through the dispatch state machine:
// Starting → Running → Draining → Finished.
type Runtime struct {
	params  Params
	handler Handler
	feeder  Producer

	bus    *Bus
	ctx    *Context
	engine *Engine

	// pending holds events emitted while handling the current event; they
	// are drained before the next bus event so each bar's consequences are
	// applied atomically.
	pending []Event

	journal journal.Journal
	log     *zap.Logger

	state State
	wg    sync.WaitGroup
}

// NewRuntime assembles a runtime around a strategy handler and a candle
// producer.
func NewRuntime(params Params, handler Handler, feeder Producer) *Runtime {
	rt := &Runtime{
		params:  params,
		handler: handler,
		feeder:  feeder,
		bus:     NewBus(),
		ctx:     NewContext(),
		journal: journal.Nop{},
		log:     zap.NewNop(),
		state:   StateStarting,
	}
	rt.engine = NewEngine(params, rt.ctx, rt.enqueue, rt.log)
	rt.engine.SetTradeClosedFunc(rt.recordClosedTrade)
	return rt
}

// SetLogger replaces the runtime's logger. Call before Run.
func (rt *Runtime) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	rt.log = log
	rt.engine.log = log
}

// SetJournal attaches a journal that receives closed trades and equity
// snapshots as they are produced. Call before Run.
func (rt *Runtime) SetJournal(j journal.Journal) {
	if j == nil {
		j = journal.Nop{}
	}
	rt.journal = j
}

// Context exposes the simulation state to strategy callbacks. It must only
// be touched from the dispatch goroutine.
func (rt *Runtime) Context() *Context { return rt.ctx }

// Bus exposes the event bus, mainly so external adapters can be pointed at
// the same stream the runtime consumes.
func (rt *Runtime) Bus() *Bus { return rt.bus }

// State reports the current lifecycle phase.
func (rt *Runtime) State() State { return rt.state }

// Buy places a long order for item at price. qtyCap > 0 caps the committed
// margin below the configured order size.
func (rt *Runtime) Buy(item string, price float64, ts int64, qtyCap float64) {
	rt.engine.Buy(item, price, ts, qtyCap)
}

// Sell places a short order with the same sizing rules as Buy.
func (rt *Runtime) Sell(item string, price float64, ts int64, qtyCap float64) {
	rt.engine.Sell(item, price, ts, qtyCap)
}

// Run seeds the context, starts the producers, and dispatches events until
// a Finish event arrives or the bus closes. It returns after all producer
// goroutines have stopped.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.start(ctx)
	rt.dispatch(ctx)
	rt.wg.Wait()
	return nil
}

// start seeds a flat position and an initial equity snapshot per configured
// item, invokes the init callback, and spawns the producer.
func (rt *Runtime) start(ctx context.Context) {
	now := time.Now().UnixMilli()
	for _, item := range rt.params.Items() {
		rt.ctx.PushEquity(Equity{
			Item:      item,
			Timestamp: now,
			Value:     rt.params.InitialCapital,
			CashAvail: rt.params.InitialCapital,
		})
		rt.ctx.SetPosition(Position{Item: item, Timestamp: now})
	}

	rt.handler.OnInit(rt)

	rt.state = StateRunning
	if rt.feeder != nil {
		rt.wg.Add(1)
		go func() {
			defer rt.wg.Done()
			rt.feeder.Produce(ctx, rt.bus)
		}()
	}
}

// dispatch is the consumer loop. It blocks on the bus with a quiescence
// deadline that resets on every event; when the deadline fires it
// synthesizes a single Finish event, the only end-of-stream signal the
// producers never send themselves.
func (rt *Runtime) dispatch(ctx context.Context) {
	timeout := rt.params.quiescence()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		for len(rt.pending) > 0 {
			e := rt.pending[0]
			rt.pending = rt.pending[1:]
			if rt.dispatchEvent(e) {
				return
			}
		}

		select {
		case <-ctx.Done():
			rt.log.Info("dispatch cancelled", zap.Error(ctx.Err()))
			rt.state = StateFinished
			return

		case e, ok := <-rt.bus.Events():
			if !ok {
				// Bus closed with nothing buffered: exit without the
				// finish callback. Distinct from a graceful Finish.
				rt.log.Info("event bus closed, exiting dispatch")
				rt.state = StateFinished
				return
			}
			if rt.state == StateRunning {
				resetTimer(timer, timeout)
			}
			if rt.dispatchEvent(e) {
				return
			}

		case <-timer.C:
			rt.log.Info("quiescence timeout reached, finishing",
				zap.Duration("timeout", timeout))
			rt.state = StateDraining
			if err := rt.bus.Publish(finishEvent()); err != nil {
				rt.handler.OnFinish(rt)
				rt.state = StateFinished
				return
			}
		}
	}
}

// dispatchEvent applies one event and invokes the matching callback. It
// returns true when the loop should exit.
func (rt *Runtime) dispatchEvent(e Event) bool {
	switch e.Type {
	case EventFinish:
		rt.handler.OnFinish(rt)
		rt.state = StateFinished
		return true

	case EventCandle:
		rt.ctx.PushBar(*e.Candle)
		rt.handler.OnCandle(rt, *e.Candle)

	case EventPosition:
		rt.handler.OnPosition(rt, *e.Position)

	case EventOrder:
		rt.handler.OnOrder(rt, *e.Order)

	case EventEquity:
		if err := rt.journal.RecordEquity(journalEquity(*e.Equity)); err != nil {
			rt.log.Warn("journal equity", zap.Error(err))
		}
		rt.handler.OnEquity(rt, *e.Equity)

	case EventTradeRecord:
		rt.handler.OnTradeRecord(rt, *e.TradeRecord)
	}
	return false
}

// enqueue is the engine's event sink: emitted events wait in the pending
// queue and are applied before the next bus event.
func (rt *Runtime) enqueue(e Event) {
	rt.pending = append(rt.pending, e)
}

func (rt *Runtime) recordClosedTrade(r TradeRecord) {
	if err := rt.journal.RecordTrade(journalTrade(r)); err != nil {
		rt.log.Warn("journal trade", zap.Error(err))
	}
}

func journalTrade(r TradeRecord) journal.Trade {
	return journal.Trade{
		ID:         id.New(),
		Item:       r.Item,
		Side:       r.Side,
		Size:       r.Size,
		PriceOpen:  r.PriceOpen,
		PriceClose: r.PriceClose,
		TimeOpen:   r.TimeOpen,
		TimeClose:  r.TimeClose,
		Label:      r.LabelClose,
	}
}

func journalEquity(e Equity) journal.EquityPoint {
	return journal.EquityPoint{
		Item:        e.Item,
		Timestamp:   e.Timestamp,
		Value:       e.Value,
		CloseLatest: e.CloseLatest,
		PosSize:     e.PosSize,
		CashAvail:   e.CashAvail,
	}
}

// resetTimer safely re-arms a timer that may have fired.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
