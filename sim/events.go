package sim

import (
	"errors"
	"sync"

	"github.com/quantxyz/stratsim/market"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// EventType tags the variants of the Event union.
type EventType int

const (
	EventFinish EventType = iota
	EventCandle
	EventPosition
	EventOrder
	EventEquity
	EventTradeRecord
)

// Event is the tagged union flowing over the bus. Exactly one payload field
// matching Type is set; Finish carries none.
type Event struct {
	Type        EventType
	Candle      *market.Bar
	Position    *Position
	Order       *Order
	Equity      *Equity
	TradeRecord *TradeRecord
}

// CandleEvent wraps a bar for publication by producer adapters.
func CandleEvent(b market.Bar) Event { return Event{Type: EventCandle, Candle: &b} }

func finishEvent() Event             { return Event{Type: EventFinish} }
func positionEvent(p Position) Event { return Event{Type: EventPosition, Position: &p} }
func orderEvent(o Order) Event       { return Event{Type: EventOrder, Order: &o} }
func equityEvent(e Equity) Event     { return Event{Type: EventEquity, Equity: &e} }
func tradeEvent(r TradeRecord) Event { return Event{Type: EventTradeRecord, TradeRecord: &r} }

// Bus is an unbounded multi-producer/single-consumer event queue. Publish
// never blocks on a slow consumer; a pump goroutine buffers in between.
type Bus struct {
	in  chan Event
	out chan Event

	mu     sync.Mutex
	closed bool
}

// NewBus starts the pump and returns a ready bus.
func NewBus() *Bus {
	b := &Bus{
		in:  make(chan Event),
		out: make(chan Event),
	}
	go b.pump()
	return b
}

// Publish enqueues an event. It fails only after Close.
func (b *Bus) Publish(e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.in <- e
	return nil
}

// Close stops the bus from accepting events. Buffered events remain
// receivable; Events() is closed once they drain.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.in)
	}
}

// Events returns the consumer side of the bus.
func (b *Bus) Events() <-chan Event {
	return b.out
}

// pump shuttles events from in to out through an unbounded buffer, so
// producers never observe backpressure.
func (b *Bus) pump() {
	var buf []Event
	in := b.in
	for in != nil || len(buf) > 0 {
		var (
			out  chan Event
			next Event
		)
		if len(buf) > 0 {
			out = b.out
			next = buf[0]
		}
		select {
		case e, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			buf = append(buf, e)
		case out <- next:
			buf = buf[1:]
		}
	}
	close(b.out)
}
