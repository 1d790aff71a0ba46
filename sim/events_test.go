package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantxyz/stratsim/market"
)

func testBar(ts int64, close float64) market.Bar {
	return market.Bar{
		Symbol:    "BTCUSDT",
		Interval:  "1h",
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
	}
}

func TestBusDeliversInOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	defer bus.Close()

	for i := int64(0); i < 10; i++ {
		assert.NoError(t, bus.Publish(CandleEvent(testBar(i, 100))))
	}

	for i := int64(0); i < 10; i++ {
		e := <-bus.Events()
		assert.Equal(t, EventCandle, e.Type)
		assert.Equal(t, i, e.Candle.Timestamp)
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	defer bus.Close()

	// Nothing consumes while publishing. A bounded queue would deadlock.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int64(0); i < 10000; i++ {
			_ = bus.Publish(CandleEvent(testBar(i, 100)))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow consumer")
	}

	for i := int64(0); i < 10000; i++ {
		e := <-bus.Events()
		assert.Equal(t, i, e.Candle.Timestamp)
	}
}

func TestBusCloseRejectsPublish(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.Close()
	bus.Close() // idempotent

	err := bus.Publish(finishEvent())
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestBusCloseDrainsBufferedEvents(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	for i := int64(0); i < 5; i++ {
		assert.NoError(t, bus.Publish(CandleEvent(testBar(i, 100))))
	}
	bus.Close()

	var got []int64
	for e := range bus.Events() {
		got = append(got, e.Candle.Timestamp)
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, got)
}
