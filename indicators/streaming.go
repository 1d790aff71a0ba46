package indicators

import (
	"fmt"

	"github.com/quantxyz/stratsim/market"
)

// SimpleMA is a streaming Simple Moving Average indicator
type SimpleMA struct {
	period int
	closes []float64
}

// NewMA creates a new Simple Moving Average indicator with the given period
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		closes: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.closes = m.closes[:0]
}

func (m *SimpleMA) Update(b market.Bar) {
	m.closes = append(m.closes, b.Close)
	// Keep only the last 'period' closes
	if len(m.closes) > m.period {
		m.closes = m.closes[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.closes) >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}

	sum := 0.0
	for _, c := range m.closes {
		sum += c
	}
	return sum / float64(len(m.closes))
}

// ExponentialMA is a streaming Exponential Moving Average indicator. Its
// first value equals the first close, matching the batch EMA.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	seen       bool
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int {
	return 1
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.seen = false
}

func (e *ExponentialMA) Update(b market.Bar) {
	if !e.seen {
		e.ema = b.Close
		e.seen = true
		return
	}
	e.ema = (b.Close-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool {
	return e.seen
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// ATRStream is a streaming Average True Range indicator: a simple moving
// average over the last 'period' true ranges, matching the batch ATR.
type ATRStream struct {
	period  int
	trs     []float64
	prev    market.Bar
	hasPrev bool
}

// NewATR creates a new Average True Range indicator with the given period
func NewATR(period int) *ATRStream {
	return &ATRStream{
		period: period,
		trs:    make([]float64, 0, period),
	}
}

func (a *ATRStream) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATRStream) Warmup() int {
	// Need period+1 bars because TR requires a previous bar
	return a.period + 1
}

func (a *ATRStream) Reset() {
	a.trs = a.trs[:0]
	a.hasPrev = false
}

func (a *ATRStream) Update(b market.Bar) {
	if !a.hasPrev {
		a.prev = b
		a.hasPrev = true
		return
	}

	a.trs = append(a.trs, trueRange(b, a.prev))
	if len(a.trs) > a.period {
		a.trs = a.trs[1:]
	}
	a.prev = b
}

func (a *ATRStream) Ready() bool {
	return len(a.trs) >= a.period
}

func (a *ATRStream) Value() float64 {
	if !a.Ready() {
		return 0
	}

	sum := 0.0
	for _, tr := range a.trs {
		sum += tr
	}
	return sum / float64(len(a.trs))
}
