package strategies

import (
	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/indicators"
	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/sim"
)

// adxMinTrend is the ADX level below which the market counts as
// range-bound and crosses are ignored.
const adxMinTrend = 25.0

// EMACross trades a fast/slow EMA crossover per item:
// - Enters only on a cross, never mid-trend
// - Reverses on the opposite cross
// - Optionally skips crosses while ADX says the trend is weak
type EMACross struct {
	Noop

	fastPeriod int
	slowPeriod int
	adxPeriod  int // 0 disables the regime filter
	qtyCap     float64
	log        *zap.Logger

	state map[string]*crossState
}

type crossState struct {
	fast *indicators.ExponentialMA
	slow *indicators.ExponentialMA
	adx  *indicators.ADX

	lastDiff     float64
	haveLastDiff bool
}

func NewEMACross(cfg Config) *EMACross {
	if cfg.FastPeriod <= 0 {
		cfg.FastPeriod = 10
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		cfg.SlowPeriod = 3 * cfg.FastPeriod
	}

	return &EMACross{
		fastPeriod: cfg.FastPeriod,
		slowPeriod: cfg.SlowPeriod,
		qtyCap:     cfg.QtyCap,
		log:        cfg.logger(),
	}
}

// NewEMACrossADX is EMACross with an ADX regime filter: crosses only
// trade once ADX is warm and reads at least adxMinTrend.
func NewEMACrossADX(cfg Config) *EMACross {
	s := NewEMACross(cfg)
	s.adxPeriod = cfg.ADXPeriod
	if s.adxPeriod <= 0 {
		s.adxPeriod = 14
	}
	return s
}

func (s *EMACross) OnInit(rt *sim.Runtime) {
	s.state = make(map[string]*crossState)
	s.log.Info("ema cross ready",
		zap.Int("fast", s.fastPeriod),
		zap.Int("slow", s.slowPeriod))
}

func (s *EMACross) OnCandle(rt *sim.Runtime, bar market.Bar) {
	item := bar.Item()

	st := s.state[item]
	if st == nil {
		st = &crossState{
			fast: indicators.NewEMA(s.fastPeriod),
			slow: indicators.NewEMA(s.slowPeriod),
		}
		if s.adxPeriod > 0 {
			st.adx = indicators.NewADX(s.adxPeriod)
		}
		s.state[item] = st
	}

	st.fast.Update(bar)
	st.slow.Update(bar)
	if st.adx != nil {
		st.adx.Update(bar)
	}
	if !st.fast.Ready() || !st.slow.Ready() {
		return
	}
	if st.adx != nil && !st.adx.Ready() {
		return
	}

	diff := st.fast.Value() - st.slow.Value()
	if !st.haveLastDiff {
		st.lastDiff = diff
		st.haveLastDiff = true
		return
	}

	crossedUp := st.lastDiff <= 0 && diff > 0
	crossedDown := st.lastDiff >= 0 && diff < 0
	st.lastDiff = diff

	if st.adx != nil && st.adx.Value() < adxMinTrend {
		return
	}

	var posSize float64
	if pos, ok := rt.Context().Position(item); ok {
		posSize = pos.Size
	}

	switch {
	case crossedUp && posSize <= 0:
		rt.Buy(item, bar.Close, bar.Timestamp, s.qtyCap)
	case crossedDown && posSize >= 0:
		rt.Sell(item, bar.Close, bar.Timestamp, s.qtyCap)
	}
}

func (s *EMACross) OnOrder(rt *sim.Runtime, o sim.Order) {
	s.log.Info("cross order",
		zap.String("item", o.Item),
		zap.Float64("price", o.Price),
		zap.Float64("qty", o.Qty))
}
