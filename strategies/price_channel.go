package strategies

import (
	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/indicators"
	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/sim"
)

// PriceChannel trades breakouts of the rolling high/low channel:
// - Long when a bar's high touches the channel top while flat or short
// - Short when a bar's low touches the channel bottom while flat or long
// It keeps a streaming ATR per item and caches the latest value on the
// simulation context so the engine can derive stop levels.
type PriceChannel struct {
	Noop

	window    int
	atrPeriod int
	qtyCap    float64
	log       *zap.Logger

	atrs map[string]*indicators.ATRStream
}

func NewPriceChannel(cfg Config) *PriceChannel {
	if cfg.Window <= 0 {
		cfg.Window = 20
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}

	return &PriceChannel{
		window:    cfg.Window,
		atrPeriod: cfg.ATRPeriod,
		qtyCap:    cfg.QtyCap,
		log:       cfg.logger(),
	}
}

func (s *PriceChannel) OnInit(rt *sim.Runtime) {
	s.atrs = make(map[string]*indicators.ATRStream)
	s.log.Info("price channel ready",
		zap.Int("window", s.window),
		zap.Int("atr_period", s.atrPeriod))
}

func (s *PriceChannel) OnCandle(rt *sim.Runtime, bar market.Bar) {
	item := bar.Item()

	atr := s.atrs[item]
	if atr == nil {
		atr = indicators.NewATR(s.atrPeriod)
		s.atrs[item] = atr
	}
	atr.Update(bar)
	if atr.Ready() {
		rt.Context().SetATR(item, atr.Value())
	}

	bars := rt.Context().Bars(item)
	if len(bars) < s.window+1 {
		return
	}

	// The channel is built from the bars before this one.
	prior := bars[:len(bars)-1]
	top := indicators.MaxLastN(indicators.Highs(prior), s.window)
	bottom := indicators.MinLastN(indicators.Lows(prior), s.window)

	var posSize float64
	if pos, ok := rt.Context().Position(item); ok {
		posSize = pos.Size
	}

	switch {
	case bar.High >= top && posSize <= 0:
		rt.Buy(item, bar.Close, bar.Timestamp, s.qtyCap)
	case bar.Low <= bottom && posSize >= 0:
		rt.Sell(item, bar.Close, bar.Timestamp, s.qtyCap)
	}
}

func (s *PriceChannel) OnOrder(rt *sim.Runtime, o sim.Order) {
	dir := "Long"
	if o.Qty < 0 {
		dir = "Short"
	}
	s.log.Info("breakout order",
		zap.String("item", o.Item),
		zap.String("direction", dir),
		zap.Float64("price", o.Price),
		zap.Float64("qty", o.Qty),
		zap.Int64("timestamp", o.Timestamp))
}
