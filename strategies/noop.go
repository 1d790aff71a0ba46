package strategies

import (
	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/sim"
)

// Noop ignores every event. Strategies embed it to pick up defaults for
// the callbacks they don't care about.
type Noop struct{}

func (Noop) OnInit(rt *sim.Runtime)                           {}
func (Noop) OnCandle(rt *sim.Runtime, bar market.Bar)         {}
func (Noop) OnOrder(rt *sim.Runtime, o sim.Order)             {}
func (Noop) OnPosition(rt *sim.Runtime, p sim.Position)       {}
func (Noop) OnEquity(rt *sim.Runtime, e sim.Equity)           {}
func (Noop) OnTradeRecord(rt *sim.Runtime, r sim.TradeRecord) {}
func (Noop) OnFinish(rt *sim.Runtime)                         {}
