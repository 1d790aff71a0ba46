// journal/journal.go
package journal

// Trade is one closed round trip: the open fill, the fill that closed it,
// and the label explaining why it closed. Size keeps the open fill's sign,
// negative for shorts.
type Trade struct {
	ID         string
	Item       string
	Side       string
	Size       float64
	PriceOpen  float64
	PriceClose float64
	TimeOpen   int64
	TimeClose  int64
	Label      string
}

// PnL is the realized profit of the round trip. The signed size makes the
// same formula work for shorts.
func (t Trade) PnL() float64 {
	return t.Size * (t.PriceClose - t.PriceOpen)
}

// EquityPoint is one account snapshot, taken after every fill.
type EquityPoint struct {
	Item        string
	Timestamp   int64
	Value       float64
	CloseLatest float64
	PosSize     float64
	CashAvail   float64
}

// Run summarizes one simulation run for later comparison.
type Run struct {
	ID        string
	Strategy  string
	Items     string
	Capital   float64
	StartedAt int64
	StoppedAt int64
	Trades    int
	NetPnL    float64
}

type Journal interface {
	RecordTrade(Trade) error
	RecordEquity(EquityPoint) error
	Close() error
}

// Nop discards everything. It is the default journal so simulations work
// without persistence configured.
type Nop struct{}

func (Nop) RecordTrade(Trade) error        { return nil }
func (Nop) RecordEquity(EquityPoint) error { return nil }
func (Nop) Close() error                   { return nil }
