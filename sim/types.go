package sim

// Trade sides as recorded on TradeRecord.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// LabelClose marks a trade record closed by an opposite-side fill.
const LabelClose = "Close"

// Position is the single current position for one item. The sign of Size
// carries direction: positive long, negative short, zero flat. It is
// overwritten in place by the execution engine, never versioned.
type Position struct {
	Item       string
	Size       float64
	Price      float64 // average entry price
	Highest    float64 // highest price seen since open
	Lowest     float64 // lowest price seen since open
	StopLoss   float64
	TakeProfit float64
	Timestamp  int64
}

// Order is one accepted fill. Qty is signed: positive buy, negative sell.
type Order struct {
	Item      string
	Price     float64
	Qty       float64
	Timestamp int64
}

// Equity is one snapshot of account state for an item. The latest snapshot
// is the basis for the next order's cash check.
type Equity struct {
	Item        string
	Timestamp   int64
	Value       float64 // total equity
	CloseLatest float64
	PosSize     float64
	CashAvail   float64
}

// TradeRecord tracks one round trip. The record is open while TimeClose is
// zero; only the tail record of an item's history is ever edited in place.
type TradeRecord struct {
	Item       string
	Side       string
	Size       float64
	PriceOpen  float64
	TimeOpen   int64
	PriceClose float64
	TimeClose  int64
	LabelClose string
}

// IsOpen reports whether the trade has not been closed yet.
func (r TradeRecord) IsOpen() bool {
	return r.TimeClose == 0
}
