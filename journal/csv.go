// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	fail := func(err error) (*CSVJournal, error) {
		tf.Close()
		ef.Close()
		return nil, err
	}

	if err := tw.Write([]string{"trade_id", "item", "side", "size", "price_open", "price_close", "time_open", "time_close", "pnl", "label"}); err != nil {
		return fail(err)
	}
	if err := ew.Write([]string{"item", "time", "value", "close_latest", "pos_size", "cash_avail"}); err != nil {
		return fail(err)
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return fail(err)
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return fail(err)
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTrade(t Trade) error {
	err := j.trades.Write([]string{
		t.ID,
		t.Item,
		t.Side,
		f(t.Size),
		f(t.PriceOpen),
		f(t.PriceClose),
		strconv.FormatInt(t.TimeOpen, 10),
		strconv.FormatInt(t.TimeClose, 10),
		f(t.PnL()),
		t.Label,
	})
	if err != nil {
		return err
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquityPoint) error {
	err := j.equity.Write([]string{
		e.Item,
		strconv.FormatInt(e.Timestamp, 10),
		f(e.Value),
		f(e.CloseLatest),
		f(e.PosSize),
		f(e.CashAvail),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
