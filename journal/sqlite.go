// journal/sqlite.go
package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, item, side, size, price_open, price_close, time_open, time_close, pnl, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Item, t.Side, t.Size, t.PriceOpen,
		t.PriceClose, t.TimeOpen, t.TimeClose, t.PnL(), t.Label,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(item, time, value, close_latest, pos_size, cash_avail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Item, e.Timestamp, e.Value, e.CloseLatest, e.PosSize, e.CashAvail,
	)
	return err
}

// RecordRun stores the end-of-run summary row.
func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, strategy, items, capital, started_at, stopped_at, trades, net_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Strategy, r.Items, r.Capital, r.StartedAt, r.StoppedAt, r.Trades, r.NetPnL,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
