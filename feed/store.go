package feed

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/market"
)

// SQLiteStore reads candle history from one table per stream. Prices are
// stored as text; rows that fail to parse are dropped with a diagnostic
// rather than failing the whole fetch.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, log: log}, nil
}

// Bars returns the stream's bars with timestamp strictly greater than
// s.Start, and strictly less than s.End when a closed window is set.
func (st *SQLiteStore) Bars(ctx context.Context, s Stream) ([]market.Bar, error) {
	query := fmt.Sprintf(`
		SELECT timestamp, open, high, low, close, volume
		FROM %s
		WHERE timestamp > ?`, tableName(s.Symbol, s.Interval))
	args := []any{s.Start}

	if s.End > 0 && s.End > s.Start {
		query += ` AND timestamp < ?`
		args = append(args, s.End)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	item := market.Item(s.Symbol, s.Interval)
	var out []market.Bar
	for rows.Next() {
		var ts int64
		var open, high, low, closeP, volume string
		if err := rows.Scan(&ts, &open, &high, &low, &closeP, &volume); err != nil {
			return nil, err
		}

		bar, err := parseBar(s.Symbol, s.Interval, ts, open, high, low, closeP, volume)
		if err != nil {
			st.log.Warn("dropping malformed bar",
				zap.String("item", item),
				zap.Int64("timestamp", ts),
				zap.Error(err))
			continue
		}
		out = append(out, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Seed creates the stream's table if needed and inserts the given bars.
// Meant for loaders and tests.
func (st *SQLiteStore) Seed(ctx context.Context, symbol, interval string, bars []market.Bar) error {
	table := tableName(symbol, interval)

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			timestamp INTEGER PRIMARY KEY,
			open TEXT NOT NULL,
			high TEXT NOT NULL,
			low TEXT NOT NULL,
			close TEXT NOT NULL,
			volume TEXT NOT NULL
		)`, table)
	if _, err := st.db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	ins := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?)`, table)
	for _, b := range bars {
		_, err := st.db.ExecContext(ctx, ins,
			b.Timestamp, ftoa(b.Open), ftoa(b.High), ftoa(b.Low), ftoa(b.Close), ftoa(b.Volume))
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedRaw inserts rows without float round-tripping, preserving whatever
// text the loader scraped. Bad rows surface later as drop diagnostics.
func (st *SQLiteStore) SeedRaw(ctx context.Context, symbol, interval string, ts int64, open, high, low, closeP, volume string) error {
	table := tableName(symbol, interval)

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			timestamp INTEGER PRIMARY KEY,
			open TEXT NOT NULL,
			high TEXT NOT NULL,
			low TEXT NOT NULL,
			close TEXT NOT NULL,
			volume TEXT NOT NULL
		)`, table)
	if _, err := st.db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	ins := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?)`, table)
	_, err := st.db.ExecContext(ctx, ins, ts, open, high, low, closeP, volume)
	return err
}

func (st *SQLiteStore) Close() error {
	return st.db.Close()
}

func tableName(symbol, interval string) string {
	return "bars_" + market.Item(symbol, interval)
}

func parseBar(symbol, interval string, ts int64, open, high, low, closeP, volume string) (market.Bar, error) {
	b := market.Bar{
		Symbol:    symbol,
		Interval:  interval,
		Timestamp: market.NormalizeMillis(ts),
	}

	var err error
	if b.Open, err = strconv.ParseFloat(open, 64); err != nil {
		return market.Bar{}, fmt.Errorf("bad open %q: %w", open, err)
	}
	if b.High, err = strconv.ParseFloat(high, 64); err != nil {
		return market.Bar{}, fmt.Errorf("bad high %q: %w", high, err)
	}
	if b.Low, err = strconv.ParseFloat(low, 64); err != nil {
		return market.Bar{}, fmt.Errorf("bad low %q: %w", low, err)
	}
	if b.Close, err = strconv.ParseFloat(closeP, 64); err != nil {
		return market.Bar{}, fmt.Errorf("bad close %q: %w", closeP, err)
	}
	if b.Volume, err = strconv.ParseFloat(volume, 64); err != nil {
		return market.Bar{}, fmt.Errorf("bad volume %q: %w", volume, err)
	}
	return b, nil
}

func ftoa(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
