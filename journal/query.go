// journal/query.go
package journal

import (
	"database/sql"
	"fmt"
)

// GetTrade returns a single trade row by ID.
func (j *SQLite) GetTrade(tradeID string) (Trade, error) {
	var rec Trade
	var pnl float64

	row := j.db.QueryRow(`
		SELECT trade_id, item, side, size, price_open, price_close, time_open, time_close, pnl, label
		FROM trades
		WHERE trade_id = ?`, tradeID)

	err := row.Scan(
		&rec.ID,
		&rec.Item,
		&rec.Side,
		&rec.Size,
		&rec.PriceOpen,
		&rec.PriceClose,
		&rec.TimeOpen,
		&rec.TimeClose,
		&pnl,
		&rec.Label,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Trade{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return Trade{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns an item's trades whose close time falls
// within [start, end), ordered by close time. Times are epoch milliseconds.
func (j *SQLite) ListTradesClosedBetween(item string, start, end int64) ([]Trade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, item, side, size, price_open, price_close, time_open, time_close, pnl, label
		FROM trades
		WHERE item = ? AND time_close >= ? AND time_close < ?
		ORDER BY time_close ASC`, item, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		var rec Trade
		var pnl float64
		if err := rows.Scan(
			&rec.ID,
			&rec.Item,
			&rec.Side,
			&rec.Size,
			&rec.PriceOpen,
			&rec.PriceClose,
			&rec.TimeOpen,
			&rec.TimeClose,
			&pnl,
			&rec.Label,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns an item's equity snapshots within [start, end),
// ordered by time.
func (j *SQLite) ListEquityBetween(item string, start, end int64) ([]EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT item, time, value, close_latest, pos_size, cash_avail
		FROM equity
		WHERE item = ? AND time >= ? AND time < ?
		ORDER BY time ASC`, item, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var rec EquityPoint
		if err := rows.Scan(
			&rec.Item,
			&rec.Timestamp,
			&rec.Value,
			&rec.CloseLatest,
			&rec.PosSize,
			&rec.CashAvail,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
