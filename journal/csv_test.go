package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	return j, tradesPath, equityPath
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, tradesPath, equityPath := newTestCSV(t)
	assert.NoError(t, j.Close())

	tradeRows := readRows(t, tradesPath)
	equityRows := readRows(t, equityPath)

	wantTrades := []string{"trade_id", "item", "side", "size", "price_open", "price_close", "time_open", "time_close", "pnl", "label"}
	assert.Equal(t, wantTrades, tradeRows[0])

	wantEquity := []string{"item", "time", "value", "close_latest", "pos_size", "cash_avail"}
	assert.Equal(t, wantEquity, equityRows[0])
}

func TestNewCSVRejectsUnwritablePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// A directory in place of either file makes os.Create fail; the
	// constructor must error out without handing back a journal.
	j, err := NewCSV(dir, filepath.Join(dir, "equity.csv"))
	assert.Error(t, err)
	assert.Nil(t, j)

	j, err = NewCSV(filepath.Join(dir, "trades.csv"), dir)
	assert.Error(t, err)
	assert.Nil(t, j)

	// The trades file created before the failure is left closed and can
	// be reused by the next attempt.
	j, err = NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)
	assert.NoError(t, j.Close())
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	j, tradesPath, _ := newTestCSV(t)

	err := j.RecordTrade(Trade{
		ID:         "T1",
		Item:       "BTCUSDT_1h",
		Side:       "sell",
		Size:       -2.0,
		PriceOpen:  110,
		PriceClose: 100,
		TimeOpen:   1700000000000,
		TimeClose:  1700003600000,
		Label:      "Close",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, tradesPath)
	assert.Len(t, rows, 2)

	want := []string{
		"T1",
		"BTCUSDT_1h",
		"sell",
		"-2.000000",
		"110.000000",
		"100.000000",
		"1700000000000",
		"1700003600000",
		"20.000000",
		"Close",
	}
	assert.Equal(t, want, rows[1])
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	j, _, equityPath := newTestCSV(t)

	err := j.RecordEquity(EquityPoint{
		Item:        "BTCUSDT_1h",
		Timestamp:   1700000000000,
		Value:       3999.9,
		CloseLatest: 100,
		PosSize:     1.0,
		CashAvail:   3899.9,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, equityPath)
	assert.Len(t, rows, 2)

	want := []string{
		"BTCUSDT_1h",
		"1700000000000",
		"3999.900000",
		"100.000000",
		"1.000000",
		"3899.900000",
	}
	assert.Equal(t, want, rows[1])
}
