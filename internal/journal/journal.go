// Package journal persists completed backtest runs to a local SQLite file
// and exports transaction logs as CSV.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"aibacktest/types"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	initial_capital REAL NOT NULL,
	final_value REAL NOT NULL,
	total_return REAL NOT NULL,
	volatility REAL NOT NULL,
	sharpe_ratio REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	total_trades INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	date TEXT NOT NULL,
	instrument TEXT NOT NULL,
	action TEXT NOT NULL,
	shares REAL NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	confidence REAL NOT NULL
);`

// Journal is a SQLite-backed record of completed runs.
type Journal struct {
	db *sql.DB
}

// RunRecord is one persisted run summary.
type RunRecord struct {
	ID             string
	Instrument     string
	CreatedAt      time.Time
	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
	MaxDrawdown    float64
	TotalTrades    int
	WinRate        float64
}

// Open creates or opens the journal at path and ensures the schema exists.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record writes the run summary and its full transaction log in one
// database transaction.
func (j *Journal) Record(runID, instrument string, result *types.Result) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, instrument, initial_capital, final_value, total_return,
			volatility, sharpe_ratio, max_drawdown, total_trades, win_rate, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, instrument,
		result.InitialCapital.InexactFloat64(),
		result.FinalValue.InexactFloat64(),
		result.TotalReturn,
		result.Volatility,
		result.SharpeRatio,
		result.MaxDrawdown,
		result.TotalTrades,
		result.WinRate,
		result.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO transactions (run_id, date, instrument, action, shares, price, amount, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range result.Transactions {
		_, err = stmt.Exec(runID,
			t.Date.Format("2006-01-02"),
			t.Instrument,
			string(t.Action),
			t.Shares.InexactFloat64(),
			t.Price.InexactFloat64(),
			t.Amount.InexactFloat64(),
			t.Confidence,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	return tx.Commit()
}

// Runs lists persisted run summaries, newest first.
func (j *Journal) Runs() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, instrument, created_at, initial_capital, final_value,
			total_return, max_drawdown, total_trades, win_rate
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Instrument, &r.CreatedAt, &r.InitialCapital,
			&r.FinalValue, &r.TotalReturn, &r.MaxDrawdown, &r.TotalTrades, &r.WinRate); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
