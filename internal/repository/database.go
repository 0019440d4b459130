package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrAssetNotFound = errors.New("not found in datasource")
	ErrNoCloses      = errors.New("no closing prices found in datasource")
)

type assetsRepository interface {
	GetAssetIDByTicker(ctx context.Context, ticker string) (int32, error)
}

type closesRepository interface {
	GetDailyCloses(ctx context.Context, assetID int32, start, end time.Time) ([]closeRow, error)
}

type closeRow struct {
	Day   time.Time
	Close *decimal.Decimal
}

// Database holds the connection pool and the query surface the engine's
// price source needs: ticker resolution and daily closing prices.
type Database struct {
	assets   assetsRepository
	closes   closesRepository
	conn     *pgxpool.Pool
	assetIDs map[string]int32
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	q := &queries{pool: conn}
	return &Database{
		assets:   q,
		closes:   q,
		conn:     conn,
		assetIDs: make(map[string]int32),
	}, nil
}

// Close releases the connection pool.
func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

type queries struct {
	pool *pgxpool.Pool
}

func (q *queries) GetAssetIDByTicker(ctx context.Context, ticker string) (int32, error) {
	var id int32
	err := q.pool.QueryRow(ctx,
		`SELECT id FROM assets WHERE ticker = $1`, ticker).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAssetNotFound
		}
		return 0, err
	}
	return id, nil
}

func (q *queries) GetDailyCloses(ctx context.Context, assetID int32, start, end time.Time) ([]closeRow, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT day, close FROM daily_candles
		 WHERE asset_id = $1 AND day BETWEEN $2 AND $3
		 ORDER BY day`, assetID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []closeRow
	for rows.Next() {
		var r closeRow
		if err := rows.Scan(&r.Day, &r.Close); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
