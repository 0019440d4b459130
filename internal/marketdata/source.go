// Package marketdata resolves instrument prices through a pluggable source
// and memoizes every lookup for the lifetime of one backtest run.
package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ClosePrice is one daily closing price.
type ClosePrice struct {
	Date  time.Time
	Close decimal.Decimal
}

// Source supplies daily closing prices for an instrument over a date range,
// oldest first. A source that has no data for the range returns an error.
type Source interface {
	DailyCloses(ctx context.Context, instrument string, start, end time.Time) ([]ClosePrice, error)
}
