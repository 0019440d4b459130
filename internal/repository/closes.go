package repository

import (
	"context"
	"fmt"
	"time"

	"aibacktest/internal/marketdata"
)

// DailyCloses returns the instrument's daily closing prices between start and
// end inclusive, oldest first. Rows whose close did not scan to a numeric
// value are dropped. Implements marketdata.Source.
func (db *Database) DailyCloses(ctx context.Context, instrument string, start, end time.Time) ([]marketdata.ClosePrice, error) {
	id, err := db.assetID(ctx, instrument)
	if err != nil {
		return nil, err
	}

	rows, err := db.closes.GetDailyCloses(ctx, id, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCloses
	}

	closes := make([]marketdata.ClosePrice, 0, len(rows))
	for _, row := range rows {
		if row.Close == nil {
			continue
		}
		closes = append(closes, marketdata.ClosePrice{
			Date:  row.Day,
			Close: *row.Close,
		})
	}
	if len(closes) == 0 {
		return nil, ErrNoCloses
	}
	return closes, nil
}

func (db *Database) assetID(ctx context.Context, ticker string) (int32, error) {
	if id, ok := db.assetIDs[ticker]; ok {
		return id, nil
	}
	id, err := db.assets.GetAssetIDByTicker(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("ticker %s: %w", ticker, err)
	}
	db.assetIDs[ticker] = id
	return id, nil
}
