package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySnapshot records the portfolio value at one decision date. Dates with
// no resolvable price produce no snapshot, so the series may have gaps.
type DailySnapshot struct {
	Date           time.Time       `json:"date"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Cash           decimal.Decimal `json:"cash"`
	StockValue     decimal.Decimal `json:"stock_value"`
}
