package types

import "github.com/shopspring/decimal"

// PortfolioState is a derived, read-only snapshot of the ledger at one point
// in time, priced against a single instrument's current price. It is the
// state the normalizer's override rules and the oracle both consume.
type PortfolioState struct {
	CurrentShares      decimal.Decimal `json:"current_shares"`
	Cash               decimal.Decimal `json:"cash"`
	StockValue         decimal.Decimal `json:"stock_value"`
	TotalValue         decimal.Decimal `json:"total_value"`
	InitialCapital     decimal.Decimal `json:"initial_capital"`
	AvgCost            decimal.Decimal `json:"avg_cost"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	UnrealizedPnL      decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPct   float64         `json:"unrealized_pnl_percent"`
	CapitalUsage       float64         `json:"capital_usage"`
	AvailableCashRatio float64         `json:"available_cash_ratio"`
	StockRatio         float64         `json:"stock_ratio"`
	TotalTrades        int             `json:"total_trades"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
}

// HasPosition reports whether the snapshot carries any shares.
func (s PortfolioState) HasPosition() bool {
	return s.CurrentShares.IsPositive()
}
