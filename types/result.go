package types

import "github.com/shopspring/decimal"

// Result is the complete outcome of one backtest run. Error is set only when
// the run could not produce a single snapshot; callers always receive a
// well-formed Result either way.
type Result struct {
	InitialCapital   decimal.Decimal `json:"initial_capital"`
	FinalValue       decimal.Decimal `json:"final_value"`
	TotalReturn      float64         `json:"total_return"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	MaxValue         decimal.Decimal `json:"max_value"`
	MinValue         decimal.Decimal `json:"min_value"`
	Volatility       float64         `json:"volatility"`
	SharpeRatio      float64         `json:"sharpe_ratio"`
	MaxDrawdown      float64         `json:"max_drawdown"`
	TotalTrades      int             `json:"total_trades"`
	BuyTrades        int             `json:"buy_trades"`
	SellTrades       int             `json:"sell_trades"`
	ProfitableTrades int             `json:"profitable_trades"`
	WinRate          float64         `json:"win_rate"`
	DailyValues      []DailySnapshot `json:"daily_values"`
	Transactions     []Transaction   `json:"transactions"`
	Error            string          `json:"error,omitempty"`
}
