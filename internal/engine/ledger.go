// Package engine runs the date-by-date backtest simulation: it owns the
// portfolio ledger, normalizes oracle recommendations into bounded
// decisions, executes them and reduces the recorded history into
// performance metrics.
package engine

import (
	"time"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

const recentTransactionCount = 5

// Ledger owns cash, per-instrument share holdings and the append-only
// transaction log for one run. Only the executor mutates it.
type Ledger struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	positions      map[string]decimal.Decimal
	transactions   []types.Transaction
}

// NewLedger creates a ledger holding the full initial capital in cash.
func NewLedger(initialCapital decimal.Decimal) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]decimal.Decimal),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	return l.cash
}

// Shares returns the current holding for the instrument.
func (l *Ledger) Shares(instrument string) decimal.Decimal {
	return l.positions[instrument]
}

// Positions returns a copy of the holdings map.
func (l *Ledger) Positions() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l.positions))
	for instrument, shares := range l.positions {
		out[instrument] = shares
	}
	return out
}

// Transactions returns the transaction log in occurrence order.
func (l *Ledger) Transactions() []types.Transaction {
	return l.transactions
}

// ApplyBuy converts cashAmount into fractional shares at price and records
// the transaction. The caller must have checked cashAmount against the cash
// balance.
func (l *Ledger) ApplyBuy(instrument string, cashAmount, price decimal.Decimal, date time.Time, confidence float64) decimal.Decimal {
	shares := cashAmount.Div(price)
	l.cash = l.cash.Sub(cashAmount)
	l.positions[instrument] = l.positions[instrument].Add(shares)
	l.transactions = append(l.transactions, types.Transaction{
		Date:       date,
		Instrument: instrument,
		Action:     types.ActionBuy,
		Shares:     shares,
		Price:      price,
		Amount:     cashAmount,
		Confidence: confidence,
	})
	return shares
}

// ApplySell converts shares back into cash at price and records the
// transaction. The caller must have checked shares against the holding.
func (l *Ledger) ApplySell(instrument string, shares, price decimal.Decimal, date time.Time, confidence float64) decimal.Decimal {
	revenue := shares.Mul(price)
	l.cash = l.cash.Add(revenue)
	l.positions[instrument] = l.positions[instrument].Sub(shares)
	l.transactions = append(l.transactions, types.Transaction{
		Date:       date,
		Instrument: instrument,
		Action:     types.ActionSell,
		Shares:     shares,
		Price:      price,
		Amount:     revenue,
		Confidence: confidence,
	})
	return revenue
}

// Snapshot derives the read-only portfolio state for the instrument at the
// given price.
//
// AvgCost sums the amounts of every historical BUY for the instrument and
// divides by the current holding; sells do not decrement the cost basis.
// A deliberate simplification, kept as-is.
func (l *Ledger) Snapshot(instrument string, price decimal.Decimal) types.PortfolioState {
	shares := l.positions[instrument]
	stockValue := shares.Mul(price)
	totalValue := l.cash.Add(stockValue)

	avgCost := decimal.Zero
	totalCost := decimal.Zero
	if shares.IsPositive() {
		for _, tx := range l.transactions {
			if tx.Instrument == instrument && tx.Action == types.ActionBuy {
				totalCost = totalCost.Add(tx.Amount)
			}
		}
		if totalCost.IsPositive() {
			avgCost = totalCost.Div(shares)
		}
	}

	pnl := decimal.Zero
	pnlPct := 0.0
	if shares.IsPositive() {
		pnl = price.Sub(avgCost).Mul(shares)
		if totalCost.IsPositive() {
			pnlPct = pnl.Div(totalCost).InexactFloat64() * 100
		}
	}

	capitalUsage := 0.0
	cashRatio := 0.0
	if l.initialCapital.IsPositive() {
		capitalUsage = totalValue.Sub(l.cash).Div(l.initialCapital).InexactFloat64()
		cashRatio = l.cash.Div(l.initialCapital).InexactFloat64()
	}
	stockRatio := 0.0
	if totalValue.IsPositive() {
		stockRatio = stockValue.Div(totalValue).InexactFloat64()
	}

	recent := l.transactions
	if len(recent) > recentTransactionCount {
		recent = recent[len(recent)-recentTransactionCount:]
	}

	return types.PortfolioState{
		CurrentShares:      shares,
		Cash:               l.cash,
		StockValue:         stockValue,
		TotalValue:         totalValue,
		InitialCapital:     l.initialCapital,
		AvgCost:            avgCost,
		TotalCost:          totalCost,
		UnrealizedPnL:      pnl,
		UnrealizedPnLPct:   pnlPct,
		CapitalUsage:       capitalUsage,
		AvailableCashRatio: cashRatio,
		StockRatio:         stockRatio,
		TotalTrades:        len(l.transactions),
		RecentTransactions: append([]types.Transaction(nil), recent...),
	}
}
