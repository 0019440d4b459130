package engine

import (
	"log/slog"
	"time"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

// minimumCash is the floor below which no buy is attempted.
var minimumCash = decimal.NewFromInt(1)

// Executor turns normalized decisions into ledger mutations. One execution
// per decision date; no retries, no partial fills, fractional shares
// allowed.
type Executor struct {
	ledger *Ledger
	log    *slog.Logger
}

// NewExecutor wires an executor to the run's ledger.
func NewExecutor(ledger *Ledger, log *slog.Logger) *Executor {
	return &Executor{ledger: ledger, log: log}
}

// Execute applies the decision against the ledger at the given price.
// Buys need confidence above 0.5 and cash above a small epsilon; sells need
// an existing position and liquidate it fully unless the position size is a
// proper fraction. Anything else is a no-op.
func (e *Executor) Execute(instrument string, decision types.Decision, state types.PortfolioState, price decimal.Decimal, date time.Time) {
	switch decision.Action {
	case types.ActionBuy:
		e.executeBuy(instrument, decision, price, date)
	case types.ActionSell:
		e.executeSell(instrument, decision, state, price, date)
	default:
		e.log.Debug("holding position",
			"instrument", instrument,
			"shares", state.CurrentShares,
			"price", price)
	}
}

func (e *Executor) executeBuy(instrument string, decision types.Decision, price decimal.Decimal, date time.Time) {
	if decision.Confidence <= 0.5 {
		e.log.Debug("buy skipped, confidence too low", "instrument", instrument, "confidence", decision.Confidence)
		return
	}
	if !e.ledger.Cash().GreaterThan(minimumCash) {
		e.log.Info("buy skipped, insufficient cash", "instrument", instrument, "cash", e.ledger.Cash())
		return
	}

	amount := e.ledger.Cash().Mul(decimal.NewFromFloat(decision.PositionSize))
	shares := e.ledger.ApplyBuy(instrument, amount, price, date, decision.Confidence)
	e.log.Info("bought",
		"instrument", instrument,
		"shares", shares,
		"price", price,
		"amount", amount,
		"reasons", decision.Reasons)
}

func (e *Executor) executeSell(instrument string, decision types.Decision, state types.PortfolioState, price decimal.Decimal, date time.Time) {
	if !state.HasPosition() {
		e.log.Debug("sell skipped, no position", "instrument", instrument)
		return
	}

	// A proper fraction sells that share of the position; anything else
	// liquidates it.
	shares := state.CurrentShares
	if decision.PositionSize > 0 && decision.PositionSize < 1 {
		shares = shares.Mul(decimal.NewFromFloat(decision.PositionSize))
	}
	revenue := e.ledger.ApplySell(instrument, shares, price, date, decision.Confidence)
	e.log.Info("sold",
		"instrument", instrument,
		"shares", shares,
		"price", price,
		"revenue", revenue,
		"reasons", decision.Reasons)
}
