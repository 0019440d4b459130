package engine

import (
	"io"
	"log/slog"
	"testing"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutorBuy(t *testing.T) {
	tests := []struct {
		name       string
		capital    decimal.Decimal
		decision   types.Decision
		wantShares decimal.Decimal
		wantCash   decimal.Decimal
		wantTrades int
	}{
		{
			name:       "buy half the cash",
			capital:    d("100000"),
			decision:   types.Decision{Action: types.ActionBuy, Confidence: 0.8, PositionSize: 0.5},
			wantShares: d("500"),
			wantCash:   d("50000"),
			wantTrades: 1,
		},
		{
			name:       "confidence at the gate is rejected",
			capital:    d("100000"),
			decision:   types.Decision{Action: types.ActionBuy, Confidence: 0.5, PositionSize: 0.5},
			wantShares: d("0"),
			wantCash:   d("100000"),
			wantTrades: 0,
		},
		{
			name:       "no cash left",
			capital:    d("1"),
			decision:   types.Decision{Action: types.ActionBuy, Confidence: 0.9, PositionSize: 0.5},
			wantShares: d("0"),
			wantCash:   d("1"),
			wantTrades: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(tt.capital)
			e := NewExecutor(ledger, testLogger())
			state := ledger.Snapshot("AAPL", d("100"))

			e.Execute("AAPL", tt.decision, state, d("100"), testDate)

			if !ledger.Shares("AAPL").Equal(tt.wantShares) {
				t.Errorf("Shares = %v, want %v", ledger.Shares("AAPL"), tt.wantShares)
			}
			if !ledger.Cash().Equal(tt.wantCash) {
				t.Errorf("Cash = %v, want %v", ledger.Cash(), tt.wantCash)
			}
			if len(ledger.Transactions()) != tt.wantTrades {
				t.Errorf("Transactions len = %d, want %d", len(ledger.Transactions()), tt.wantTrades)
			}
		})
	}
}

func TestExecutorSell(t *testing.T) {
	tests := []struct {
		name       string
		decision   types.Decision
		wantShares decimal.Decimal
	}{
		{
			name:       "fractional size sells that share",
			decision:   types.Decision{Action: types.ActionSell, Confidence: 0.6, PositionSize: 0.5},
			wantShares: d("250"),
		},
		{
			name:       "zero size liquidates fully",
			decision:   types.Decision{Action: types.ActionSell, Confidence: 0.6, PositionSize: 0},
			wantShares: d("0"),
		},
		{
			name:       "size of one liquidates fully",
			decision:   types.Decision{Action: types.ActionSell, Confidence: 0.6, PositionSize: 1},
			wantShares: d("0"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(d("100000"))
			ledger.ApplyBuy("AAPL", d("50000"), d("100"), testDate, 0.8)
			e := NewExecutor(ledger, testLogger())
			state := ledger.Snapshot("AAPL", d("100"))

			e.Execute("AAPL", tt.decision, state, d("100"), testDate.AddDate(0, 0, 7))

			if !ledger.Shares("AAPL").Equal(tt.wantShares) {
				t.Errorf("Shares = %v, want %v", ledger.Shares("AAPL"), tt.wantShares)
			}
		})
	}
}

func TestExecutorSellWithoutPosition(t *testing.T) {
	ledger := NewLedger(d("100000"))
	e := NewExecutor(ledger, testLogger())
	state := ledger.Snapshot("AAPL", d("100"))

	e.Execute("AAPL", types.Decision{Action: types.ActionSell, Confidence: 0.9, PositionSize: 0.5}, state, d("100"), testDate)

	if len(ledger.Transactions()) != 0 {
		t.Errorf("Transactions len = %d, want 0", len(ledger.Transactions()))
	}
	if !ledger.Cash().Equal(d("100000")) {
		t.Errorf("Cash = %v, want untouched 100000", ledger.Cash())
	}
}

func TestExecutorHoldIsNoOp(t *testing.T) {
	ledger := NewLedger(d("100000"))
	e := NewExecutor(ledger, testLogger())
	state := ledger.Snapshot("AAPL", d("100"))

	e.Execute("AAPL", types.Decision{Action: types.ActionHold, Confidence: 0.9}, state, d("100"), testDate)

	if len(ledger.Transactions()) != 0 {
		t.Errorf("Transactions len = %d, want 0", len(ledger.Transactions()))
	}
}
