// Package oracle defines the contract with the external recommendation
// oracle and provides an HTTP client plus a best-effort extractor for
// free-form answers.
package oracle

import (
	"context"
	"time"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

// Request is everything the oracle sees for one decision date.
type Request struct {
	Instrument       string               `json:"instrument"`
	DisplayName      string               `json:"display_name"`
	Date             string               `json:"date"`
	CurrentPrice     decimal.Decimal      `json:"current_price"`
	HistoricalPrices []decimal.Decimal    `json:"historical_prices"`
	PortfolioState   types.PortfolioState `json:"portfolio_state"`
}

// Oracle produces a raw trading recommendation for one decision date. The
// answer may be partially populated; normalization happens downstream.
type Oracle interface {
	Decide(ctx context.Context, req Request) (*types.RawDecision, error)
}

// NewRequest builds a Request for the given decision date.
func NewRequest(instrument, displayName string, date time.Time, price decimal.Decimal, history []decimal.Decimal, state types.PortfolioState) Request {
	return Request{
		Instrument:       instrument,
		DisplayName:      displayName,
		Date:             date.Format("2006-01-02"),
		CurrentPrice:     price,
		HistoricalPrices: history,
		PortfolioState:   state,
	}
}

// DefaultDecision is the neutral fallback: HOLD at confidence 0.5 with no
// position change. Reasons default to "insufficient data" when none given.
func DefaultDecision(reasons ...string) *types.RawDecision {
	if len(reasons) == 0 {
		reasons = []string{"insufficient data"}
	}
	confidence := 0.5
	positionSize := 0.0
	return &types.RawDecision{
		Action:        string(types.ActionHold),
		Confidence:    &confidence,
		PositionSize:  &positionSize,
		HoldingPeriod: "medium",
		RiskLevel:     "medium",
		Reasons:       reasons,
	}
}
