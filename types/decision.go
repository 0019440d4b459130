package types

import "github.com/shopspring/decimal"

// RawDecision is the oracle's answer as received, before normalization.
// Pointer fields distinguish "absent" from a legitimate zero so the
// normalizer can fill defaults only for what the oracle left out.
type RawDecision struct {
	Action        string           `json:"action"`
	Confidence    *float64         `json:"confidence"`
	TargetPrice   *decimal.Decimal `json:"target_price"`
	StopLoss      *decimal.Decimal `json:"stop_loss"`
	PositionSize  *float64         `json:"position_size"`
	HoldingPeriod string           `json:"holding_period"`
	RiskLevel     string           `json:"risk_level"`
	Reasons       []string         `json:"reasons"`
}

// Decision is a normalized, bounded recommendation ready for execution.
// Confidence and PositionSize are always in [0,1] and Action is always one
// of BUY, SELL or HOLD.
type Decision struct {
	Action        Action           `json:"action"`
	Confidence    float64          `json:"confidence"`
	TargetPrice   *decimal.Decimal `json:"target_price"`
	StopLoss      *decimal.Decimal `json:"stop_loss"`
	PositionSize  float64          `json:"position_size"`
	HoldingPeriod string           `json:"holding_period"`
	RiskLevel     string           `json:"risk_level"`
	Reasons       []string         `json:"reasons"`
}
