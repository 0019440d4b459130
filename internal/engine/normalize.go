package engine

import (
	"math"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

// The override policy is order-sensitive: the chain below is evaluated
// first-match-wins, and the trailing diversification rule afterwards may
// overwrite whatever the chain picked. Keep the ordering and thresholds
// exactly as they are.
type overrideRule struct {
	reason string
	when   func(d *types.Decision, s *types.PortfolioState) bool
	apply  func(d *types.Decision)
}

var overrideRules = []overrideRule{
	{
		reason: "no position and high confidence, opening position",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return !s.HasPosition() && d.Confidence > 0.6
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionBuy
			d.PositionSize = math.Min(0.4, d.Confidence*0.6)
		},
	},
	{
		reason: "large unrealized loss, cutting position",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return s.HasPosition() && s.UnrealizedPnLPct < -3 && d.Confidence < 0.5
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionSell
			d.PositionSize = 0.4
		},
	},
	{
		reason: "solid unrealized gain, taking partial profits",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return s.HasPosition() && s.UnrealizedPnLPct > 8 && d.Confidence < 0.6
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionSell
			d.PositionSize = 0.3
		},
	},
	{
		reason: "stock ratio too high, trimming to rebalance",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return s.HasPosition() && s.AvailableCashRatio < 0.2 && d.Confidence < 0.7
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionSell
			d.PositionSize = 0.25
		},
	},
	{
		reason: "high cash ratio and high confidence, buying aggressively",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return s.AvailableCashRatio > 0.8 && d.Confidence > 0.7
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionBuy
			d.PositionSize = math.Min(0.5, d.Confidence*0.7)
		},
	},
	{
		reason: "confidence falling, reducing exposure",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return s.HasPosition() && d.Confidence < 0.4
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionSell
			d.PositionSize = 0.3
		},
	},
	{
		reason: "low confidence and low cash, trimming slightly",
		when: func(d *types.Decision, s *types.PortfolioState) bool {
			return s.HasPosition() && d.Confidence < 0.5 && s.AvailableCashRatio < 0.3
		},
		apply: func(d *types.Decision) {
			d.Action = types.ActionSell
			d.PositionSize = 0.2
		},
	},
}

var trailingRule = overrideRule{
	reason: "diversification after consecutive trades, trimming",
	when: func(d *types.Decision, s *types.PortfolioState) bool {
		return s.TotalTrades > 0 && s.HasPosition() && s.TotalTrades%3 == 0 && d.Confidence < 0.65
	},
	apply: func(d *types.Decision) {
		d.Action = types.ActionSell
		d.PositionSize = 0.25
	},
}

// Normalize repairs, bounds and conditionally overrides a raw oracle
// recommendation using the current portfolio state. The result always has
// a valid action, confidence and position size in [0,1] and at least one
// reason. price may be zero when unknown; default target/stop prices are
// only derived from a known price.
func Normalize(raw *types.RawDecision, state types.PortfolioState, price decimal.Decimal) types.Decision {
	if raw == nil {
		raw = &types.RawDecision{}
	}

	d := fillDefaults(raw)
	d.Confidence = clampRatio(d.Confidence, 10)
	d.PositionSize = clampRatio(d.PositionSize, 100)
	if !d.Action.Valid() {
		d.Action = types.ActionHold
	}

	if price.IsPositive() {
		fillDefaultPrices(&d, price)
	}

	for _, rule := range overrideRules {
		if rule.when(&d, &state) {
			rule.apply(&d)
			d.Reasons = append(d.Reasons, rule.reason)
			break
		}
	}
	if trailingRule.when(&d, &state) {
		trailingRule.apply(&d)
		d.Reasons = append(d.Reasons, trailingRule.reason)
	}

	return d
}

func fillDefaults(raw *types.RawDecision) types.Decision {
	d := types.Decision{
		Action:        types.Action(raw.Action),
		Confidence:    0.5,
		TargetPrice:   raw.TargetPrice,
		StopLoss:      raw.StopLoss,
		HoldingPeriod: raw.HoldingPeriod,
		RiskLevel:     raw.RiskLevel,
		Reasons:       raw.Reasons,
	}
	if raw.Action == "" {
		d.Action = types.ActionHold
	}
	if raw.Confidence != nil {
		d.Confidence = *raw.Confidence
	}
	if raw.PositionSize != nil {
		d.PositionSize = *raw.PositionSize
	}
	if d.HoldingPeriod == "" {
		d.HoldingPeriod = "medium"
	}
	if d.RiskLevel == "" {
		d.RiskLevel = "medium"
	}
	if len(d.Reasons) == 0 {
		d.Reasons = []string{"insufficient data"}
	}
	return d
}

// clampRatio repairs out-of-scale values: ratios reported on a 0-10 or
// 0-100 scale are divided down once, then clamped to [0,1].
func clampRatio(v float64, scale float64) float64 {
	if v > 1.0 {
		v /= scale
	}
	return math.Max(0.0, math.Min(1.0, v))
}

func fillDefaultPrices(d *types.Decision, price decimal.Decimal) {
	if d.TargetPrice == nil {
		switch d.Action {
		case types.ActionBuy:
			target := price.Mul(decimal.NewFromFloat(1.10))
			d.TargetPrice = &target
		case types.ActionSell:
			target := price.Mul(decimal.NewFromFloat(0.90))
			d.TargetPrice = &target
		}
	}
	if d.StopLoss == nil {
		switch d.Action {
		case types.ActionBuy:
			stop := price.Mul(decimal.NewFromFloat(0.95))
			d.StopLoss = &stop
		case types.ActionSell:
			stop := price.Mul(decimal.NewFromFloat(1.05))
			d.StopLoss = &stop
		}
	}
}
