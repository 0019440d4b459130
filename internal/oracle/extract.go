package oracle

import (
	"encoding/json"
	"regexp"
	"strconv"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

var (
	jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)
	buyRe        = regexp.MustCompile(`(?i)\b(buy|accumulate|add to position|increase position)\b`)
	sellRe       = regexp.MustCompile(`(?i)\b(sell|reduce|trim|liquidate|exit)\b`)
	targetRe     = regexp.MustCompile(`(?i)target\s*price\s*[:：]?\s*([0-9]+(?:\.[0-9]+)?)`)
	stopRe       = regexp.MustCompile(`(?i)stop\s*loss\s*[:：]?\s*([0-9]+(?:\.[0-9]+)?)`)
	positionRe   = regexp.MustCompile(`(?i)position\s*(?:size)?\s*[:：]?\s*([0-9]+(?:\.[0-9]+)?)\s*%`)
	confidenceRe = regexp.MustCompile(`(?i)confidence\s*[:：]?\s*([0-9]+(?:\.[0-9]+)?)`)
)

// ExtractDecision recovers a decision from an oracle answer. It first looks
// for an embedded JSON object; when none parses it falls back to keyword
// spotting and labeled numeric fields. It always returns a decision, at
// worst the neutral default.
func ExtractDecision(text string) *types.RawDecision {
	if m := jsonObjectRe.FindString(text); m != "" {
		var raw types.RawDecision
		if err := json.Unmarshal([]byte(m), &raw); err == nil {
			return &raw
		}
	}
	return parseText(text)
}

// parseText is the fallback path: action verbs, "target price: N",
// "stop loss: N", "position: N%" and "confidence: N" (a 0-10 scale,
// rescaled to 0-1).
func parseText(text string) *types.RawDecision {
	decision := DefaultDecision()

	switch {
	case buyRe.MatchString(text):
		decision.Action = string(types.ActionBuy)
	case sellRe.MatchString(text):
		decision.Action = string(types.ActionSell)
	default:
		decision.Action = string(types.ActionHold)
	}

	if price, ok := matchDecimal(targetRe, text); ok {
		decision.TargetPrice = price
	}
	if price, ok := matchDecimal(stopRe, text); ok {
		decision.StopLoss = price
	}
	if v, ok := matchFloat(positionRe, text); ok {
		size := v / 100.0
		decision.PositionSize = &size
	}
	if v, ok := matchFloat(confidenceRe, text); ok {
		conf := v / 10.0
		decision.Confidence = &conf
	}

	return decision
}

func matchFloat(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchDecimal(re *regexp.Regexp, text string) (*decimal.Decimal, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil, false
	}
	return &d, true
}
