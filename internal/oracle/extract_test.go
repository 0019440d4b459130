package oracle

import (
	"testing"

	"aibacktest/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDecisionJSON(t *testing.T) {
	raw := ExtractDecision(`{"action":"BUY","confidence":0.8,"position_size":0.3,"reasons":["momentum"]}`)

	require.NotNil(t, raw)
	assert.Equal(t, "BUY", raw.Action)
	require.NotNil(t, raw.Confidence)
	assert.InDelta(t, 0.8, *raw.Confidence, 1e-9)
	require.NotNil(t, raw.PositionSize)
	assert.InDelta(t, 0.3, *raw.PositionSize, 1e-9)
	assert.Equal(t, []string{"momentum"}, raw.Reasons)
}

func TestExtractDecisionJSONEmbeddedInProse(t *testing.T) {
	text := `Based on the recent trend my recommendation is:
{"action":"SELL","confidence":0.7}
Let me know if you need more detail.`

	raw := ExtractDecision(text)

	assert.Equal(t, "SELL", raw.Action)
	require.NotNil(t, raw.Confidence)
	assert.InDelta(t, 0.7, *raw.Confidence, 1e-9)
}

func TestExtractDecisionFreeText(t *testing.T) {
	text := `I would buy here. Target price: 150.5, stop loss: 120.
Position size: 25%. Confidence: 8.`

	raw := ExtractDecision(text)

	assert.Equal(t, string(types.ActionBuy), raw.Action)
	require.NotNil(t, raw.TargetPrice)
	assert.True(t, raw.TargetPrice.Equal(decimal.RequireFromString("150.5")), "target = %v", raw.TargetPrice)
	require.NotNil(t, raw.StopLoss)
	assert.True(t, raw.StopLoss.Equal(decimal.RequireFromString("120")), "stop = %v", raw.StopLoss)
	require.NotNil(t, raw.PositionSize)
	assert.InDelta(t, 0.25, *raw.PositionSize, 1e-9)
	require.NotNil(t, raw.Confidence)
	assert.InDelta(t, 0.8, *raw.Confidence, 1e-9)
}

func TestExtractDecisionSellVerbs(t *testing.T) {
	for _, text := range []string{
		"time to trim the position",
		"I would liquidate everything",
		"reduce exposure now",
	} {
		raw := ExtractDecision(text)
		assert.Equal(t, string(types.ActionSell), raw.Action, "text %q", text)
	}
}

func TestExtractDecisionBuyVerbs(t *testing.T) {
	for _, text := range []string{
		"accumulate on weakness",
		"add to position gradually",
	} {
		raw := ExtractDecision(text)
		assert.Equal(t, string(types.ActionBuy), raw.Action, "text %q", text)
	}
}

func TestExtractDecisionNoSignals(t *testing.T) {
	raw := ExtractDecision("the market is uncertain, nothing actionable today")

	assert.Equal(t, string(types.ActionHold), raw.Action)
	require.NotNil(t, raw.Confidence)
	assert.InDelta(t, 0.5, *raw.Confidence, 1e-9)
}

func TestExtractDecisionMalformedJSONFallsBack(t *testing.T) {
	raw := ExtractDecision(`{"confidence": , "oops": } sell everything`)

	// The broken object is discarded; the keyword pass sees "sell".
	assert.Equal(t, string(types.ActionSell), raw.Action)
}

func TestDefaultDecision(t *testing.T) {
	raw := DefaultDecision()

	assert.Equal(t, string(types.ActionHold), raw.Action)
	require.NotNil(t, raw.Confidence)
	assert.InDelta(t, 0.5, *raw.Confidence, 1e-9)
	require.NotNil(t, raw.PositionSize)
	assert.Zero(t, *raw.PositionSize)
	assert.Equal(t, []string{"insufficient data"}, raw.Reasons)

	withReason := DefaultDecision("oracle failure: boom")
	assert.Equal(t, []string{"oracle failure: boom"}, withReason.Reasons)
}
