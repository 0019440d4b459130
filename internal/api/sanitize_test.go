package api

import (
	"encoding/json"
	"testing"
	"time"

	"aibacktest/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePrimitives(t *testing.T) {
	assert.Nil(t, Sanitize(nil))
	assert.Equal(t, "hello", Sanitize("hello"))
	assert.Equal(t, 42, Sanitize(42))
	assert.Equal(t, 1.5, Sanitize(1.5))
	assert.Equal(t, true, Sanitize(true))
}

func TestSanitizeDecimal(t *testing.T) {
	assert.Equal(t, 123.45, Sanitize(decimal.RequireFromString("123.45")))

	v := decimal.RequireFromString("9.5")
	assert.Equal(t, 9.5, Sanitize(&v))

	var nilDec *decimal.Decimal
	assert.Nil(t, Sanitize(nilDec))
}

func TestSanitizeTime(t *testing.T) {
	assert.Equal(t, "2024-01-02", Sanitize(time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)))
}

func TestSanitizeSliceAndMap(t *testing.T) {
	got := Sanitize([]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2)})
	assert.Equal(t, []any{1.0, 2.0}, got)

	m := Sanitize(map[string]decimal.Decimal{"a": decimal.NewFromInt(3)})
	assert.Equal(t, map[string]any{"a": 3.0}, m)
}

func TestSanitizeStruct(t *testing.T) {
	tx := types.Transaction{
		Date:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Instrument: "AAPL",
		Action:     types.ActionBuy,
		Shares:     decimal.RequireFromString("500"),
		Price:      decimal.RequireFromString("100"),
		Amount:     decimal.RequireFromString("50000"),
		Confidence: 0.8,
	}

	got, ok := Sanitize(tx).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "2024-01-02", got["date"])
	assert.Equal(t, "AAPL", got["instrument"])
	assert.Equal(t, types.ActionBuy, got["action"])
	assert.Equal(t, 500.0, got["shares"])
	assert.Equal(t, 0.8, got["confidence"])
}

func TestSanitizeResultOmitsEmptyError(t *testing.T) {
	result := &types.Result{
		InitialCapital: decimal.RequireFromString("100000"),
		FinalValue:     decimal.RequireFromString("105000"),
	}

	got, ok := Sanitize(result).(map[string]any)
	require.True(t, ok)

	assert.NotContains(t, got, "error")
	assert.Equal(t, 100000.0, got["initial_capital"])

	result.Error = "boom"
	got, ok = Sanitize(result).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", got["error"])
}

func TestSanitizeNestedResultIsJSONEncodable(t *testing.T) {
	result := &types.Result{
		InitialCapital: decimal.RequireFromString("100000"),
		DailyValues: []types.DailySnapshot{
			{
				Date:           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				PortfolioValue: decimal.RequireFromString("100000"),
				Cash:           decimal.RequireFromString("50000"),
				StockValue:     decimal.RequireFromString("50000"),
			},
		},
		Transactions: []types.Transaction{
			{
				Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Action: types.ActionBuy,
				Shares: decimal.RequireFromString("500"),
			},
		},
	}

	sanitized := Sanitize(result)
	data, err := json.Marshal(sanitized)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	days, ok := decoded["daily_values"].([]any)
	require.True(t, ok)
	require.Len(t, days, 1)
	first, ok := days[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-01-02", first["date"])
	assert.Equal(t, 100000.0, first["portfolio_value"])
}
