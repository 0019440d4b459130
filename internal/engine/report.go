package engine

import (
	"math"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

// ComputePerformance reduces the value series and transaction log into the
// run's Result. A run that never produced a snapshot yields a Result with
// the error field set instead of metrics.
func ComputePerformance(initialCapital decimal.Decimal, snapshots []types.DailySnapshot, transactions []types.Transaction) *types.Result {
	if len(snapshots) == 0 {
		return &types.Result{
			InitialCapital: initialCapital,
			FinalValue:     initialCapital,
			Error:          "no portfolio snapshots recorded",
		}
	}

	values := make([]decimal.Decimal, len(snapshots))
	for i, s := range snapshots {
		values[i] = s.PortfolioValue
	}
	finalValue := values[len(values)-1]

	totalReturn := 0.0
	if initialCapital.IsPositive() {
		totalReturn = finalValue.Sub(initialCapital).Div(initialCapital).InexactFloat64()
	}

	returns := periodReturns(values)
	volatility := 0.0
	sharpe := 0.0
	if len(returns) > 1 {
		volatility = popStdDev(returns)
		if volatility > 0 {
			sharpe = mean(returns) / volatility
		}
	}

	buys, sells := 0, 0
	for _, tx := range transactions {
		switch tx.Action {
		case types.ActionBuy:
			buys++
		case types.ActionSell:
			sells++
		}
	}
	profitable, completed := pairTrades(transactions)
	winRate := 0.0
	if completed > 0 {
		winRate = float64(profitable) / float64(completed)
	}

	return &types.Result{
		InitialCapital:   initialCapital,
		FinalValue:       finalValue,
		TotalReturn:      totalReturn,
		TotalProfit:      finalValue.Sub(initialCapital),
		MaxValue:         maxDecimal(values),
		MinValue:         minDecimal(values),
		Volatility:       volatility,
		SharpeRatio:      sharpe,
		MaxDrawdown:      MaxDrawdown(values),
		TotalTrades:      len(transactions),
		BuyTrades:        buys,
		SellTrades:       sells,
		ProfitableTrades: profitable,
		WinRate:          winRate,
		DailyValues:      snapshots,
		Transactions:     transactions,
	}
}

// MaxDrawdown is the largest peak-to-trough decline as a fraction of the
// running peak.
func MaxDrawdown(values []decimal.Decimal) float64 {
	if len(values) < 2 {
		return 0.0
	}

	peak := values[0].InexactFloat64()
	maxDrawdown := 0.0
	for _, v := range values[1:] {
		value := v.InexactFloat64()
		if value > peak {
			peak = value
		} else if peak > 0 {
			drawdown := (peak - value) / peak
			maxDrawdown = math.Max(maxDrawdown, drawdown)
		}
	}
	return maxDrawdown
}

// pairTrades approximates trade quality without lot matching: a sell is
// profitable when its price beats the mean price of every buy dated on or
// before it.
func pairTrades(transactions []types.Transaction) (profitable, completed int) {
	for _, sell := range transactions {
		if sell.Action != types.ActionSell {
			continue
		}

		sum := decimal.Zero
		count := 0
		for _, buy := range transactions {
			if buy.Action == types.ActionBuy && !buy.Date.After(sell.Date) {
				sum = sum.Add(buy.Price)
				count++
			}
		}
		if count == 0 {
			continue
		}

		completed++
		avgBuyPrice := sum.Div(decimal.NewFromInt(int64(count)))
		if sell.Price.GreaterThan(avgBuyPrice) {
			profitable++
		}
	}
	return profitable, completed
}

func periodReturns(values []decimal.Decimal) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1].InexactFloat64()
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i].InexactFloat64()-prev)/prev)
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popStdDev is the population standard deviation.
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	varianceSum := 0.0
	for _, x := range xs {
		diff := x - m
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / float64(len(xs)))
}

func maxDecimal(values []decimal.Decimal) decimal.Decimal {
	max := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func minDecimal(values []decimal.Decimal) decimal.Decimal {
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}
