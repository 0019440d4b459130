package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// lookaheadDays is the half-width of the window queried around a spot date,
// so weekends and holidays still resolve to a nearby close.
const lookaheadDays = 5

// historyPadDays widens a history lookback so non-trading days don't starve
// the window.
const historyPadDays = 10

// Cache memoizes spot and history lookups against a Source. Entries are
// immutable once written and never evicted; a Cache belongs to exactly one
// run and must not be shared across runs.
type Cache struct {
	source    Source
	log       *slog.Logger
	prices    map[string]decimal.Decimal
	histories map[string][]decimal.Decimal
}

// NewCache creates an empty per-run cache over the given source.
func NewCache(source Source, log *slog.Logger) *Cache {
	return &Cache{
		source:    source,
		log:       log,
		prices:    make(map[string]decimal.Decimal),
		histories: make(map[string][]decimal.Decimal),
	}
}

// Price resolves the instrument's closing price for the date, preferring the
// close whose date is nearest to the requested one (first seen wins ties).
// A source failure or empty window is non-fatal: the second return is false
// and nothing is cached.
func (c *Cache) Price(ctx context.Context, instrument string, date time.Time) (decimal.Decimal, bool) {
	key := fmt.Sprintf("%s_%s", instrument, date.Format(dateLayout))
	if price, ok := c.prices[key]; ok {
		return price, true
	}

	start := date.AddDate(0, 0, -lookaheadDays)
	end := date.AddDate(0, 0, lookaheadDays)
	closes, err := c.source.DailyCloses(ctx, instrument, start, end)
	if err != nil {
		c.log.Warn("price lookup failed", "instrument", instrument, "date", date.Format(dateLayout), "err", err)
		return decimal.Decimal{}, false
	}
	if len(closes) == 0 {
		return decimal.Decimal{}, false
	}

	best := closes[0]
	bestDiff := absDuration(closes[0].Date.Sub(date))
	for _, cp := range closes[1:] {
		if diff := absDuration(cp.Date.Sub(date)); diff < bestDiff {
			best = cp
			bestDiff = diff
		}
	}

	c.prices[key] = best.Close
	return best.Close, true
}

// History returns up to days closing prices ending at the given date, oldest
// first. The source is queried with a padded lookback and the result is
// truncated to the most recent days entries. Results, including empty ones,
// are cached per (instrument, end, days).
func (c *Cache) History(ctx context.Context, instrument string, end time.Time, days int) []decimal.Decimal {
	key := fmt.Sprintf("hist_%s_%s_%d", instrument, end.Format(dateLayout), days)
	if hist, ok := c.histories[key]; ok {
		return hist
	}

	start := end.AddDate(0, 0, -(days + historyPadDays))
	closes, err := c.source.DailyCloses(ctx, instrument, start, end)
	if err != nil {
		c.log.Warn("history lookup failed", "instrument", instrument, "end", end.Format(dateLayout), "err", err)
		return nil
	}

	prices := make([]decimal.Decimal, 0, len(closes))
	for _, cp := range closes {
		prices = append(prices, cp.Close)
	}
	if len(prices) > days {
		prices = prices[len(prices)-days:]
	}

	c.histories[key] = prices
	return prices
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
