package marketdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	closes []ClosePrice
	err    error
	calls  int
}

func (s *stubSource) DailyCloses(_ context.Context, _ string, start, end time.Time) ([]ClosePrice, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []ClosePrice
	for _, cp := range s.closes {
		if !cp.Date.Before(start) && !cp.Date.After(end) {
			out = append(out, cp)
		}
	}
	return out, nil
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func closeAt(date, price string) ClosePrice {
	return ClosePrice{Date: day(date), Close: decimal.RequireFromString(price)}
}

func newTestCache(source Source) *Cache {
	return NewCache(source, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCachePriceExactDate(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-01-03", "100"), closeAt("2024-01-04", "104")}}
	c := newTestCache(source)

	price, ok := c.Price(context.Background(), "AAPL", day("2024-01-03"))

	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("100")), "price = %v", price)
}

func TestCachePriceNearestDateWins(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-01-03", "100"), closeAt("2024-01-06", "106")}}
	c := newTestCache(source)

	// Jan 5 is two days from Jan 3 and one day from Jan 6.
	price, ok := c.Price(context.Background(), "AAPL", day("2024-01-05"))

	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("106")), "price = %v", price)
}

func TestCachePriceTieKeepsFirstSeen(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-01-03", "100"), closeAt("2024-01-05", "105")}}
	c := newTestCache(source)

	price, ok := c.Price(context.Background(), "AAPL", day("2024-01-04"))

	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("100")), "price = %v", price)
}

func TestCachePriceMemoizes(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-01-03", "100")}}
	c := newTestCache(source)

	_, ok := c.Price(context.Background(), "AAPL", day("2024-01-03"))
	require.True(t, ok)
	_, ok = c.Price(context.Background(), "AAPL", day("2024-01-03"))
	require.True(t, ok)

	assert.Equal(t, 1, source.calls)
}

func TestCachePriceFailureNotCached(t *testing.T) {
	source := &stubSource{err: errors.New("datasource down")}
	c := newTestCache(source)

	_, ok := c.Price(context.Background(), "AAPL", day("2024-01-03"))
	assert.False(t, ok)
	_, ok = c.Price(context.Background(), "AAPL", day("2024-01-03"))
	assert.False(t, ok)

	assert.Equal(t, 2, source.calls, "failed lookups must hit the source again")
}

func TestCachePriceEmptyWindow(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-03-01", "100")}}
	c := newTestCache(source)

	_, ok := c.Price(context.Background(), "AAPL", day("2024-01-03"))

	assert.False(t, ok)
}

func TestCacheHistoryTruncatesToRequestedDays(t *testing.T) {
	var closes []ClosePrice
	start := day("2024-01-01")
	for i := 0; i < 15; i++ {
		closes = append(closes, ClosePrice{
			Date:  start.AddDate(0, 0, i),
			Close: decimal.NewFromInt(int64(100 + i)),
		})
	}
	c := newTestCache(&stubSource{closes: closes})

	hist := c.History(context.Background(), "AAPL", day("2024-01-15"), 10)

	require.Len(t, hist, 10)
	assert.True(t, hist[0].Equal(decimal.NewFromInt(105)), "oldest kept close = %v", hist[0])
	assert.True(t, hist[9].Equal(decimal.NewFromInt(114)), "newest close = %v", hist[9])
}

func TestCacheHistoryMemoizes(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-01-03", "100")}}
	c := newTestCache(source)

	c.History(context.Background(), "AAPL", day("2024-01-05"), 10)
	c.History(context.Background(), "AAPL", day("2024-01-05"), 10)

	assert.Equal(t, 1, source.calls)
}

func TestCacheHistoryDifferentWindowsCachedSeparately(t *testing.T) {
	source := &stubSource{closes: []ClosePrice{closeAt("2024-01-03", "100")}}
	c := newTestCache(source)

	c.History(context.Background(), "AAPL", day("2024-01-05"), 10)
	c.History(context.Background(), "AAPL", day("2024-01-05"), 20)

	assert.Equal(t, 2, source.calls)
}

func TestCacheHistoryFailureReturnsNil(t *testing.T) {
	source := &stubSource{err: errors.New("datasource down")}
	c := newTestCache(source)

	hist := c.History(context.Background(), "AAPL", day("2024-01-05"), 10)

	assert.Nil(t, hist)
	c.History(context.Background(), "AAPL", day("2024-01-05"), 10)
	assert.Equal(t, 2, source.calls, "failed lookups must hit the source again")
}
