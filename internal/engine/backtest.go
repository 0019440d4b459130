package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aibacktest/internal/marketdata"
	"aibacktest/internal/oracle"
	"aibacktest/types"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// DefaultHistoryDays is the history window handed to the oracle when the
// run config does not set one.
const DefaultHistoryDays = 30

// ProgressFunc receives monotonically non-decreasing progress updates
// throughout a run.
type ProgressFunc func(percent int, message string)

// RunConfig describes one backtest run.
type RunConfig struct {
	Instrument     string
	DisplayName    string
	Start          time.Time
	End            time.Time
	Frequency      types.Frequency
	InitialCapital decimal.Decimal
	HistoryDays    int
}

// Backtest drives the date-by-date simulation loop. It owns the ledger, the
// per-run price cache and the per-run decision cache for exactly one run;
// none of them may be shared with another run.
type Backtest struct {
	cfg       RunConfig
	cache     *marketdata.Cache
	oracle    oracle.Oracle
	ledger    *Ledger
	executor  *Executor
	decisions map[string]*types.RawDecision
	snapshots []types.DailySnapshot
	log       *slog.Logger
}

// NewBacktest assembles a run from its collaborators. The cache must be
// fresh for this run.
func NewBacktest(cfg RunConfig, cache *marketdata.Cache, orc oracle.Oracle, log *slog.Logger) *Backtest {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = DefaultHistoryDays
	}
	ledger := NewLedger(cfg.InitialCapital)
	return &Backtest{
		cfg:       cfg,
		cache:     cache,
		oracle:    orc,
		ledger:    ledger,
		executor:  NewExecutor(ledger, log),
		decisions: make(map[string]*types.RawDecision),
		log:       log,
	}
}

// GenerateSchedule returns the decision dates from start to end inclusive.
// Strides are fixed day counts; monthly is 30 days, not a calendar month.
func GenerateSchedule(start, end time.Time, frequency types.Frequency) []time.Time {
	var dates []time.Time
	stride := frequency.Days()
	for d := start; !d.After(end); d = d.AddDate(0, 0, stride) {
		dates = append(dates, d)
	}
	return dates
}

// Run replays the schedule: resolve price, snapshot state, ask the oracle,
// normalize, execute, record the daily value. Dates without a resolvable
// price are skipped. Cancelling the context stops the loop between dates;
// metrics are then computed over whatever was recorded. Run never fails
// past its boundary; the Result carries an error field instead.
func (b *Backtest) Run(ctx context.Context, progress ProgressFunc) *types.Result {
	dates := GenerateSchedule(b.cfg.Start, b.cfg.End, b.cfg.Frequency)
	b.log.Info("backtest starting",
		"instrument", b.cfg.Instrument,
		"start", b.cfg.Start.Format(dateLayout),
		"end", b.cfg.End.Format(dateLayout),
		"frequency", b.cfg.Frequency,
		"decision_dates", len(dates),
		"initial_capital", b.cfg.InitialCapital)

	report(progress, 10, fmt.Sprintf("schedule ready: %d decision dates", len(dates)))
	report(progress, 15, "starting simulation")

	for i, date := range dates {
		if ctx.Err() != nil {
			b.log.Warn("run cancelled, stopping between dates", "completed", i, "total", len(dates))
			break
		}

		pct := 15 + int(float64(i)/float64(len(dates))*70)
		report(progress, pct, fmt.Sprintf("analyzing decision date %d/%d: %s", i+1, len(dates), date.Format(dateLayout)))

		price, ok := b.cache.Price(ctx, b.cfg.Instrument, date)
		if !ok {
			b.log.Warn("no price resolvable, skipping date", "date", date.Format(dateLayout))
			continue
		}

		state := b.ledger.Snapshot(b.cfg.Instrument, price)
		raw := b.decide(ctx, date, price, state)
		decision := Normalize(raw, state, price)
		b.executor.Execute(b.cfg.Instrument, decision, state, price, date)

		value := b.portfolioValue(ctx, date)
		b.snapshots = append(b.snapshots, types.DailySnapshot{
			Date:           date,
			PortfolioValue: value,
			Cash:           b.ledger.Cash(),
			StockValue:     value.Sub(b.ledger.Cash()),
		})
		b.log.Info("decision date done",
			"date", date.Format(dateLayout),
			"action", decision.Action,
			"portfolio_value", value,
			"cash", b.ledger.Cash())
	}

	report(progress, 90, "computing performance metrics")
	result := ComputePerformance(b.cfg.InitialCapital, b.snapshots, b.ledger.Transactions())
	report(progress, 100, "backtest complete")
	return result
}

// decide memoizes the oracle's raw answer per decision date. An oracle
// failure degrades to the neutral default decision and the run continues.
func (b *Backtest) decide(ctx context.Context, date time.Time, price decimal.Decimal, state types.PortfolioState) *types.RawDecision {
	key := date.Format(dateLayout)
	if raw, ok := b.decisions[key]; ok {
		return raw
	}

	history := b.cache.History(ctx, b.cfg.Instrument, date, b.cfg.HistoryDays)
	req := oracle.NewRequest(b.cfg.Instrument, b.cfg.DisplayName, date, price, history, state)

	raw, err := b.oracle.Decide(ctx, req)
	if err != nil {
		b.log.Warn("oracle failed, falling back to neutral decision", "date", key, "err", err)
		raw = oracle.DefaultDecision(fmt.Sprintf("oracle failure: %v", err))
	}

	b.decisions[key] = raw
	return raw
}

// portfolioValue values every held instrument at its own cached price for
// the date. Holdings whose price cannot be resolved contribute nothing.
func (b *Backtest) portfolioValue(ctx context.Context, date time.Time) decimal.Decimal {
	total := b.ledger.Cash()
	for instrument, shares := range b.ledger.Positions() {
		if !shares.IsPositive() {
			continue
		}
		if price, ok := b.cache.Price(ctx, instrument, date); ok {
			total = total.Add(shares.Mul(price))
		}
	}
	return total
}

func report(progress ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}
