package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"aibacktest/internal/engine"
	"aibacktest/internal/journal"
	"aibacktest/internal/marketdata"
	"aibacktest/internal/oracle"
	"aibacktest/internal/repository"
	"aibacktest/types"

	"github.com/oklog/ulid/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var runFlags struct {
	instrument string
	name       string
	start      string
	end        string
	frequency  string
	capital    float64
	csvPath    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest and print the summary",
	RunE:  runBacktest,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.instrument, "instrument", "", "instrument ticker (required)")
	runCmd.Flags().StringVar(&runFlags.name, "name", "", "display name for the instrument")
	runCmd.Flags().StringVar(&runFlags.start, "start", "", "start date, YYYY-MM-DD (required)")
	runCmd.Flags().StringVar(&runFlags.end, "end", "", "end date, YYYY-MM-DD (required)")
	runCmd.Flags().StringVar(&runFlags.frequency, "frequency", "weekly", "decision frequency: daily, weekly or monthly")
	runCmd.Flags().Float64Var(&runFlags.capital, "capital", 0, "initial capital (defaults to config)")
	runCmd.Flags().StringVar(&runFlags.csvPath, "csv", "", "export the transaction log to this CSV file")
	_ = runCmd.MarkFlagRequired("instrument")
	_ = runCmd.MarkFlagRequired("start")
	_ = runCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(runCmd)
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("no database URL configured")
	}
	if cfg.Oracle.URL == "" {
		return errors.New("no oracle URL configured")
	}

	start, err := time.Parse(dateLayout, runFlags.start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse(dateLayout, runFlags.end)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	capital := runFlags.capital
	if capital <= 0 {
		capital = cfg.Backtest.InitialCapital
	}
	name := runFlags.name
	if name == "" {
		name = runFlags.instrument
	}

	db, err := repository.NewDatabase(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to price datasource: %w", err)
	}
	defer db.Close()

	orc := oracle.NewHTTPOracle(cfg.Oracle.URL, cfg.OracleTimeout(), cfg.Oracle.MaxAttempts, log)
	bt := engine.NewBacktest(engine.RunConfig{
		Instrument:     runFlags.instrument,
		DisplayName:    name,
		Start:          start,
		End:            end,
		Frequency:      types.Frequency(runFlags.frequency),
		InitialCapital: decimal.NewFromFloat(capital),
		HistoryDays:    cfg.Backtest.HistoryDays,
	}, marketdata.NewCache(db, log), orc, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	bar := newProgressBar()
	result := bt.Run(ctx, func(percent int, message string) {
		_ = bar.Set(percent)
		bar.Describe(message)
	})
	fmt.Println()

	if result.Error != "" {
		return fmt.Errorf("backtest failed: %s", result.Error)
	}

	printSummary(result)

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		if err := j.Record(ulid.Make().String(), runFlags.instrument, result); err != nil {
			return fmt.Errorf("record run in journal: %w", err)
		}
	}

	if runFlags.csvPath != "" {
		if err := journal.ExportTransactionsCSV(runFlags.csvPath, result.Transactions); err != nil {
			return err
		}
		fmt.Printf("transactions written to %s\n", runFlags.csvPath)
	}
	return nil
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func printSummary(r *types.Result) {
	fmt.Println("===== Backtest Report =====")
	fmt.Printf("Initial Capital:   %s\n", r.InitialCapital.StringFixed(2))
	fmt.Printf("Final Value:       %s\n", r.FinalValue.StringFixed(2))
	fmt.Printf("Total Profit:      %s\n", r.TotalProfit.StringFixed(2))
	fmt.Printf("Total Return:      %.2f%%\n", r.TotalReturn*100)
	fmt.Printf("Max Drawdown:      %.2f%%\n", r.MaxDrawdown*100)
	fmt.Printf("Volatility:        %.4f\n", r.Volatility)
	fmt.Printf("Sharpe Ratio:      %.4f\n", r.SharpeRatio)
	fmt.Printf("Total Trades:      %d (%d buys, %d sells)\n", r.TotalTrades, r.BuyTrades, r.SellTrades)
	fmt.Printf("Profitable Trades: %d\n", r.ProfitableTrades)
	fmt.Printf("Win Rate:          %.2f%%\n", r.WinRate*100)
	fmt.Println("===========================")
}
