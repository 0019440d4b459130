package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"aibacktest/internal/api"
	"aibacktest/internal/config"
	"aibacktest/internal/engine"
	"aibacktest/internal/journal"
	"aibacktest/internal/marketdata"
	"aibacktest/internal/oracle"
	"aibacktest/internal/repository"
	"aibacktest/types"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run-control HTTP API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, _ []string) error {
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

	db, err := repository.NewDatabase(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := api.NewRunner(newRunFunc(cfg, db, log), log)
	server := api.NewServer(cfg.ListenAddr(), runner, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx)
}

// newRunFunc builds a RunFunc that assembles fresh per-run state (ledger,
// price cache, decision cache) for every start request, so repeated runs
// never share caches.
func newRunFunc(cfg *config.Config, db *repository.Database, log *slog.Logger) api.RunFunc {
	return func(ctx context.Context, params api.RunParams, progress func(int, string)) *types.Result {
		orc := oracle.NewHTTPOracle(cfg.Oracle.URL, cfg.OracleTimeout(), cfg.Oracle.MaxAttempts, log)
		bt := engine.NewBacktest(engine.RunConfig{
			Instrument:     params.Instrument,
			DisplayName:    params.DisplayName,
			Start:          params.Start,
			End:            params.End,
			Frequency:      params.Frequency,
			InitialCapital: params.InitialCapital,
			HistoryDays:    cfg.Backtest.HistoryDays,
		}, marketdata.NewCache(db, log), orc, log)

		result := bt.Run(ctx, progress)

		if cfg.Journal.Path != "" && result.Error == "" {
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				log.Warn("journal unavailable", "err", err)
				return result
			}
			defer j.Close()
			if err := j.Record(ulid.Make().String(), params.Instrument, result); err != nil {
				log.Warn("failed to journal run", "err", err)
			}
		}
		return result
	}
}
