// share-worker drains the share queue: it receives queued report
// summaries and delivers them to the configured channels (log output
// always; Google Sheets when configured).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/report"
	"expensetracker/internal/sink/sheets"
	"expensetracker/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("starting share-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("share-worker requires AMQP_URL")
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("resolve timezone failed", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect share queue", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Sheets publishing is optional; the worker still logs deliveries
	// without it.
	var publisher *sheets.Publisher
	if cfg.GoogleSpreadsheetID != "" {
		publisher, err = sheets.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("failed to initialize sheets publisher", "error", err)
			os.Exit(1)
		}
		logger.Info("sheets publisher initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	builder := report.NewBuilder(store, loc, logger.WithComponent(applog.ComponentReport).Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeShares(ctx, func(msg *amqp.ShareMessage) error {
			return deliver(ctx, cfg, builder, publisher, logger, msg)
		})
	})

	logger.Info("share-worker running", "queue", cfg.AMQPQueue)
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("share-worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("share-worker stopped gracefully")
}

// deliver writes a share message to stdout and, when configured,
// publishes a fresh report snapshot to the spreadsheet. Errors requeue
// the message via the consumer.
func deliver(ctx context.Context, cfg *config.Config, builder *report.Builder, publisher *sheets.Publisher, logger *applog.Logger, msg *amqp.ShareMessage) error {
	fmt.Printf("--- %s ---\n%s\n", msg.Subject, msg.Content)
	logger.InfoContext(ctx, "share delivered", "subject", msg.Subject)

	if publisher == nil {
		return nil
	}

	data, err := builder.BuildReport(ctx, cfg.ReportPeriodDays)
	if err != nil {
		return fmt.Errorf("build report for sheet: %w", err)
	}
	if err := publisher.PublishReport(ctx, data); err != nil {
		return fmt.Errorf("publish report to sheet: %w", err)
	}
	return nil
}
