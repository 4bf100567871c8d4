package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/entry"
	"expensetracker/internal/export"
	"expensetracker/internal/listing"
	applog "expensetracker/internal/log"
	"expensetracker/internal/report"
	"expensetracker/internal/sink"
	filesink "expensetracker/internal/sink/file"
	"expensetracker/internal/storage"
)

const usage = `usage: expensetracker <command> [flags]

commands:
  record   add an expense
  list     list expenses (optionally for one day, grouped by category)
  report   print an aggregate report for the trailing period
  watch    follow the live report until interrupted
  export   export the report as CSV and/or PDF
  share    queue the report summary for sharing
`

type app struct {
	cfg      *config.Config
	loc      *time.Location
	store    *storage.SQLiteStore
	builder  *report.Builder
	lists    *listing.Service
	exporter *export.Exporter
	sharer   *amqp.Client // nil when AMQP is not configured
	log      *applog.Logger
}

func main() {
	// Load .env for local development; absence is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *applog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	blobs, err := filesink.New(cfg.ExportDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open export sink: %w", err)
	}

	var sharer *amqp.Client
	if cfg.AMQPURL != "" {
		sharer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("connect share queue: %w", err)
		}
	}

	formatter := export.NewFormatter(loc)
	builder := report.NewBuilder(store, loc, logger.WithComponent(applog.ComponentReport).Logger)

	// A typed nil *amqp.Client must not leak into the interface.
	var textSharer sink.TextSharer
	if sharer != nil {
		textSharer = sharer
	}
	exporter := export.NewExporter(formatter, blobs, textSharer, logger.WithComponent(applog.ComponentExport).Logger)

	return &app{
		cfg:      cfg,
		loc:      loc,
		store:    store,
		builder:  builder,
		lists:    listing.NewService(store, loc, logger.WithComponent(applog.ComponentListing).Logger),
		exporter: exporter,
		sharer:   sharer,
		log:      logger,
	}, nil
}

func (a *app) close() {
	if a.sharer != nil {
		if err := a.sharer.Close(); err != nil {
			a.log.Warn("close share queue", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", "error", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "record":
		return a.record(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "share":
		return a.share(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// record drives the entry state machine the same way the form UI does:
// field actions first, then submit, then the event stream decides the
// outcome.
func (a *app) record(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	title := fs.String("title", "", "expense title (required)")
	amount := fs.String("amount", "", "amount, e.g. 12.50 (required)")
	category := fs.String("category", core.DefaultCategory, "category label")
	notes := fs.String("notes", "", "optional notes")
	receipt := fs.String("receipt", "", "optional receipt URI")
	date := fs.String("date", "", "timestamp (RFC 3339); defaults to now")
	fs.Parse(args)

	form := entry.NewForm(a.store, a.log.WithComponent(applog.ComponentEntry).Logger)
	defer form.Close()

	if *date != "" {
		t, err := time.Parse(time.RFC3339, *date)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		form.SetDate(t)
	}

	form.Dispatch(ctx, entry.TitleChanged{Value: *title})
	form.Dispatch(ctx, entry.AmountChanged{Value: *amount})
	form.Dispatch(ctx, entry.CategoryChanged{Value: *category})
	form.Dispatch(ctx, entry.NotesChanged{Value: *notes})
	if *receipt != "" {
		form.Dispatch(ctx, entry.ReceiptPicked{URI: *receipt})
	}
	form.Dispatch(ctx, entry.Submit{})

	// Dispatch is synchronous, so every outcome event is buffered by now.
	saved := false
	for {
		select {
		case ev := <-form.Events():
			switch ev := ev.(type) {
			case entry.Toast:
				fmt.Println(ev.Message)
			case entry.Saved:
				fmt.Printf("id: %s\n", ev.ID)
				saved = true
			}
		default:
			if !saved {
				return fmt.Errorf("expense not saved")
			}
			return nil
		}
	}
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	day := fs.String("day", "", "calendar day (YYYY-MM-DD); defaults to all")
	byCategory := fs.Bool("by-category", false, "group by category")
	fs.Parse(args)

	var dayPtr *time.Time
	if *day != "" {
		t, err := time.ParseInLocation("2006-01-02", *day, a.loc)
		if err != nil {
			return fmt.Errorf("parse day: %w", err)
		}
		dayPtr = &t
	}

	if *byCategory {
		groups, err := a.lists.GroupedByCategory(ctx, dayPtr)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Printf("%s\n", g.Category)
			for _, e := range g.Expenses {
				printExpense(e, a.loc)
			}
		}
		return nil
	}

	var (
		expenses []core.Expense
		err      error
	)
	if dayPtr != nil {
		expenses, err = a.lists.ForDay(ctx, *dayPtr)
	} else {
		expenses, err = a.lists.All(ctx)
	}
	if err != nil {
		return err
	}
	for _, e := range expenses {
		printExpense(e, a.loc)
	}

	stats, err := a.lists.TotalStats(ctx, dayPtr)
	if err != nil {
		return err
	}
	fmt.Printf("total: %s%.2f (%d expenses)\n", export.CurrencySymbol, stats.Amount, stats.Count)
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	days := fs.Int("days", a.cfg.ReportPeriodDays, "period length in days")
	fs.Parse(args)

	data, err := a.builder.BuildReport(ctx, *days)
	if err != nil {
		return err
	}

	formatter := export.NewFormatter(a.loc)
	fmt.Print(formatter.ShareSummary(data))
	return nil
}

// watch follows the live report: every store change prints a fresh
// summary until the context is cancelled.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	days := fs.Int("days", a.cfg.ReportPeriodDays, "period length in days")
	fs.Parse(args)

	formatter := export.NewFormatter(a.loc)
	reports, errs := a.builder.ObserveReport(ctx, *days)
	for {
		select {
		case data, ok := <-reports:
			if !ok {
				return nil
			}
			fmt.Print(formatter.ShareSummary(data))
			fmt.Println("---")
		case err, ok := <-errs:
			if ok && err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	days := fs.Int("days", a.cfg.ReportPeriodDays, "period length in days")
	format := fs.String("format", "all", "csv, pdf, or all")
	fs.Parse(args)

	data, err := a.builder.BuildReport(ctx, *days)
	if err != nil {
		return err
	}
	records, err := a.builder.Records(ctx, *days)
	if err != nil {
		return err
	}

	var results []export.Result
	switch *format {
	case "csv":
		results = append(results, <-a.exporter.ExportCSV(ctx, records))
	case "pdf":
		results = append(results, <-a.exporter.ExportPDF(ctx, data))
	case "all":
		all, err := a.exporter.ExportAll(ctx, data, records)
		if err != nil {
			return err
		}
		results = all
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		fmt.Printf("%s exported: %s\n", r.Format, r.Locator)
	}
	return nil
}

func (a *app) share(ctx context.Context, args []string) error {
	if a.sharer == nil {
		return fmt.Errorf("share queue not configured (set AMQP_URL)")
	}

	fs := flag.NewFlagSet("share", flag.ExitOnError)
	days := fs.Int("days", a.cfg.ReportPeriodDays, "period length in days")
	fs.Parse(args)

	data, err := a.builder.BuildReport(ctx, *days)
	if err != nil {
		return err
	}
	if err := a.exporter.Share(ctx, data); err != nil {
		return err
	}
	fmt.Println("report queued for sharing")
	return nil
}

func printExpense(e core.Expense, loc *time.Location) {
	notes := ""
	if e.Notes != "" {
		notes = " - " + e.Notes
	}
	fmt.Printf("  %s  %-20s %-10s %s%.2f%s\n",
		e.Date.In(loc).Format("2006-01-02 15:04"), e.Title, e.Category,
		export.CurrencySymbol, e.Amount, notes)
}
