package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
	"expensetracker/internal/sink"
)

// Format identifies an export artifact kind.
type Format string

const (
	FormatCSV Format = "CSV"
	FormatPDF Format = "PDF"
)

// Result is the terminal signal of one export task. Exactly one Result
// arrives per invocation: either Err is nil and the artifact fields are
// set, or Err carries the failure.
type Result struct {
	FileName string
	Format   Format
	Locator  string
	Err      error
}

// Exporter runs export and share tasks off the caller's goroutine.
// Tasks are independent; the exporter imposes no concurrency limit.
type Exporter struct {
	formatter *Formatter
	blobs     sink.BlobSink
	sharer    sink.TextSharer
	log       *slog.Logger

	now func() time.Time
}

func NewExporter(formatter *Formatter, blobs sink.BlobSink, sharer sink.TextSharer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		formatter: formatter,
		blobs:     blobs,
		sharer:    sharer,
		log:       logger,
		now:       time.Now,
	}
}

// ExportCSV renders the record list and saves it through the blob
// sink. The returned channel delivers exactly one Result and closes.
func (x *Exporter) ExportCSV(ctx context.Context, records []core.Expense) <-chan Result {
	return x.run(ctx, FormatCSV, func() (string, string, []byte, error) {
		data, err := x.formatter.CSV(records)
		if err != nil {
			return "", "", nil, fmt.Errorf("render csv: %w", err)
		}
		name := fmt.Sprintf("expense_report_%d.csv", x.now().UnixMilli())
		return name, MIMECSV, data, nil
	})
}

// ExportPDF renders the text report document and saves it through the
// blob sink. The returned channel delivers exactly one Result and
// closes.
func (x *Exporter) ExportPDF(ctx context.Context, data report.Data) <-chan Result {
	return x.run(ctx, FormatPDF, func() (string, string, []byte, error) {
		body := x.formatter.TextReport(data)
		name := fmt.Sprintf("expense_report_%d.pdf", x.now().UnixMilli())
		return name, MIMEPDF, body, nil
	})
}

// ExportAll runs the CSV and PDF exports concurrently and returns both
// results, or the first failure.
func (x *Exporter) ExportAll(ctx context.Context, data report.Data, records []core.Expense) ([]Result, error) {
	g, ctx := errgroup.WithContext(ctx)

	results := make([]Result, 2)
	g.Go(func() error {
		r := <-x.ExportCSV(ctx, records)
		results[0] = r
		return r.Err
	})
	g.Go(func() error {
		r := <-x.ExportPDF(ctx, data)
		results[1] = r
		return r.Err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Share renders the summary digest and hands it to the share channel.
// Sink failures surface as a single readable error; no retry.
func (x *Exporter) Share(ctx context.Context, data report.Data) error {
	content := x.formatter.ShareSummary(data)
	subject := ShareSubject(data)
	if err := x.sharer.ShareText(ctx, content, subject); err != nil {
		return fmt.Errorf("share report: %w", err)
	}
	x.log.InfoContext(ctx, "report shared", "subject", subject)
	return nil
}

// run executes one export task in its own goroutine. The result
// channel is buffered so the task never blocks on a departed consumer,
// and it always receives exactly one terminal signal.
func (x *Exporter) run(ctx context.Context, format Format, render func() (name, mime string, data []byte, err error)) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		name, mime, data, err := render()
		if err != nil {
			x.log.ErrorContext(ctx, "export failed", "format", string(format), "error", err)
			out <- Result{Format: format, Err: err}
			return
		}

		locator, err := x.blobs.SaveBlob(ctx, name, mime, data)
		if err != nil {
			x.log.ErrorContext(ctx, "export save failed",
				"format", string(format), "file_name", name, "error", err)
			out <- Result{Format: format, Err: fmt.Errorf("save %s export: %w", format, err)}
			return
		}

		x.log.InfoContext(ctx, "export completed",
			"format", string(format), "file_name", name, "locator", locator)
		out <- Result{FileName: name, Format: format, Locator: locator}
	}()

	return out
}
