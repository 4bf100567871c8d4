// Package sheets publishes computed reports to a Google Sheets
// spreadsheet so a report can be consumed outside the device. Auth is
// service-account based.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a publisher for the given spreadsheet and sheet.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Publisher, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Publisher{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// PublishReport appends one row per daily total plus a summary row.
// Each publish is append-only; the sheet accumulates report snapshots.
func (p *Publisher) PublishReport(ctx context.Context, data report.Data) error {
	values := make([][]interface{}, 0, len(data.DailyTotals)+2)
	values = append(values, []interface{}{"Report", data.ReportPeriod, data.TotalAmount, data.TotalExpenses})
	for _, daily := range data.DailyTotals {
		values = append(values, []interface{}{
			core.ISODate(daily.Date), daily.TotalAmount, daily.ExpenseCount,
		})
	}
	for _, cat := range data.CategoryTotals {
		values = append(values, []interface{}{
			cat.Category, cat.TotalAmount, cat.ExpenseCount, cat.Percentage,
		})
	}

	valueRange := &gsheet.ValueRange{Values: values}
	_, err := p.svc.Spreadsheets.Values.
		Append(p.spreadsheetID, p.sheetName+"!A:D", valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append report rows: %w", err)
	}

	slog.InfoContext(ctx, "report published to sheet",
		"spreadsheet_id", p.spreadsheetID,
		"sheet", p.sheetName,
		"rows", len(values))
	return nil
}
