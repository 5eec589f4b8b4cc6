// Package google implements the ledger store on a Google Sheets worksheet,
// the system of record the household audits by hand.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rentbot/internal/core"
	"rentbot/internal/ledger"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ledger.Store = (*Client)(nil)

// NewFromEnv creates a Sheets-backed ledger store using environment
// variables and service-account credentials.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Ledger"); auth via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	return New(ctx, spreadsheetID, sheetName)
}

// New creates a Sheets-backed ledger store for the given spreadsheet.
// Credentials are still resolved from the environment.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
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

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// GetMonth implements ledger.Store.
func (c *Client) GetMonth(ctx context.Context, key core.MonthKey) (core.MonthLedger, error) {
	rows, err := c.allRows(ctx)
	if err != nil {
		return core.MonthLedger{}, err
	}
	return parseMonthBlock(rows, key)
}

// PutMonth implements ledger.Store. The month's whole block is rewritten in
// one batched update so a snapshot replace is as atomic as the Sheets API
// allows.
func (c *Client) PutMonth(ctx context.Context, l core.MonthLedger) error {
	if err := l.Month.Validate(); err != nil {
		return err
	}
	if !inLayout(l.Month) {
		return fmt.Errorf("month %s predates the ledger sheet layout", l.Month)
	}
	if len(l.Tenants) > maxTenants {
		return fmt.Errorf("month %s roster exceeds the %d-tenant block capacity", l.Month, maxTenants)
	}

	updates := renderMonthBlock(c.sheetName, l)
	data := make([]*gsheet.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &gsheet.ValueRange{Range: u.Range, Values: u.Values})
	}
	req := &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch update month %s: %w", l.Month, err)
	}

	slog.InfoContext(ctx, "Month block written",
		"month", l.Month.String(),
		"tenants", len(l.Tenants),
		"total_rent", l.TotalRent,
		"total_utility", l.TotalUtility)
	return nil
}

// LatestMonthBefore implements ledger.Store by scanning blocks backwards
// from the given month to the first month the sheet tracks.
func (c *Client) LatestMonthBefore(ctx context.Context, key core.MonthKey) (core.MonthLedger, error) {
	rows, err := c.allRows(ctx)
	if err != nil {
		return core.MonthLedger{}, err
	}
	for k := key.Prev(); inLayout(k); k = k.Prev() {
		l, err := parseMonthBlock(rows, k)
		if errors.Is(err, core.ErrMonthNotFound) {
			continue
		}
		if err != nil {
			return core.MonthLedger{}, err
		}
		return l, nil
	}
	return core.MonthLedger{}, core.ErrMonthNotFound
}

func (c *Client) allRows(ctx context.Context) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:C", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = toStrings(row)
	}
	return rows, nil
}
