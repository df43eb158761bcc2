// Package sheets writes report tables to a Google spreadsheet with
// replace-all semantics: clear the sheet, then headers plus data rows in
// fixed-size batches.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mixelka/photoreport/internal/report"
)

// Config settings for the sheets client
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	BatchSize          int
}

// Client talks to the Google Sheets API
type Client struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetName     string
	batchSize     int
	logger        *slog.Logger
}

// NewClient creates a sheets client authorized by a service account file.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.ServiceAccountFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		batchSize:     cfg.BatchSize,
		logger:        logger.With("component", "sheets"),
	}, nil
}

// ensureSheet creates the target sheet if it does not exist yet.
func (c *Client) ensureSheet(ctx context.Context) error {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == c.sheetName {
			return nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: c.sheetName},
			},
		}},
	}
	if _, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", c.sheetName, err)
	}

	c.logger.Info("sheet created", "name", c.sheetName)
	return nil
}

// clearSheet removes all values from the target sheet.
func (c *Client) clearSheet(ctx context.Context) error {
	rangeName := fmt.Sprintf("'%s'", c.sheetName)
	_, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, rangeName, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}
	return nil
}

// writeBatch writes a rectangular block of cells anchored at the given
// top-left cell.
func (c *Client) writeBatch(ctx context.Context, anchor string, values [][]any) error {
	rangeName := fmt.Sprintf("'%s'!%s", c.sheetName, anchor)
	body := &sheetsapi.ValueRange{Values: values}
	_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, rangeName, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write batch at %s: %w", rangeName, err)
	}
	return nil
}

// sheetID looks up the numeric id of the target sheet.
func (c *Client) sheetID(ctx context.Context) (int64, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == c.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheetName)
}

// autoResizeColumns fits column widths to content. Best effort: a
// failure here is logged by the caller but does not fail the sync.
func (c *Client) autoResizeColumns(ctx context.Context, numColumns int) error {
	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AutoResizeDimensions: &sheetsapi.AutoResizeDimensionsRequest{
				Dimensions: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(numColumns),
				},
			},
		}},
	}
	if _, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to auto-resize columns: %w", err)
	}
	return nil
}

// Publish replaces the sheet contents with the report table.
func (c *Client) Publish(ctx context.Context, table *report.Table) error {
	if len(table.Rows) == 0 {
		c.logger.Info("no data to publish")
		return nil
	}

	if err := c.ensureSheet(ctx); err != nil {
		return err
	}
	if err := c.clearSheet(ctx); err != nil {
		return err
	}

	headers := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = h
	}
	if err := c.writeBatch(ctx, "A1", [][]any{headers}); err != nil {
		return err
	}

	total := len(table.Rows)
	for i := 0; i < total; i += c.batchSize {
		end := i + c.batchSize
		if end > total {
			end = total
		}
		// +2: row 1 is the header and sheet rows are 1-based
		anchor := fmt.Sprintf("A%d", i+2)
		if err := c.writeBatch(ctx, anchor, table.Rows[i:end]); err != nil {
			return err
		}
		c.logger.Info("rows written", "done", end, "total", total)
	}

	if err := c.autoResizeColumns(ctx, len(table.Headers)); err != nil {
		c.logger.Warn("failed to auto-resize columns", "error", err)
	}

	c.logger.Info("report published", "rows", total)
	return nil
}
