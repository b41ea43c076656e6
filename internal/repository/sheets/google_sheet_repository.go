package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/platelog/internal/config"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	UpsertRow(ctx context.Context, sheet string, values []interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

var _ Repository = (*GoogleSheetRepository)(nil)

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsPath)}
	}
	opts = append(opts, option.WithScopes(sheetsapi.SpreadsheetsScope))

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// UpsertRow overwrites the row of sheet whose first cell equals values[0],
// or appends a new row when none matches.
func (r *GoogleSheetRepository) UpsertRow(ctx context.Context, sheet string, values []interface{}) error {
	if sheet == "" || len(values) == 0 {
		return fmt.Errorf("sheet and values must not be empty")
	}

	key := fmt.Sprint(values[0])
	rows, err := r.ReadRange(ctx, sheet+"!A:A")
	if err != nil {
		return err
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	if i := findRow(rows, key); i >= 0 {
		target := fmt.Sprintf("%s!A%d", sheet, i+1)
		call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, target, payload).
			ValueInputOption("USER_ENTERED").
			Context(ctx)
		if _, err := call.Do(); err != nil {
			return fmt.Errorf("update row %s: %w", target, err)
		}
		r.logger.Debug("sheet row updated", zap.String("range", target))
		return nil
	}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheet+"!A:A", payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into %s: %w", sheet, err)
	}

	r.logger.Debug("sheet row appended", zap.String("sheet", sheet), zap.String("key", key))
	return nil
}

func findRow(rows [][]interface{}, key string) int {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == key {
			return i
		}
	}
	return -1
}
