package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// SheetsMirror appends registrations to a Google Sheets worksheet
type SheetsMirror struct {
	credentialsFile string
	spreadsheetID   string
	worksheet       string
	opts            []option.ClientOption

	mu  sync.Mutex
	svc *sheets.Service
}

// NewSheetsMirror creates a mirror authenticated with a service-account credentials file.
// Extra options are appended after the credentials (tests point the endpoint at a fake server).
func NewSheetsMirror(credentialsFile, spreadsheetID, worksheet string, opts ...option.ClientOption) *SheetsMirror {
	if worksheet == "" {
		worksheet = "Sheet1"
	}
	return &SheetsMirror{
		credentialsFile: credentialsFile,
		spreadsheetID:   spreadsheetID,
		worksheet:       worksheet,
		opts:            opts,
	}
}

func (m *SheetsMirror) Name() string { return "sheets:" + m.worksheet }

// Configured reports whether the mirror has a spreadsheet to write to
func (m *SheetsMirror) Configured() bool {
	return m.spreadsheetID != "" && (m.credentialsFile != "" || len(m.opts) > 0)
}

// service authenticates once and reuses the client across calls
func (m *SheetsMirror) service(ctx context.Context) (*sheets.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.svc != nil {
		return m.svc, nil
	}
	if !m.Configured() {
		return nil, fmt.Errorf("sheets: %w", ErrNotConfigured)
	}

	var opts []option.ClientOption
	if m.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	opts = append(opts, m.opts...)

	// the service outlives this call, so it must not inherit its deadline
	svc, err := sheets.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets auth: %w", err)
	}
	m.svc = svc
	return svc, nil
}

// Append adds rec as a new row below the worksheet's existing data
func (m *SheetsMirror) Append(ctx context.Context, rec models.Record) error {
	svc, err := m.service(ctx)
	if err != nil {
		return err
	}

	row := make([]interface{}, 0, len(models.RecordHeader))
	for _, v := range rec.Row() {
		row = append(row, v)
	}

	rng := fmt.Sprintf("%s!A:%c", quoteSheet(m.worksheet), 'A'+len(models.RecordHeader)-1)
	_, err = svc.Spreadsheets.Values.Append(m.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
