package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/report"
)

// SheetsTarget pushes a rendered report into a Google spreadsheet, one
// worksheet per report, so reports can be shared without downloading files.
type SheetsTarget struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewSheetsTargetFromEnv builds a target from environment configuration.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsTargetFromEnv(ctx context.Context) (*SheetsTarget, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsTarget{svc: svc, spreadsheetID: spreadsheetID}, nil
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

// Push writes the payload into a worksheet named after the report title,
// creating the worksheet on first use and replacing its contents after that.
func (t *SheetsTarget) Push(ctx context.Context, p report.Payload) (string, error) {
	sheetName := report.SanitizeSheetName(p.Title)

	if err := t.ensureSheet(ctx, sheetName); err != nil {
		return "", err
	}

	values := PayloadRows(p)
	vr := &gsheet.ValueRange{Values: values}
	_, err := t.svc.Spreadsheets.Values.Update(t.spreadsheetID, fmt.Sprintf("'%s'!A1", sheetName), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("update sheet values: %w", err)
	}
	return sheetName, nil
}

func (t *SheetsTarget) ensureSheet(ctx context.Context, sheetName string) error {
	spreadsheet, err := t.svc.Spreadsheets.Get(t.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return nil
		}
	}

	_, err = t.svc.Spreadsheets.BatchUpdate(t.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %q: %w", sheetName, err)
	}
	return nil
}

// PayloadRows flattens a payload into spreadsheet rows, mirroring the CSV
// block layout.
func PayloadRows(p report.Payload) [][]any {
	var rows [][]any
	add := func(cells ...any) { rows = append(rows, cells) }

	add(p.Title)
	if p.Subtitle != "" {
		add(p.Subtitle)
	}
	add("Generated", p.GeneratedAt.Format("2006-01-02 15:04"))

	for _, s := range p.Sections {
		add()
		add(s.Title)

		switch s.Type {
		case report.SectionMetrics:
			for _, m := range s.Items {
				cells := []any{m.Label, report.FormatValue(m.Value, m.Format)}
				if m.Delta != nil {
					cells = append(cells, report.FormatDelta(*m.Delta))
				}
				add(cells...)
			}
		case report.SectionTable:
			if len(s.Rows) == 0 {
				add(s.EmptyMessage)
				continue
			}
			headers := make([]any, len(s.Headers))
			for i, h := range s.Headers {
				headers[i] = h
			}
			add(headers...)
			for _, r := range s.Rows {
				cells := make([]any, len(r.Cells))
				for i, c := range r.Cells {
					cells[i] = report.FormatCell(c)
				}
				add(cells...)
			}
			if s.Footer != nil {
				add(s.Footer.Label, report.FormatValue(s.Footer.Value, s.Footer.Format))
			}
		case report.SectionText:
			add(s.Body)
		}
	}

	if p.Notes != "" {
		add()
		add("Notes", p.Notes)
	}
	return rows
}
