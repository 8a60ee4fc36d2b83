package google

import (
	"context"
	"fmt"
	"os"

	"indigo/internal/domain"
	"indigo/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var menuHeaders = []interface{}{"ID", "Name", "Category", "Price", "Description", "Available", "Icon"}

// SheetsMirror keeps one sheet of a spreadsheet equal to the catalog.
type SheetsMirror struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

var _ domain.MenuMirror = (*SheetsMirror)(nil)

// NewSheetsMirror authenticates with a service-account credentials file.
func NewSheetsMirror(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsMirror, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newSheetsMirror(srv, spreadsheetID, sheetName), nil
}

func newSheetsMirror(service *sheets.Service, spreadsheetID, sheetName string) *SheetsMirror {
	return &SheetsMirror{service: service, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// TestConnection проверяет доступ к листу меню
func (m *SheetsMirror) TestConnection(ctx context.Context) error {
	_, err := m.service.Spreadsheets.Values.Get(m.spreadsheetID, m.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ReplaceMenu clears the sheet and writes a header plus one row per item in
// catalog order.
func (m *SheetsMirror) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	clearRange := m.sheetName + "!A:G"
	if _, err := m.service.Spreadsheets.Values.Clear(m.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear menu sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(items)+1)
	values = append(values, menuHeaders)
	for _, item := range items {
		values = append(values, menuRowValues(item))
	}

	_, err := m.service.Spreadsheets.Values.Update(m.spreadsheetID, m.sheetName+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update menu sheet: %w", err)
	}
	return nil
}

// Price stays text so "13/15" is not read as a date.
func menuRowValues(item models.MenuItem) []interface{} {
	return []interface{}{
		item.ID,
		item.Name,
		string(item.Category),
		item.Price,
		item.Description,
		item.Available,
		item.Image,
	}
}
