package web

import (
	"fmt"
	"net/http"

	"indigo/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "תפריט"

var exportHeaders = []string{"מזהה", "שם", "קטגוריה", "מחיר", "תיאור", "זמין", "אייקון"}

// handleExport downloads the whole catalog, grouped by category. Admin mode
// of the caller's view is required.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "menu is shutting down", http.StatusServiceUnavailable)
		return
	}
	if !sess.Controller().State().AdminMode {
		http.Error(w, "admin mode required", http.StatusForbidden)
		return
	}

	items, err := s.catalog.ListItems(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list menu for export")
		http.Error(w, "menu unavailable", http.StatusServiceUnavailable)
		return
	}

	f, err := BuildWorkbook(items)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build export")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="indigo_menu.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to write export")
	}
}

// BuildWorkbook lays the catalog out as one header row plus one row per
// item, categories in menu order. Items of unknown categories go last.
func BuildWorkbook(items []models.MenuItem) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")
	_ = f.SetSheetView(exportSheet, -1, &excelize.ViewOptions{RightToLeft: boolPtr(true)})

	for col, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, title)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)

	soldOutStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#9CA3AF", Strike: true},
	})

	row := 2
	for _, item := range groupByCategory(items) {
		available := "כן"
		if !item.Available {
			available = "לא"
		}
		label := models.CategoryLabel(item.Category)
		if label == "" {
			label = string(item.Category)
		}
		values := []any{item.ID, item.Name, label, item.Price, item.Description, available, item.Image}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheet, start, &values); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}
		if !item.Available {
			end, _ := excelize.CoordinatesToCellName(len(values), row)
			_ = f.SetCellStyle(exportSheet, start, end, soldOutStyle)
		}
		row++
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "C", 22)
	_ = f.SetColWidth(exportSheet, "D", "D", 10)
	_ = f.SetColWidth(exportSheet, "E", "E", 40)
	return f, nil
}

func groupByCategory(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, category := range models.Categories {
		for _, item := range items {
			if item.Category == category.Key {
				out = append(out, item)
			}
		}
	}
	for _, item := range items {
		if !models.IsValidCategory(item.Category) {
			out = append(out, item)
		}
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
