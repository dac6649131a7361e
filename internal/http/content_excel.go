package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

// contentExportHeader lists the columns of the calendar export, in order.
var contentExportHeader = []string{
	"Date",
	"Business",
	"Content Type",
	"Tags",
	"Status",
	"Assigned CD",
	"Assigned CW",
	"Assigned VE",
	"Added By",
	"Created At",
}

var contentExportWidths = []float64{
	12, // Date
	28, // Business
	14, // Content Type
	32, // Tags
	10, // Status
	18, // Assigned CD
	18, // Assigned CW
	18, // Assigned VE
	18, // Added By
	20, // Created At
}

// GenerateContentExport renders the content views as an .xlsx workbook with
// a styled, frozen header row.
func GenerateContentExport(items []domain.ContentView) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() here; WriteTo needs the file open.

	sheetName := "Content Calendar"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range contentExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := range contentExportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, contentExportWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, item := range items {
		row := rowIdx + 2
		values := []any{
			item.Date,
			businessLabel(&item),
			string(item.ContentType),
			item.Tags,
			statusLabel(item.Status),
			userLabel(item.AssignedCDRef),
			userLabel(item.AssignedCWRef),
			userLabel(item.AssignedVERef),
			userLabel(item.AddedByRef),
			item.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}

func businessLabel(item *domain.ContentView) string {
	if item.BusinessRef != nil {
		return item.BusinessRef.BusinessName
	}
	return item.Business.Hex()
}

func userLabel(ref *domain.UserRef) string {
	if ref == nil {
		return ""
	}
	return ref.Username
}

func statusLabel(done bool) string {
	if done {
		return "Done"
	}
	return "Pending"
}
