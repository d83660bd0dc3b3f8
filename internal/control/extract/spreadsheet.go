package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX flattens a workbook sheet by sheet, row by row. Cell values
// joined with " | " keep tabular controls (e.g. registry completeness
// checks) workable as plain text evidence.
func extractXLSX(path string) (string, error) {
	initLogger()
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		logger.Error("Error opening workbook", "path", path, "error", err)
		return "", fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() {
		if err := workbook.Close(); err != nil {
			logger.Error("Error closing workbook", "path", path, "error", err)
		}
	}()

	var out []string
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			logger.Error("Error reading sheet", "sheet", sheet, "error", err)
			continue
		}

		out = append(out, fmt.Sprintf("--- Sheet: %s ---", sheet))
		for _, row := range rows {
			var cells []string
			for _, cell := range row {
				if cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				out = append(out, strings.Join(cells, " | "))
			}
		}
	}

	return strings.Join(out, "\n"), nil
}
