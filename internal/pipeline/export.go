package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"uidai-pipeline/internal/model"
	"uidai-pipeline/pkg/utils"
)

// ExportSheetName is the worksheet XLSX exports are written to
const ExportSheetName = "uidai"

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// FormatValue renders a table value the way exports write it:
// dates as YYYY-MM-DD, missing values as an empty cell.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format("2006-01-02")
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		return val
	}
	return utils.Stringify(v)
}

// WriteCSV writes t as CSV with a header row, columns in table order.
func WriteCSV(w io.Writer, t model.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(t.Columns))
	for _, rec := range t.Rows {
		for i, col := range t.Columns {
			row[i] = FormatValue(rec[col])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes t as a single-sheet workbook. Counts are stored as numbers,
// everything else as text.
func WriteXLSX(w io.Writer, t model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(ExportSheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, rec := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			if n, ok := rec[col].(int64); ok {
				cells[i] = n
				continue
			}
			cells[i] = FormatValue(rec[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}

// FormatFromPath picks the export format from a file extension, defaulting to CSV
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Write dispatches to the writer for format
func Write(w io.Writer, t model.Table, format string) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// ExportToFile writes t to path in the format implied by its extension
func ExportToFile(ctx context.Context, t model.Table, path string) (model.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ExportResult{}, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return model.ExportResult{}, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return model.ExportResult{}, fmt.Errorf("failed to create file: %w", err)
	}

	format := FormatFromPath(path)
	if err := Write(file, t, format); err != nil {
		file.Close()
		return model.ExportResult{}, err
	}
	if err := file.Close(); err != nil {
		return model.ExportResult{}, fmt.Errorf("failed to close %s: %w", path, err)
	}

	return model.ExportResult{
		Type:        format,
		Path:        path,
		RecordCount: t.Len(),
		Timestamp:   time.Now().UTC(),
	}, nil
}
