package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"uidai-pipeline/internal/model"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"date", "state", "district", "pincode", "month", "total_enrolments"}, records[0])
	assert.Equal(t, []string{"2025-03-01", "Karnataka", "Mysuru", "570001", "2025-03", "6"}, records[1])
	assert.Equal(t, []string{"", "Kerala", "Ernakulam", "682001", "", "2"}, records[4])
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, model.Table{Columns: []string{"date", "state"}}))
	assert.Equal(t, "date,state\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheetName}, f.GetSheetList())
	rows, err := f.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "total_enrolments", rows[0][5])
	assert.Equal(t, "2025-03-02", rows[2][0])
	assert.Equal(t, "560043", rows[2][3])
	assert.Equal(t, "15", rows[2][5])
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFromPath("out/report.XLSX"))
	assert.Equal(t, FormatCSV, FormatFromPath("out/report.csv"))
	assert.Equal(t, FormatCSV, FormatFromPath("report"))
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleTable(), "parquet"))
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "uidai_filtered.xlsx")

	res, err := ExportToFile(context.Background(), sampleTable(), path)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, res.Type)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, 4, res.RecordCount)
	assert.False(t, res.Timestamp.IsZero())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExportToFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExportToFile(ctx, sampleTable(), filepath.Join(t.TempDir(), "x.csv"))
	assert.ErrorIs(t, err, context.Canceled)
}
