package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
)

const utf8BOM = "\ufeff"

// ------------------- Ingestion -------------------

// Concat reads every existing path as CSV and stacks the rows in path order.
// Missing paths are skipped; if none exist the empty table is returned without
// error. A file that exists but is not valid CSV fails the whole load.
func Concat(ctx context.Context, paths []string, logger *zap.Logger) (model.Table, error) {
	var out model.Table
	seen := make(map[string]bool)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return model.Table{}, err
		}
		if p == "" {
			continue
		}

		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			logger.Debug("skipping missing source file", zap.String("path", p))
			continue
		}
		if err != nil {
			return model.Table{}, apperrors.MalformedFile(p, err)
		}
		if info.IsDir() {
			return model.Table{}, apperrors.MalformedFile(p, fmt.Errorf("is a directory"))
		}

		header, rows, err := ingestCSV(ctx, p)
		if err != nil {
			return model.Table{}, err
		}

		for _, h := range header {
			if !seen[h] {
				seen[h] = true
				out.Columns = append(out.Columns, h)
			}
		}
		out.Rows = append(out.Rows, rows...)
		logger.Debug("CSV ingestion done", zap.String("path", p), zap.Int("rows", len(rows)))
	}

	if len(out.Rows) == 0 {
		return model.Table{}, nil
	}
	return out, nil
}

// ------------------- CSV Ingestion -------------------
func ingestCSV(ctx context.Context, path string) ([]string, []model.GenericRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.MalformedFile(path, err)
	}
	defer file.Close()

	csvReader := csv.NewReader(file)
	csvReader.LazyQuotes = true

	headers, err := csvReader.Read()
	if err == io.EOF {
		return nil, nil, apperrors.MalformedFile(path, fmt.Errorf("file is empty, no header row"))
	}
	if err != nil {
		return nil, nil, apperrors.MalformedFile(path, fmt.Errorf("failed to read CSV header: %w", err))
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}

	index := make(map[string]bool, len(headers))
	for _, h := range headers {
		if index[h] {
			return nil, nil, apperrors.DuplicateColumn(h, []string{h, h})
		}
		index[h] = true
	}

	var rows []model.GenericRecord
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			return headers, rows, nil
		}
		if err != nil {
			return nil, nil, apperrors.MalformedFile(path, err)
		}

		recMap := make(model.GenericRecord, len(headers))
		for i, h := range headers {
			recMap[h] = record[i]
		}
		rows = append(rows, recMap)

		if len(rows)%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
	}
}
