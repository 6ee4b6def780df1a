package pipeline

import (
	"strings"
	"time"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/pkg/utils"
)

// dayFirstLayouts are tried, in order, after the configured layout.
// Only four-digit years: a two-digit year must be configured explicitly.
var dayFirstLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04",
	"2/1/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

const pincodeWidth = 6

// Normalize canonicalizes a concatenated table: column names, dates, state and
// district text, pincodes and the month bucket. It never fails on bad values;
// the only error is two source columns collapsing onto the same name.
func Normalize(t model.Table, dateFormat string) (model.Table, error) {
	if t.IsEmpty() {
		return model.Table{}, nil
	}

	columns, rename, err := canonicalColumns(t.Columns)
	if err != nil {
		return model.Table{}, err
	}

	hasDate := contains(columns, model.ColDate)
	hasState := contains(columns, model.ColState)
	hasDistrict := contains(columns, model.ColDistrict)
	hasPincode := contains(columns, model.ColPincode)
	if hasDate && !contains(columns, model.ColMonth) {
		columns = append(columns, model.ColMonth)
	}

	out := model.Table{
		Columns: columns,
		Rows:    make([]model.GenericRecord, len(t.Rows)),
	}

	for i, rec := range t.Rows {
		row := make(model.GenericRecord, len(columns))
		for _, raw := range t.Columns {
			row[rename[raw]] = rec[raw]
		}

		if hasDate {
			if d, ok := ParseDate(row[model.ColDate], dateFormat); ok {
				row[model.ColDate] = d
				row[model.ColMonth] = d.Format("2006-01")
			} else {
				row[model.ColDate] = nil
				row[model.ColMonth] = nil
			}
		}
		if hasState {
			row[model.ColState] = strings.TrimSpace(utils.Stringify(row[model.ColState]))
		}
		if hasDistrict {
			row[model.ColDistrict] = strings.TrimSpace(utils.Stringify(row[model.ColDistrict]))
		}
		if hasPincode {
			row[model.ColPincode] = NormalizePincode(row[model.ColPincode])
		}

		out.Rows[i] = row
	}

	return out, nil
}

// CanonicalName trims, lowercases and replaces spaces and hyphens with underscores
func CanonicalName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

// canonicalColumns maps raw headers to canonical names, rejecting collisions
func canonicalColumns(raw []string) ([]string, map[string]string, error) {
	columns := make([]string, 0, len(raw))
	rename := make(map[string]string, len(raw))
	sources := make(map[string][]string, len(raw))

	for _, r := range raw {
		c := CanonicalName(r)
		rename[r] = c
		if _, ok := sources[c]; !ok {
			columns = append(columns, c)
		}
		sources[c] = append(sources[c], r)
	}
	for _, c := range columns {
		if len(sources[c]) > 1 {
			return nil, nil, apperrors.DuplicateColumn(c, sources[c])
		}
	}
	return columns, rename, nil
}

// ParseDate parses a day-first date. layout, when set, is tried first.
// Values that are already dates pass through at day precision.
func ParseDate(v interface{}, layout string) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return dayOf(val), true
	case nil:
		return time.Time{}, false
	}

	s := strings.TrimSpace(utils.Stringify(v))
	if s == "" {
		return time.Time{}, false
	}
	if layout != "" {
		if d, err := time.Parse(layout, s); err == nil {
			return dayOf(d), true
		}
	}
	for _, l := range dayFirstLayouts {
		if d, err := time.Parse(l, s); err == nil {
			return dayOf(d), true
		}
	}
	return time.Time{}, false
}

// NormalizePincode strips the trailing ".0" float artifact and left-pads to six digits.
// Longer codes are kept as they are; an empty value stays empty.
func NormalizePincode(v interface{}) string {
	s := strings.TrimSpace(utils.Stringify(v))
	// Every trailing ".0" goes, so a second pass over the output is a no-op.
	for strings.HasSuffix(s, ".0") {
		s = strings.TrimSuffix(s, ".0")
	}
	if s == "" {
		return ""
	}
	if len(s) < pincodeWidth {
		s = strings.Repeat("0", pincodeWidth-len(s)) + s
	}
	return s
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
