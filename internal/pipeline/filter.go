package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
)

// Filter narrows a table the way the dashboard sidebar does.
// Zero fields do not filter.
type Filter struct {
	From      *time.Time `json:"from,omitempty"` // inclusive
	To        *time.Time `json:"to,omitempty"`   // inclusive
	States    []string   `json:"states,omitempty"`
	Districts []string   `json:"districts,omitempty"`
	Pincode   string     `json:"pincode,omitempty"` // substring match
}

// IsZero reports whether the filter keeps every row
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && len(f.States) == 0 && len(f.Districts) == 0 && f.Pincode == ""
}

// Apply returns a new table holding the rows that pass the filter.
// When a date bound is set, rows without a date are dropped.
func (f Filter) Apply(t model.Table) model.Table {
	if f.IsZero() {
		return t
	}

	states := toSet(f.States)
	districts := toSet(f.Districts)
	pin := strings.TrimSpace(f.Pincode)

	out := model.Table{Columns: t.Columns}
	for _, rec := range t.Rows {
		if f.From != nil || f.To != nil {
			d, ok := model.DateOf(rec)
			if !ok {
				continue
			}
			if f.From != nil && d.Before(dayOf(*f.From)) {
				continue
			}
			if f.To != nil && d.After(dayOf(*f.To)) {
				continue
			}
		}
		if states != nil && !states[model.StringOf(rec, model.ColState)] {
			continue
		}
		if districts != nil && !districts[model.StringOf(rec, model.ColDistrict)] {
			continue
		}
		if pin != "" && !strings.Contains(model.StringOf(rec, model.ColPincode), pin) {
			continue
		}
		out.Rows = append(out.Rows, rec)
	}
	return out
}

// DistinctValues returns the sorted non-empty values of a string column
func DistinctValues(t model.Table, col string) []string {
	seen := make(map[string]bool)
	for _, rec := range t.Rows {
		if v := model.StringOf(rec, col); v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = true
	}
	return set
}

// FilterDateLayout is the layout of date bounds given to filters
const FilterDateLayout = "2006-01-02"

// ParseFilterDate parses an inclusive date bound; empty means no bound
func ParseFilterDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(FilterDateLayout, s)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("date %q is not in YYYY-MM-DD form", s))
	}
	return &d, nil
}
