package pipeline

import (
	"fmt"
	"sort"
	"time"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/pkg/utils"
)

// ReconcileInput is one totaled table taking part in a reconciliation
type ReconcileInput struct {
	Label     string // used in error messages, e.g. the dataset kind
	Table     model.Table
	TotalName string
}

// ReconcileStats reports what the reconciliation did with its inputs
type ReconcileStats struct {
	Groups        int `json:"groups"`
	SkippedNoDate int `json:"skipped_no_date"`
}

type reconcileKey struct {
	date     time.Time
	state    string
	district string
	pincode  string
	month    string
}

// reconciledGroup holds the per-input totals for one key
type reconciledGroup struct {
	key    reconcileKey
	totals []int64
}

// Reconcile groups every input by the reconciliation key, sums its total
// column and outer-joins the results. Keys absent from an input get 0 for
// that input's total. Rows without a date have an incomplete key and are
// left out. The result is sorted by key.
func Reconcile(inputs ...ReconcileInput) (model.Table, ReconcileStats, error) {
	var stats ReconcileStats

	columns := append([]string(nil), model.ReconciliationKey...)
	for _, in := range inputs {
		if contains(columns, in.TotalName) {
			return model.Table{}, stats, apperrors.InvalidInput(fmt.Sprintf("%s: total column %q is not unique among reconciliation inputs", in.Label, in.TotalName))
		}
		columns = append(columns, in.TotalName)

		required := append(append([]string(nil), model.ReconciliationKey...), in.TotalName)
		if err := RequireColumns(in.Label, in.Table, required); err != nil {
			return model.Table{}, stats, err
		}
	}

	groups := make(map[reconcileKey]*reconciledGroup)
	for i, in := range inputs {
		for _, rec := range in.Table.Rows {
			d, ok := model.DateOf(rec)
			if !ok {
				stats.SkippedNoDate++
				continue
			}
			k := reconcileKey{
				date:     d,
				state:    model.StringOf(rec, model.ColState),
				district: model.StringOf(rec, model.ColDistrict),
				pincode:  model.StringOf(rec, model.ColPincode),
				month:    model.StringOf(rec, model.ColMonth),
			}
			g, exists := groups[k]
			if !exists {
				g = &reconciledGroup{key: k, totals: make([]int64, len(inputs))}
				groups[k] = g
			}
			g.totals[i] = utils.AddCounts(g.totals[i], model.IntOf(rec, in.TotalName))
		}
	}

	ordered := make([]*reconciledGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return lessKey(ordered[i].key, ordered[j].key)
	})

	out := model.Table{Columns: columns, Rows: make([]model.GenericRecord, len(ordered))}
	for i, g := range ordered {
		row := model.GenericRecord{
			model.ColDate:     g.key.date,
			model.ColState:    g.key.state,
			model.ColDistrict: g.key.district,
			model.ColPincode:  g.key.pincode,
			model.ColMonth:    g.key.month,
		}
		for j, in := range inputs {
			row[in.TotalName] = g.totals[j]
		}
		out.Rows[i] = row
	}
	stats.Groups = len(ordered)

	if out.IsEmpty() {
		return model.Table{}, stats, nil
	}
	return out, stats, nil
}

func lessKey(a, b reconcileKey) bool {
	if !a.date.Equal(b.date) {
		return a.date.Before(b.date)
	}
	if a.state != b.state {
		return a.state < b.state
	}
	if a.district != b.district {
		return a.district < b.district
	}
	if a.pincode != b.pincode {
		return a.pincode < b.pincode
	}
	return a.month < b.month
}

// Trend sums metric per date, ascending. Rows without a date are ignored.
func Trend(t model.Table, metric string) []model.TrendPoint {
	sums := make(map[time.Time]int64)
	for _, rec := range t.Rows {
		d, ok := model.DateOf(rec)
		if !ok {
			continue
		}
		sums[d] = utils.AddCounts(sums[d], model.IntOf(rec, metric))
	}

	points := make([]model.TrendPoint, 0, len(sums))
	for d, v := range sums {
		points = append(points, model.TrendPoint{Date: d, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
