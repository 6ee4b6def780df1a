package pipeline

import (
	"github.com/montanaflynn/stats"

	"uidai-pipeline/internal/model"
	"uidai-pipeline/pkg/utils"
)

// Summarize computes the KPI figures for a table. metric is the headline
// total column; every column in totals is summed as well.
func Summarize(t model.Table, metric string, totals []string) model.Summary {
	s := model.Summary{
		Records:   t.Len(),
		Metric:    metric,
		Totals:    make(map[string]int64, len(totals)),
		States:    len(DistinctValues(t, model.ColState)),
		Districts: len(DistinctValues(t, model.ColDistrict)),
	}

	perRow := make(stats.Float64Data, 0, t.Len())
	for _, rec := range t.Rows {
		v := model.IntOf(rec, metric)
		s.Total = utils.AddCounts(s.Total, v)
		perRow = append(perRow, float64(v))

		for _, c := range totals {
			s.Totals[c] = utils.AddCounts(s.Totals[c], model.IntOf(rec, c))
		}

		if d, ok := model.DateOf(rec); ok {
			if s.MinDate == nil || d.Before(*s.MinDate) {
				min := d
				s.MinDate = &min
			}
			if s.MaxDate == nil || d.After(*s.MaxDate) {
				max := d
				s.MaxDate = &max
			}
		}
	}

	// Both only fail on empty input, where zero is the right answer.
	if mean, err := perRow.Mean(); err == nil {
		s.Mean = mean
	}
	if median, err := perRow.Median(); err == nil {
		s.Median = median
	}
	return s
}
