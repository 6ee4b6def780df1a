package pipeline

import (
	"uidai-pipeline/internal/model"
	"uidai-pipeline/pkg/utils"
)

// DeriveTotal returns a copy of t where every measure column exists as a
// non-negative int64 and totalName holds their row-wise sum. The second
// return value lists measure columns the source did not have; they are
// materialized as zero.
func DeriveTotal(t model.Table, measures []string, totalName string) (model.Table, []string) {
	out := t.Clone()

	var missing []string
	if !t.IsEmpty() {
		missing = MissingColumns(t, measures)
	}
	for _, m := range measures {
		if !out.HasColumn(m) {
			out.Columns = append(out.Columns, m)
		}
	}
	if !out.HasColumn(totalName) {
		out.Columns = append(out.Columns, totalName)
	}

	for _, row := range out.Rows {
		var total int64
		for _, m := range measures {
			n := utils.ToCount(row[m])
			row[m] = n
			total = utils.AddCounts(total, n)
		}
		row[totalName] = total
	}

	return out, missing
}
