package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
)

func keyed(d interface{}, state, district, pincode string, extra model.GenericRecord) model.GenericRecord {
	row := model.GenericRecord{
		model.ColDate:     d,
		model.ColState:    state,
		model.ColDistrict: district,
		model.ColPincode:  pincode,
		model.ColMonth:    nil,
	}
	if t, ok := d.(time.Time); ok {
		row[model.ColMonth] = t.Format("2006-01")
	}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

func totaled(total string, rows ...model.GenericRecord) model.Table {
	return model.Table{
		Columns: append(append([]string(nil), model.ReconciliationKey...), total),
		Rows:    rows,
	}
}

func TestReconcile(t *testing.T) {
	d := day(2025, 3, 1)
	enrol := totaled("total_enrolments",
		keyed(d, "Karnataka", "Mysuru", "570001", model.GenericRecord{"total_enrolments": int64(4)}),
		keyed(d, "Karnataka", "Mysuru", "570001", model.GenericRecord{"total_enrolments": int64(6)}),
	)
	demo := totaled("total_demographic",
		keyed(d, "Karnataka", "Mysuru", "570001", model.GenericRecord{"total_demographic": int64(5)}),
	)
	bio := totaled("total_biometric",
		keyed(d, "Karnataka", "Mysuru", "570001", model.GenericRecord{"total_biometric": int64(3)}),
	)

	got, stats, err := Reconcile(
		ReconcileInput{Label: "enrolment", Table: enrol, TotalName: "total_enrolments"},
		ReconcileInput{Label: "demographic", Table: demo, TotalName: "total_demographic"},
		ReconcileInput{Label: "biometric", Table: bio, TotalName: "total_biometric"},
	)
	require.NoError(t, err)
	assert.Equal(t, ReconcileStats{Groups: 1}, stats)

	want := model.Table{
		Columns: []string{"date", "state", "district", "pincode", "month", "total_enrolments", "total_demographic", "total_biometric"},
		Rows: []model.GenericRecord{{
			"date": d, "state": "Karnataka", "district": "Mysuru", "pincode": "570001", "month": "2025-03",
			"total_enrolments": int64(10), "total_demographic": int64(5), "total_biometric": int64(3),
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_OuterJoinAndOrder(t *testing.T) {
	early, late := day(2025, 3, 1), day(2025, 3, 2)
	enrol := totaled("total_enrolments",
		keyed(late, "Kerala", "Ernakulam", "682001", model.GenericRecord{"total_enrolments": int64(2)}),
		keyed(nil, "Kerala", "Ernakulam", "682001", model.GenericRecord{"total_enrolments": int64(50)}),
	)
	demo := totaled("total_demographic",
		keyed(early, "Goa", "North Goa", "403001", model.GenericRecord{"total_demographic": int64(7)}),
	)

	got, stats, err := Reconcile(
		ReconcileInput{Label: "enrolment", Table: enrol, TotalName: "total_enrolments"},
		ReconcileInput{Label: "demographic", Table: demo, TotalName: "total_demographic"},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 1, stats.SkippedNoDate)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Goa", got.Rows[0][model.ColState])
	assert.Equal(t, int64(0), got.Rows[0]["total_enrolments"])
	assert.Equal(t, int64(7), got.Rows[0]["total_demographic"])
	assert.Equal(t, "Kerala", got.Rows[1][model.ColState])
	assert.Equal(t, int64(2), got.Rows[1]["total_enrolments"])
	assert.Equal(t, int64(0), got.Rows[1]["total_demographic"])
}

func TestReconcile_EmptyInputs(t *testing.T) {
	got, _, err := Reconcile(
		ReconcileInput{Label: "enrolment", TotalName: "total_enrolments"},
		ReconcileInput{Label: "demographic", TotalName: "total_demographic"},
	)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestReconcile_MissingColumns(t *testing.T) {
	noPincode := model.Table{
		Columns: []string{"date", "state", "district", "month", "total_enrolments"},
		Rows:    []model.GenericRecord{{"date": day(2025, 3, 1), "total_enrolments": int64(1)}},
	}

	_, _, err := Reconcile(ReconcileInput{Label: "enrolment", Table: noPincode, TotalName: "total_enrolments"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingColumns))
	assert.Contains(t, err.Error(), "pincode")
}

func TestReconcile_DuplicateTotalName(t *testing.T) {
	tbl := totaled("total", keyed(day(2025, 3, 1), "Goa", "North Goa", "403001", model.GenericRecord{"total": int64(1)}))

	_, _, err := Reconcile(
		ReconcileInput{Label: "a", Table: tbl, TotalName: "total"},
		ReconcileInput{Label: "b", Table: tbl, TotalName: "total"},
	)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestSums_Saturate(t *testing.T) {
	d := day(2025, 3, 1)
	tbl := totaled("total_enrolments",
		keyed(d, "Goa", "North Goa", "403001", model.GenericRecord{"total_enrolments": int64(math.MaxInt64)}),
		keyed(d, "Goa", "North Goa", "403001", model.GenericRecord{"total_enrolments": int64(10)}),
	)

	got, _, err := Reconcile(ReconcileInput{Label: "enrolment", Table: tbl, TotalName: "total_enrolments"})
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, int64(math.MaxInt64), got.Rows[0]["total_enrolments"])

	trend := Trend(tbl, "total_enrolments")
	require.Len(t, trend, 1)
	assert.Equal(t, int64(math.MaxInt64), trend[0].Value)

	s := Summarize(tbl, "total_enrolments", []string{"total_enrolments"})
	assert.Equal(t, int64(math.MaxInt64), s.Total)
	assert.Equal(t, int64(math.MaxInt64), s.Totals["total_enrolments"])
}

func TestTrend(t *testing.T) {
	tbl := totaled("total_enrolments",
		keyed(day(2025, 3, 2), "Goa", "North Goa", "403001", model.GenericRecord{"total_enrolments": int64(5)}),
		keyed(day(2025, 3, 1), "Goa", "North Goa", "403001", model.GenericRecord{"total_enrolments": int64(1)}),
		keyed(day(2025, 3, 2), "Kerala", "Ernakulam", "682001", model.GenericRecord{"total_enrolments": int64(10)}),
		keyed(nil, "Kerala", "Ernakulam", "682001", model.GenericRecord{"total_enrolments": int64(99)}),
	)

	want := []model.TrendPoint{
		{Date: day(2025, 3, 1), Value: 1},
		{Date: day(2025, 3, 2), Value: 15},
	}
	if diff := cmp.Diff(want, Trend(tbl, "total_enrolments")); diff != "" {
		t.Errorf("Trend() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, Trend(model.Table{}, "total_enrolments"))
}
