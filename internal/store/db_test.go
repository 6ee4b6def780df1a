package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := model.LoadRecord{
		ID:         "a1",
		Kind:       "enrolment",
		Paths:      []string{"/data/enrollment_all (1).csv", "/data/enrollment_all (2).csv"},
		RowCount:   12,
		Status:     model.LoadStatusCompleted,
		Warnings:   []string{"schema drift"},
		DurationMS: 40,
		CreatedAt:  created,
	}
	require.NoError(t, s.SaveLoad(ctx, rec))

	got, err := s.GetLoad(ctx, "a1")
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("GetLoad mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad_NilListsRoundTripAsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLoad(ctx, model.LoadRecord{
		ID:     "f1",
		Kind:   "biometric",
		Status: model.LoadStatusFailed,
		Error:  "MALFORMED_FILE: bad.csv",
	}))

	got, err := s.GetLoad(ctx, "f1")
	require.NoError(t, err)
	assert.Empty(t, got.Paths)
	assert.Empty(t, got.Warnings)
	assert.Equal(t, "MALFORMED_FILE: bad.csv", got.Error)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveLoad_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := model.LoadRecord{ID: "dup", Kind: "enrolment", Status: model.LoadStatusCompleted}

	require.NoError(t, s.SaveLoad(ctx, rec))
	err := s.SaveLoad(ctx, rec)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDatabaseError))
}

func TestGetLoad_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetLoad(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestListLoads(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, kind := range []string{"enrolment", "demographic", "enrolment", "combined"} {
		require.NoError(t, s.SaveLoad(ctx, model.LoadRecord{
			ID:        string(rune('a' + i)),
			Kind:      kind,
			Status:    model.LoadStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.ListLoads(ctx, "", 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids)

	enrol, err := s.ListLoads(ctx, "enrolment", 1)
	require.NoError(t, err)
	require.Len(t, enrol, 1)
	assert.Equal(t, "c", enrol[0].ID)
}
