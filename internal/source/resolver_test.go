package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidai-pipeline/internal/model"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("date\n"), 0o644))
	return p
}

func TestResolveFixedListWithoutBaseDir(t *testing.T) {
	spec := model.DefaultDatasets()[model.KindDemographic]
	got := NewResolver("").Resolve(spec)
	assert.Equal(t, []string{"demo_all (1).csv", "demo_all (1)_2.csv"}, got)
}

func TestResolveGlobTakesPrecedenceSorted(t *testing.T) {
	dir := t.TempDir()
	c := touch(t, dir, "demo_all_c.csv")
	a := touch(t, dir, "demo_all (1).csv")
	b := touch(t, dir, "demo_all_b.csv")
	touch(t, dir, "enrollment_all.csv")

	spec := model.DefaultDatasets()[model.KindDemographic]
	got := NewResolver(dir).Resolve(spec)
	assert.Equal(t, []string{a, b, c}, got)
}

func TestResolveFallsBackToFixedListUnderBaseDir(t *testing.T) {
	dir := t.TempDir()
	spec := model.DefaultDatasets()[model.KindBiometric]

	got := NewResolver(dir).Resolve(spec)
	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(dir, "mightymerge.io__xzzeu4zp.csv"), got[0])
	assert.Equal(t, filepath.Join(dir, "mightymerge.io__xzzeu4zp (1)_2.csv"), got[1])
}

func TestResolveKeepsAbsoluteAndSkipsBlank(t *testing.T) {
	spec := model.DatasetSpec{Files: []string{"/abs/x.csv", "", "rel.csv"}}
	got := NewResolver("/data").Resolve(spec)
	assert.Equal(t, []string{"/abs/x.csv", filepath.Join("/data", "rel.csv")}, got)
}
