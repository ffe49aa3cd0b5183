package runstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestInsertAndGetRun(t *testing.T) {
	s := openInMemory(t)

	r := Run{
		RunID:          "run-1",
		StartedAt:      "2026-08-03 00:00:00",
		FinishedAt:     "2026-08-03 00:01:00",
		NewickPath:     "tree.nwk",
		ReferencePath:  "ref.fa",
		Seed:           42,
		NumChromosomes: 2,
		Status:         "completed",
	}
	require.NoError(t, s.InsertRun(r))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestUpdateRunStatus(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.InsertRun(Run{RunID: "run-2", Status: "running"}))

	require.NoError(t, s.UpdateRunStatus("run-2", "failed", "2026-08-03 00:02:00"))

	got, err := s.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "2026-08-03 00:02:00", got.FinishedAt)
}

func TestInsertAndListChromRuns(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.InsertRun(Run{RunID: "run-3"}))

	rows := []ChromRun{
		{RunID: "run-3", ChromName: "chr2", NumSubstitutions: 5, NumInsertions: 1, NumDeletions: 0, FinalSize: 1001},
		{RunID: "run-3", ChromName: "chr1", NumSubstitutions: 10, NumInsertions: 0, NumDeletions: 2, FinalSize: 998},
	}
	require.NoError(t, s.InsertChromRuns(rows))

	got, err := s.ListChromRuns("run-3")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// ORDER BY chrom_name: chr1 before chr2.
	assert.Equal(t, "chr1", got[0].ChromName)
	assert.Equal(t, "chr2", got[1].ChromName)
}

func TestInsertChromRunsEmpty(t *testing.T) {
	s := openInMemory(t)
	assert.NoError(t, s.InsertChromRuns(nil))
}

func TestListRuns(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.InsertRun(Run{RunID: "a", StartedAt: "2026-08-01 00:00:00"}))
	require.NoError(t, s.InsertRun(Run{RunID: "b", StartedAt: "2026-08-02 00:00:00"}))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Most recently started first.
	assert.Equal(t, "b", runs[0].RunID)
	assert.Equal(t, "a", runs[1].RunID)
}

func TestGetRunNotFound(t *testing.T) {
	s := openInMemory(t)
	_, err := s.GetRun("missing")
	assert.Error(t, err)
}
