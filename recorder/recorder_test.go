package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)

	run, err := r.StartRun(ctx, Run{
		Width: 4, Height: 5, Depth: 6,
		RuleSet: "2,3/3", Neighborhood: "von-neumann", SeedPolicy: "random",
		Seed: 1 << 62,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(run.ID)
	require.NoError(t, err)

	gens := []Generation{
		{Generation: 0, Alive: 12, Fingerprint: "aa"},
		{Generation: 1, Alive: 0, Fingerprint: "bb"},
		{Generation: 2, Alive: 9, Fingerprint: "cc", Regenerated: true},
	}
	for _, g := range gens {
		require.NoError(t, r.RecordGeneration(ctx, run.ID, g))
	}
	require.NoError(t, r.FinishRun(ctx, run.ID, len(gens)))

	got, err := r.Generations(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(gens, got); diff != "" {
		t.Fatalf("generations mismatch (-want +got):\n%s", diff)
	}

	runs, err := r.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 3, runs[0].Generations)
	assert.Equal(t, uint64(1<<62), runs[0].Seed)
	assert.Equal(t, "2,3/3", runs[0].RuleSet)
	assert.False(t, runs[0].FinishedAt.IsZero())
	assert.Equal(t, run.StartedAt.UnixNano(), runs[0].StartedAt.UnixNano())
}

func TestDuplicateGenerationFails(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)

	run, err := r.StartRun(ctx, Run{Width: 1, Height: 1, Depth: 1})
	require.NoError(t, err)
	require.NoError(t, r.RecordGeneration(ctx, run.ID, Generation{Generation: 0, Fingerprint: "x"}))
	assert.Error(t, r.RecordGeneration(ctx, run.ID, Generation{Generation: 0, Fingerprint: "y"}))
}

func TestUnknownRun(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)

	assert.Error(t, r.FinishRun(ctx, "missing", 1))
	assert.Error(t, r.RecordGeneration(ctx, "missing", Generation{}), "foreign key rejects unknown runs")

	got, err := r.Generations(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	r, err := Open(path)
	require.NoError(t, err)
	_, err = r.StartRun(ctx, Run{Width: 2, Height: 2, Depth: 2})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenInMemory(t *testing.T) {
	r, err := Open(":memory:")
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
