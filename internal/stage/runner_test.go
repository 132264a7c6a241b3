package stage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records every unit it is asked to run and fails the units
// listed in failures.
type fakeExecutor struct {
	calls    []string
	failures map[string]Result
}

func (f *fakeExecutor) Execute(_ context.Context, unit string) Result {
	f.calls = append(f.calls, unit)
	if res, ok := f.failures[unit]; ok {
		return res
	}
	return Result{}
}

func existing(paths ...string) func(string) bool {
	set := map[string]bool{}
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}

func scenarioRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Stage{
		{Name: "A", Units: []string{"p1", "p2"}},
		{Name: "B", Units: []string{"p3"}},
	}, []string{"A", "B"})
	require.NoError(t, err)
	return reg
}

func newTestRunner(reg *Registry, exec Executor, exists func(string) bool) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	r := NewRunner(reg, exec,
		WithBaseDir("/base"),
		WithOutput(&out),
		WithExistsFunc(func(p string) bool {
			return exists(strings.TrimPrefix(p, "/base/"))
		}),
	)
	return r, &out
}

func TestRunStage_SkipsMissingUnits(t *testing.T) {
	exec := &fakeExecutor{}
	r, out := newTestRunner(scenarioRegistry(t), exec, existing("p1"))

	sum, err := r.RunStage(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, sum.OK())
	assert.Equal(t, []string{"p1"}, exec.calls)
	require.Len(t, sum.Stages, 1)
	assert.Equal(t, UnitSucceeded, sum.Stages[0].Units[0].Status)
	assert.Equal(t, UnitSkipped, sum.Stages[0].Units[1].Status)
	assert.Contains(t, out.String(), "Warning: p2 not found, skipping...")
	assert.Contains(t, out.String(), "✓ Stage A completed successfully")
}

func TestRunStage_FailureReported(t *testing.T) {
	exec := &fakeExecutor{failures: map[string]Result{"p3": {ExitCode: 1, Stderr: "kernel died"}}}
	r, out := newTestRunner(scenarioRegistry(t), exec, existing("p1", "p2", "p3"))

	sum, err := r.RunStage(context.Background(), "B")
	require.Error(t, err)
	var ee *ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "B", ee.Stage)
	assert.Equal(t, "p3", ee.Unit)
	assert.False(t, sum.OK())
	assert.Equal(t, "B", sum.FailedStage)
	assert.Equal(t, "p3", sum.FailedUnit)
	assert.Equal(t, []string{"p3"}, exec.calls)
	assert.Contains(t, out.String(), "✗ Error running p3")
	assert.Contains(t, out.String(), "Error: kernel died")
	assert.Contains(t, out.String(), "Pipeline stopped due to error in p3")
}

func TestRunStage_FailFastWithinStage(t *testing.T) {
	reg, err := NewRegistry([]Stage{{Name: "s", Units: []string{"u1", "u2", "u3", "u4"}}}, []string{"s"})
	require.NoError(t, err)
	exec := &fakeExecutor{failures: map[string]Result{"u2": {ExitCode: 2}}}
	r, _ := newTestRunner(reg, exec, existing("u1", "u2", "u3", "u4"))

	_, err = r.RunStage(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, []string{"u1", "u2"}, exec.calls)
}

func TestRunStage_UnknownStage(t *testing.T) {
	exec := &fakeExecutor{}
	r, out := newTestRunner(scenarioRegistry(t), exec, existing("p1", "p2", "p3"))

	sum, err := r.RunStage(context.Background(), "nonexistent")
	var use *UnknownStageError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, "nonexistent", use.Name)
	assert.Equal(t, []string{"A", "B"}, use.Available)
	assert.Empty(t, exec.calls)
	assert.Empty(t, sum.Stages)
	assert.Contains(t, out.String(), "Error: Unknown stage 'nonexistent'")
	assert.Contains(t, out.String(), "Available stages: A, B")
}

func TestRunStage_AllUnitsMissing(t *testing.T) {
	exec := &fakeExecutor{}
	r, _ := newTestRunner(scenarioRegistry(t), exec, existing())

	sum, err := r.RunStage(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, sum.OK())
	assert.Empty(t, exec.calls)
	assert.Equal(t, 0, sum.Stages[0].Executed())
}

func TestRunStage_OnlyOwnUnits(t *testing.T) {
	exec := &fakeExecutor{}
	r, _ := newTestRunner(scenarioRegistry(t), exec, existing("p1", "p2", "p3"))

	_, err := r.RunStage(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, exec.calls)
}

func TestRunStage_InvocationFault(t *testing.T) {
	exec := &fakeExecutor{failures: map[string]Result{"p1": {ExitCode: -1, Error: "program jupyter not found"}}}
	r, out := newTestRunner(scenarioRegistry(t), exec, existing("p1", "p2"))

	_, err := r.RunStage(context.Background(), "A")
	require.Error(t, err)
	assert.Equal(t, "stage A: p1 failed: program jupyter not found", err.Error())
	assert.Contains(t, out.String(), "✗ Exception running p1: program jupyter not found")
	assert.Equal(t, []string{"p1"}, exec.calls)
}

func TestRunAll_InOrder(t *testing.T) {
	exec := &fakeExecutor{}
	r, out := newTestRunner(scenarioRegistry(t), exec, existing("p1", "p2", "p3"))

	sum, err := r.RunAll(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.OK())
	assert.Equal(t, []string{"p1", "p2", "p3"}, exec.calls)
	assert.Equal(t, []string{"p1", "p2", "p3"}, sum.Attempted())
	assert.Contains(t, out.String(), "=== STARTING COMPLETE smFISH ANALYSIS PIPELINE ===")
	assert.Contains(t, out.String(), "COMPLETE PIPELINE FINISHED SUCCESSFULLY")
}

func TestRunAll_StopsAfterFailedStage(t *testing.T) {
	reg, err := NewRegistry([]Stage{
		{Name: "A", Units: []string{"p1"}},
		{Name: "B", Units: []string{"p2"}},
		{Name: "C", Units: []string{"p3"}},
	}, []string{"A", "B", "C"})
	require.NoError(t, err)
	exec := &fakeExecutor{failures: map[string]Result{"p2": {ExitCode: 1}}}
	r, out := newTestRunner(reg, exec, existing("p1", "p2", "p3"))

	sum, err := r.RunAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"p1", "p2"}, exec.calls)
	assert.Equal(t, "B", sum.FailedStage)
	require.Len(t, sum.Stages, 2)
	assert.True(t, sum.Stages[0].OK)
	assert.False(t, sum.Stages[1].OK)
	assert.Contains(t, out.String(), "Pipeline failed at stage: B")
	assert.NotContains(t, out.String(), "Running Stage: C")
}

func TestRunAll_FollowsOrderNotDeclaration(t *testing.T) {
	reg, err := NewRegistry([]Stage{
		{Name: "A", Units: []string{"p1"}},
		{Name: "B", Units: []string{"p2"}},
		{Name: "extra", Units: []string{"p9"}},
	}, []string{"B", "A"})
	require.NoError(t, err)
	exec := &fakeExecutor{}
	r, _ := newTestRunner(reg, exec, existing("p1", "p2", "p9"))

	_, err = r.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, exec.calls)
}

func TestRunAll_ResultsDirMessage(t *testing.T) {
	exec := &fakeExecutor{}
	var out bytes.Buffer
	r := NewRunner(scenarioRegistry(t), exec,
		WithOutput(&out),
		WithResultsDir("results"),
		WithTitle("demo"),
		WithExistsFunc(func(string) bool { return true }),
	)
	_, err := r.RunAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "=== STARTING COMPLETE demo ===")
	assert.Contains(t, out.String(), "Results can be found in the 'results/' directory")
}

func TestRunAll_CanceledContext(t *testing.T) {
	exec := &fakeExecutor{}
	r, _ := newTestRunner(scenarioRegistry(t), exec, existing("p1", "p2", "p3"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := r.RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.calls)
	assert.Equal(t, "A", sum.FailedStage)
}

func TestList_Idempotent(t *testing.T) {
	r, _ := newTestRunner(scenarioRegistry(t), &fakeExecutor{}, existing())
	var first, second bytes.Buffer
	r.List(&first)
	r.List(&second)
	assert.Equal(t, first.String(), second.String())

	want := "Available pipeline stages:\n" +
		strings.Repeat("=", 40) + "\n" +
		"\nA:\n  - p1\n  - p2\n" +
		"\nB:\n  - p3\n" +
		"\nComplete pipeline order: A → B\n"
	assert.Equal(t, want, first.String())
}

func TestRunStage_ResolvesAgainstBaseDir(t *testing.T) {
	var seen []string
	exec := &fakeExecutor{}
	var out bytes.Buffer
	r := NewRunner(scenarioRegistry(t), exec,
		WithBaseDir("/data/pipeline"),
		WithOutput(&out),
		WithExistsFunc(func(p string) bool {
			seen = append(seen, p)
			return true
		}),
	)
	_, err := r.RunStage(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/pipeline/p3"}, seen)
	assert.Equal(t, []string{"p3"}, exec.calls)
}

func TestProgressHeartbeat(t *testing.T) {
	reg, err := NewRegistry([]Stage{{Name: "slow", Units: []string{"nb"}}}, []string{"slow"})
	require.NoError(t, err)
	exec := ExecutorFunc(func(context.Context, string) Result {
		time.Sleep(60 * time.Millisecond)
		return Result{}
	})
	var out bytes.Buffer
	r := NewRunner(reg, exec,
		WithOutput(&out),
		WithProgressInterval(10*time.Millisecond),
		WithExistsFunc(func(string) bool { return true }),
	)
	_, err = r.RunStage(context.Background(), "slow")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "progress stage=slow unit=nb elapsed=")
}
