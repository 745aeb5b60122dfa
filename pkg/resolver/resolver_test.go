package resolver_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqops/bamlink/pkg/errors"
	"github.com/seqops/bamlink/pkg/filesystem"
	"github.com/seqops/bamlink/pkg/resolver"
	"github.com/seqops/bamlink/pkg/testutil"
	"github.com/seqops/bamlink/pkg/types"
)

var samplePattern = regexp.MustCompile(`C-(.*)-(L|N)(\d*)-d`)

var defaultExcludes = []string{
	"QC_Results", "log", "picard_metrics", "Joint_QC", "tmp",
	"bams", "duplex", "simplex", "_results",
}

func TestResolveFindsSamplesAtEachLevel(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	testutil.MkDirs(t, fsys,
		"/runs/P1/bam_qc/Sample_C-100-N1-d",
		"/runs/P1/bam_qc/Batch1/Sample_C-200-N1-d",
		"/runs/P1/bam_qc/RunA/Lane1/Sample_C-300-L1-d",
	)

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	require.NoError(t, res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1"))

	require.Len(t, samples, 3)
	assert.Equal(t, "/runs/P1/bam_qc/Sample_C-100-N1-d", samples["Sample_C-100-N1-d"].Dir)
	assert.Equal(t, "/runs/P1/bam_qc/Batch1/Sample_C-200-N1-d", samples["Sample_C-200-N1-d"].Dir)
	assert.Equal(t, "/runs/P1/bam_qc/RunA/Lane1/Sample_C-300-L1-d", samples["Sample_C-300-L1-d"].Dir)
	assert.Equal(t, "P1", samples["Sample_C-100-N1-d"].Project)
}

func TestResolveDepthBound(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	testutil.MkDirs(t, fsys,
		"/runs/P1/bam_qc/a/b/c/Sample_C-100-N1-d", // level 3, out of reach
		"/runs/P1/bam_qc/a/Sample_C-200-N1-d",     // level 1
	)

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	require.NoError(t, res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1"))

	assert.NotContains(t, samples, "Sample_C-100-N1-d")
	assert.Contains(t, samples, "Sample_C-200-N1-d")
}

func TestResolveCurrentPreference(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	testutil.MkDirs(t, fsys,
		"/runs/P1/bam_qc/current/Sample_C-100-N1-d",
		"/runs/P1/bam_qc/Batch1/Sample_C-200-N1-d", // outside current, never considered
		"/runs/P1/bam_qc/Sample_C-300-N1-d",        // outside current, never considered
	)

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	require.NoError(t, res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1"))

	require.Len(t, samples, 1)
	assert.Equal(t, "/runs/P1/bam_qc/current/Sample_C-100-N1-d", samples["Sample_C-100-N1-d"].Dir)
}

func TestResolveCurrentSubstitutionIsNotRecursive(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	// A nested "current" below the top-level one is an ordinary
	// candidate, not a second substitution.
	testutil.MkDirs(t, fsys,
		"/runs/P1/bam_qc/current/current/Sample_C-100-N1-d",
		"/runs/P1/bam_qc/current/Sample_C-200-N1-d",
	)

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	require.NoError(t, res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1"))

	assert.Contains(t, samples, "Sample_C-100-N1-d")
	assert.Contains(t, samples, "Sample_C-200-N1-d")
}

func TestResolveExclusions(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	testutil.MkDirs(t, fsys,
		"/runs/P1/bam_qc/log/Sample_C-100-N1-d",
		"/runs/P1/bam_qc/picard_metrics/Sample_C-200-N1-d",
		"/runs/P1/bam_qc/Batch_results/Sample_C-300-N1-d", // suffix match on _results
		"/runs/P1/bam_qc/Batch1/Sample_C-400-N1-d",
	)

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	require.NoError(t, res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1"))

	require.Len(t, samples, 1)
	assert.Contains(t, samples, "Sample_C-400-N1-d")
}

func TestResolveMissingRoot(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	testutil.MkDirs(t, fsys, "/runs/P1")

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	err := res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProjectNotFound))
	assert.Empty(t, samples)
}

func TestResolveEmptyRoot(t *testing.T) {
	fsys, _ := testutil.NewMemFS()
	testutil.MkDirs(t, fsys, "/runs/P1/bam_qc")

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)

	require.NoError(t, res.Resolve(samples, "/runs/P1/bam_qc", samplePattern, "P1"))
	assert.Empty(t, samples)
}

func TestMergeNewestWins(t *testing.T) {
	fsys := filesystem.NewOS()
	runs := t.TempDir()

	older := filepath.Join(runs, "P_old", "bam_qc", "Sample_C-100-N1-d")
	newer := filepath.Join(runs, "P_new", "bam_qc", "Sample_C-100-N1-d")
	require.NoError(t, os.MkdirAll(older, 0755))
	require.NoError(t, os.MkdirAll(newer, 0755))

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	testutil.SetMTime(t, older, base)
	testutil.SetMTime(t, newer, base.Add(time.Minute))

	res := resolver.New(fsys, defaultExcludes)

	// The newest directory must win in either processing order.
	for _, order := range [][]string{{"P_old", "P_new"}, {"P_new", "P_old"}} {
		samples := make(types.ResolvedSamples)
		for _, project := range order {
			root := filepath.Join(runs, project, "bam_qc")
			require.NoError(t, res.Resolve(samples, root, samplePattern, project))
		}
		require.Len(t, samples, 1)
		got := samples["Sample_C-100-N1-d"]
		assert.Equal(t, newer, got.Dir, "order %v", order)
		assert.Equal(t, "P_new", got.Project, "order %v", order)
	}
}

func TestMergeTieBreakIsDeterministic(t *testing.T) {
	fsys := filesystem.NewOS()
	runs := t.TempDir()

	dirA := filepath.Join(runs, "P_a", "bam_qc", "Sample_C-100-N1-d")
	dirB := filepath.Join(runs, "P_b", "bam_qc", "Sample_C-100-N1-d")
	require.NoError(t, os.MkdirAll(dirA, 0755))
	require.NoError(t, os.MkdirAll(dirB, 0755))

	tie := time.Now().Add(-time.Hour).Truncate(time.Second)
	testutil.SetMTime(t, dirA, tie)
	testutil.SetMTime(t, dirB, tie)

	res := resolver.New(fsys, defaultExcludes)

	// On an exact mtime tie the lexicographically smaller project wins,
	// independent of processing order.
	for _, order := range [][]string{{"P_a", "P_b"}, {"P_b", "P_a"}} {
		samples := make(types.ResolvedSamples)
		for _, project := range order {
			root := filepath.Join(runs, project, "bam_qc")
			require.NoError(t, res.Resolve(samples, root, samplePattern, project))
		}
		got := samples["Sample_C-100-N1-d"]
		assert.Equal(t, "P_a", got.Project, "order %v", order)
		assert.Equal(t, dirA, got.Dir, "order %v", order)
	}
}

func TestResolveCurrentOverridesStaleDuplicate(t *testing.T) {
	// The worked production case: a curated copy under current/ and a
	// stale duplicate in a batch directory. current wins because the
	// batch copy is never a candidate.
	fsys := filesystem.NewOS()
	runs := t.TempDir()

	current := filepath.Join(runs, "Project_100_X", "bam_qc", "current", "Sample_C-123-N1-d")
	stale := filepath.Join(runs, "Project_100_X", "bam_qc", "Batch1", "Sample_C-123-N1-d")
	require.NoError(t, os.MkdirAll(current, 0755))
	require.NoError(t, os.MkdirAll(stale, 0755))
	testutil.SetMTime(t, stale, time.Now().Add(-24*time.Hour))

	samples := make(types.ResolvedSamples)
	res := resolver.New(fsys, defaultExcludes)
	root := filepath.Join(runs, "Project_100_X", "bam_qc")
	require.NoError(t, res.Resolve(samples, root, samplePattern, "Project_100_X"))

	require.Len(t, samples, 1)
	assert.Equal(t, current, samples["Sample_C-123-N1-d"].Dir)
}
