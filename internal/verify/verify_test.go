package verify

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/smfish-pipeline/internal/stage"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestFindNotebooks_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.ipynb", "{}")
	writeFile(t, root, "01_preprocessing/a.ipynb", "{}")
	writeFile(t, root, "01_preprocessing/.ipynb_checkpoints/a-checkpoint.ipynb", "{}")
	writeFile(t, root, "scratch/tmp.ipynb", "{}")
	writeFile(t, root, "01_preprocessing/notes.md", "x")
	writeFile(t, root, ".gitignore", "scratch/\n")

	got, err := FindNotebooks(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"01_preprocessing/a.ipynb", "main.ipynb"}, got)

	got, err = FindNotebooks(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"01_preprocessing/a.ipynb", "main.ipynb", "scratch/tmp.ipynb"}, got)
}

func TestFindNotebooks_NestedGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "05_analysis/9_stats.ipynb", "{}")
	writeFile(t, root, "05_analysis/draft.ipynb", "{}")
	writeFile(t, root, "05_analysis/.gitignore", "draft.ipynb\n")

	got, err := FindNotebooks(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"05_analysis/9_stats.ipynb"}, got)
}

func TestSections(t *testing.T) {
	secs := Sections(
		[]stage.Stage{{Name: "complete_segmentation", Units: []string{"02_segmentation/5_complete_segmentation.ipynb"}}},
		[]Item{{Path: "README.md", Description: "Main README"}},
		[]Item{{Path: "results", Description: "Results Directory"}},
	)
	require.Len(t, secs, 3)
	assert.Equal(t, "Main Pipeline Files", secs[0].Title)
	assert.Equal(t, "Complete Segmentation Notebooks", secs[1].Title)
	assert.Equal(t, Item{Path: "02_segmentation/5_complete_segmentation.ipynb", Description: "5_complete_segmentation"}, secs[1].Items[0])
	assert.Equal(t, "Results Directory", secs[2].Title)
}

func TestRun_ReportsMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# pipeline")
	writeFile(t, root, "01_preprocessing/a.ipynb", "{}")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "results"), 0o755))

	secs := Sections(
		[]stage.Stage{{Name: "preprocessing", Units: []string{"01_preprocessing/a.ipynb", "01_preprocessing/b.ipynb"}}},
		[]Item{{Path: "README.md", Description: "Main README"}},
		[]Item{{Path: "results", Description: "Results Directory"}},
	)
	var out bytes.Buffer
	rep, err := Run(root, secs, Options{MinNotebooks: 1}, &out)
	require.NoError(t, err)

	assert.False(t, rep.OK())
	assert.False(t, rep.StructureOK())
	assert.Equal(t, []Item{{Path: "01_preprocessing/b.ipynb", Description: "b"}}, rep.Missing())
	assert.Len(t, rep.Notebooks, 1)
	s := out.String()
	assert.Contains(t, s, "1. Main Pipeline Files:")
	assert.Contains(t, s, "✓ Main README: README.md")
	assert.Contains(t, s, "✗ MISSING b: 01_preprocessing/b.ipynb")
	assert.Contains(t, s, "❌ VERIFICATION FAILED!")
	assert.Contains(t, s, "Total notebooks in pipeline: 1")
}

func TestRun_SucceedsButTooFewNotebooks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ipynb", "{}")
	secs := Sections([]stage.Stage{{Name: "s", Units: []string{"a.ipynb"}}}, nil, nil)

	var out bytes.Buffer
	rep, err := Run(root, secs, Options{MinNotebooks: 2}, &out)
	require.NoError(t, err)
	assert.True(t, rep.StructureOK())
	assert.False(t, rep.OK())
	assert.Contains(t, out.String(), "🎉 VERIFICATION SUCCESSFUL!")
	assert.Contains(t, out.String(), "Integration verification found issues.")
}

func TestRun_AllPresent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ipynb", "{}")
	secs := Sections([]stage.Stage{{Name: "s", Units: []string{"a.ipynb"}}}, nil, nil)

	var out bytes.Buffer
	rep, err := Run(root, secs, Options{MinNotebooks: 1}, &out)
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Contains(t, out.String(), "Integration verification completed successfully!")
}
