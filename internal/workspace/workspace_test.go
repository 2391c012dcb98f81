package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFsanchezherrero/PhiSpy/internal/seed"
)

func organism(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
	return dir
}

func TestNew(t *testing.T) {
	w := New(" org/ ", "out/")
	assert.Equal(t, "org", w.Organism)
	assert.Equal(t, "out", w.Output)
	assert.Equal(t, filepath.Join("org", "Features", "peg", "tbl"), w.PegTable())
	assert.Equal(t, filepath.Join("out", "classify.tsv"), w.Classification())
	assert.Equal(t, filepath.Join("out", "prophage.tbl"), w.Evaluation())
}

func TestWorkspace_CheckInputs(t *testing.T) {
	tests := []struct {
		name         string
		files        []string
		wantErr      bool
		wantWarnings int
	}{
		{"complete", []string{seed.ContigsFile, seed.PegTable, seed.FunctionsFile, seed.RNATable}, false, 0},
		{"no functions", []string{seed.ContigsFile, seed.PegTable, seed.RNATable}, false, 1},
		{"no functions or RNA", []string{seed.ContigsFile, seed.PegTable}, false, 2},
		{"no contigs", []string{seed.PegTable, seed.FunctionsFile, seed.RNATable}, true, 0},
		{"no peg table", []string{seed.ContigsFile, seed.FunctionsFile, seed.RNATable}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(organism(t, tt.files...), t.TempDir())
			warnings, err := w.CheckInputs()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingInput)
				return
			}
			require.NoError(t, err)
			assert.Len(t, warnings, tt.wantWarnings)
		})
	}
}

func TestWorkspace_EnsureOutput(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "a", "b")
		w := New(t.TempDir(), out)
		require.NoError(t, w.EnsureOutput())
		assert.DirExists(t, out)
		assert.NoFileExists(t, filepath.Join(out, writeCheckFile))
	})

	t.Run("output is a file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(out, nil, 0o644))
		w := New(t.TempDir(), out)
		assert.ErrorIs(t, w.EnsureOutput(), ErrOutputUnwritable)
	})

	t.Run("no output", func(t *testing.T) {
		assert.ErrorIs(t, New(t.TempDir(), "").EnsureOutput(), ErrOutputUnwritable)
	})
}
