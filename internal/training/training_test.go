package training

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const list = "1\tEcoli.txt\tEscherichia coli K-12\t1\n" +
	"2\tSaureus.txt\tStaphylococcus aureus\t0\n" +
	"\n" +
	"3\tPaeruginosa.txt\tPseudomonas aeruginosa PAO1\t1\n"

func sets(t *testing.T) []Set {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(list), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := sets(t)
	require.Len(t, s, 3)
	assert.Equal(t, Set{ID: 1, File: "Ecoli.txt", Name: "Escherichia coli K-12", Enabled: true}, s[0])
	assert.False(t, s[1].Enabled)

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("short row", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "list.txt")
		require.NoError(t, os.WriteFile(path, []byte("1\tfile\tname\n"), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "want 4 columns")
	})
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Print(&out, sets(t)))
	assert.Equal(t, "1 Escherichia coli K-12\n3 Pseudomonas aeruginosa PAO1\n", out.String())
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"valid", "3\n", 3, false},
		{"none", "0\n", 0, false},
		{"retries until valid", "abc\n-1\n31\n 12 \n", 12, false},
		{"upper bound", "30\n", 30, false},
		{"no input", "", 0, true},
		{"runs out of input", "x\ny\n", 0, true},
		{"too many attempts", strings.Repeat("99\n", MaxAttempts+1), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Choose(strings.NewReader(tt.input), &out, sets(t), 30)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoChoice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "1 Escherichia coli K-12")
		})
	}
}
