package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFsanchezherrero/PhiSpy/internal/seed"
	"github.com/JFsanchezherrero/PhiSpy/internal/workspace"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	runOpts = runFlags{number: 5, windowSize: 30}
	settings = ""

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(""))
	RootCmd.SetArgs(args)
	err = RootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestConvertArgs(t *testing.T) {
	dir := t.TempDir()
	gbk := filepath.Join(dir, "genome")
	require.NoError(t, os.WriteFile(gbk, nil, 0o644))

	tests := []struct {
		name     string
		a, b     string
		wantFile string
		wantDir  string
	}{
		{"file first", "genome.gbk", "org", "genome.gbk", "org"},
		{"file second", "org", "genome.gbk", "genome.gbk", "org"},
		{"existing file without extension", "org.d", gbk, gbk, "org.d"},
		{"neither has an extension", "genome", "org", "genome", "org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, dir := convertArgs(tt.a, tt.b)
			assert.Equal(t, tt.wantFile, file)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

const genbank = `LOCUS       contigA                   60 bp    DNA     linear   BCT 01-JAN-2020
DEFINITION  Test organism, complete genome.
ACCESSION   NC_000001
VERSION     NC_000001.1
SOURCE      Test organism
  ORGANISM  Test organism
FEATURES             Location/Qualifiers
     CDS             11..40
                     /locus_tag="g1"
                     /product="hypothetical protein"
ORIGIN
        1 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
//
`

func TestConvertCmd(t *testing.T) {
	dir := t.TempDir()
	gbk := filepath.Join(dir, "genome.gbk")
	require.NoError(t, os.WriteFile(gbk, []byte(genbank), 0o644))
	org := filepath.Join(dir, "org")

	stdout, _, err := execute(t, "convert", org, gbk)
	require.NoError(t, err)
	assert.Contains(t, stdout, "successfully converted to the SEED format, which is located at "+org)

	b, err := os.ReadFile(filepath.Join(org, seed.PegTable))
	require.NoError(t, err)
	assert.Equal(t, "g1\tcontigA_11_40\n", string(b))
}

func TestConvertCmd_Failure(t *testing.T) {
	dir := t.TempDir()
	gbk := filepath.Join(dir, "genome.gbk")
	require.NoError(t, os.WriteFile(gbk, []byte(strings.Replace(genbank, `/locus_tag="g1"`, `/gene="g1"`, 1)), 0o644))
	org := filepath.Join(dir, "org")

	_, stderr, err := execute(t, "convert", gbk, org)
	require.Error(t, err)
	assert.Contains(t, stderr, "cannot be created")
	assert.NoDirExists(t, org)
}

// install writes a settings file and an installation with a training list
// and stage scripts that write their output files.
func install(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stage scripts need a POSIX shell")
	}

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "data", "trainingGenome_list.txt"),
		[]byte("0\tGeneric.txt\tGeneric Test Set\t1\n1\tEcoli.txt\tEscherichia coli K-12\t1\n2\tOld.txt\tOld genome\t0\n"),
		0o644,
	))

	for name, file := range map[string]string{
		"classify": workspace.ClassificationFile,
		"refine":   workspace.ClassificationFile,
		"evaluate": workspace.EvaluationFile,
	} {
		script := fmt.Sprintf(`#!/bin/sh
while [ $# -gt 0 ]; do
	case "$1" in
		--output) out=$2 ;;
	esac
	shift
done
echo %s >> "$out/%s"
`, name, file)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "phispy-"+name), []byte(script), 0o755))
	}

	settings := filepath.Join(dir, "phispy.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("install-dir: "+dir+"\n"), 0o644))
	return settings
}

// organism writes a SEED directory with n genes.
func organism(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, seed.PegDir), 0o755))

	var contigs, pegs, functions strings.Builder
	contigs.WriteString(">contigA\nACGTACGT\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&pegs, "peg.%d\tcontigA_%d_%d\n", i, 100*i+1, 100*i+90)
		fmt.Fprintf(&functions, "peg.%d\tphage protein\n", i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.ContigsFile), []byte(contigs.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.PegTable), []byte(pegs.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.FunctionsFile), []byte(functions.String()), 0o644))
	return dir
}

func TestRunCmd_List(t *testing.T) {
	stdout, _, err := execute(t, "run", "--settings", install(t), "-l")
	require.NoError(t, err)
	assert.Equal(t, "0 Generic Test Set\n1 Escherichia coli K-12\n", stdout)
}

func TestRunCmd(t *testing.T) {
	settings := install(t)
	org := organism(t, 40)
	out := filepath.Join(t.TempDir(), "out")

	stdout, stderr, err := execute(t, "run", "--settings", settings, "-i", org, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Running PhiSpy on "+org)
	assert.Contains(t, stdout, "Done!!!")

	assert.FileExists(t, filepath.Join(out, workspace.TestSetFile))
	assert.FileExists(t, filepath.Join(out, workspace.ReportFile))
	b, err := os.ReadFile(filepath.Join(out, workspace.ClassificationFile))
	require.NoError(t, err)
	assert.Equal(t, "classify\nrefine\n", string(b))
	assert.FileExists(t, filepath.Join(out, workspace.EvaluationFile))
}

func TestRunCmd_TrainingSetAboveChooserBound(t *testing.T) {
	settings := install(t)
	out := filepath.Join(t.TempDir(), "out")

	_, _, err := execute(t, "run", "--settings", settings, "-i", organism(t, 40), "-o", out, "-t", "31", "-q")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, workspace.EvaluationFile))
}

func TestRunCmd_Help(t *testing.T) {
	assert.Contains(t, runCmd.Long, "exits with status 1")
	assert.Contains(t, runCmd.Long, "exits with status 0")
	assert.Contains(t, runCmd.Long, "max-training-set")
}

func TestRunCmd_TooSmall(t *testing.T) {
	settings := install(t)
	out := filepath.Join(t.TempDir(), "out")

	stdout, _, err := execute(t, "run", "--settings", settings, "-i", organism(t, 10), "-o", out, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "The input organism is too small to predict prophages")
	assert.NoFileExists(t, filepath.Join(out, workspace.ClassificationFile))
}

func TestRunCmd_Errors(t *testing.T) {
	settings := install(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no directories", []string{}},
		{"missing organism", []string{"-i", filepath.Join(t.TempDir(), "nope"), "-o", t.TempDir()}},
		{"negative training set", []string{"-i", organism(t, 40), "-o", t.TempDir(), "-t", "-1"}},
		{"choose with no answer", []string{"-i", organism(t, 40), "-o", t.TempDir(), "-c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"run", "--settings", settings}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestDocs(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "docs", "--dir", dir)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "phispy_run.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "---\nlayout: default\ntitle: run\nparent: phispy\n"))
	assert.FileExists(t, filepath.Join(dir, "phispy.md"))
}
