// Package workspace names the files of an organism (SEED) directory and of
// a pipeline output directory, and checks that they are usable.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JFsanchezherrero/PhiSpy/internal/seed"
)

var (
	// ErrMissingInput is a required organism file that can't be read
	ErrMissingInput = errors.New("missing required input")

	// ErrOutputUnwritable is an output directory that can't be created or written
	ErrOutputUnwritable = errors.New("cannot create the output directory or write file in it")
)

// Output files written by the pipeline stages.
const (
	TestSetFile        = "testSet.txt"
	ClassificationFile = "classify.tsv"
	EvaluationFile     = "prophage.tbl"
	ReportFile         = "phispy_run.yaml"

	// writeCheckFile is written and removed to check that the output is writable
	writeCheckFile = "testing.txt"
)

// Workspace is an organism directory and the output directory a run
// writes to.
type Workspace struct {
	Organism string
	Output   string
}

// New cleans both paths. Trailing separators are dropped.
func New(organism, output string) Workspace {
	return Workspace{
		Organism: clean(organism),
		Output:   clean(output),
	}
}

func clean(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// Contigs is the organism's contigs file.
func (w Workspace) Contigs() string { return filepath.Join(w.Organism, seed.ContigsFile) }

// Functions is the organism's assigned_functions file.
func (w Workspace) Functions() string { return filepath.Join(w.Organism, seed.FunctionsFile) }

// PegTable is the organism's peg table.
func (w Workspace) PegTable() string { return filepath.Join(w.Organism, seed.PegTable) }

// RNATable is the organism's RNA table.
func (w Workspace) RNATable() string { return filepath.Join(w.Organism, seed.RNATable) }

// TestSet is the test set written by the test-set builder.
func (w Workspace) TestSet() string { return filepath.Join(w.Output, TestSetFile) }

// Classification is the classifier's per-gene output.
func (w Workspace) Classification() string { return filepath.Join(w.Output, ClassificationFile) }

// Evaluation is the final prophage region table.
func (w Workspace) Evaluation() string { return filepath.Join(w.Output, EvaluationFile) }

// Report is the run report.
func (w Workspace) Report() string { return filepath.Join(w.Output, ReportFile) }

// CheckInputs confirms that the contigs file and the peg table can be read.
// A missing functions file or RNA table is not fatal and is returned as a
// warning for the caller to log.
func (w Workspace) CheckInputs() (warnings []string, err error) {
	if w.Organism == "" {
		return nil, fmt.Errorf("%w: no input directory", ErrMissingInput)
	}
	for _, required := range []string{w.Contigs(), w.PegTable()} {
		if err := readable(required); err != nil {
			return nil, fmt.Errorf("%w: cannot open %s: %v", ErrMissingInput, required, err)
		}
	}

	for _, optional := range []string{w.Functions(), w.RNATable()} {
		if err := readable(optional); err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot open %s", optional))
		}
	}
	return warnings, nil
}

// EnsureOutput creates the output directory if needed and confirms a file
// can be written to it.
func (w Workspace) EnsureOutput() error {
	if w.Output == "" {
		return fmt.Errorf("%w: no output directory", ErrOutputUnwritable)
	}
	if err := os.MkdirAll(w.Output, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputUnwritable, w.Output, err)
	}

	check := filepath.Join(w.Output, writeCheckFile)
	if err := os.WriteFile(check, nil, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputUnwritable, w.Output, err)
	}
	if err := os.Remove(check); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputUnwritable, w.Output, err)
	}
	return nil
}

// Exists reports whether path is an existing file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
