// Package stage has the steps the pipeline runs: the built-in test set
// builder and the external classifier, refinement and evaluator programs.
package stage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/JFsanchezherrero/PhiSpy/internal/pipeline"
	"github.com/JFsanchezherrero/PhiSpy/internal/seed"
	"github.com/JFsanchezherrero/PhiSpy/internal/workspace"
)

// DefaultMinGenes is the fewest genes a genome needs for prophage prediction.
const DefaultMinGenes = 40

// TestSet writes the per-gene test set the classifier scores. Genomes with
// fewer than MinGenes genes are reported as insufficient.
type TestSet struct {
	MinGenes int

	log *zap.Logger
}

// NewTestSet returns a test set builder. A minGenes below one uses
// DefaultMinGenes.
func NewTestSet(minGenes int, log *zap.Logger) *TestSet {
	if minGenes < 1 {
		minGenes = DefaultMinGenes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TestSet{MinGenes: minGenes, log: log}
}

// Name is the stage's name in logs and errors.
func (t *TestSet) Name() string { return "testset" }

// Run reads the organism directory and writes the test set.
func (t *TestSet) Run(ctx context.Context, ws workspace.Workspace, cfg pipeline.Config) (pipeline.Result, error) {
	g, err := seed.ReadDir(ws.Organism)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("failed to read organism %s: %w", ws.Organism, err)
	}

	if len(g.Pegs) < t.MinGenes {
		t.log.Info("genome too small",
			zap.Int("genes", len(g.Pegs)),
			zap.Int("min", t.MinGenes),
		)
		return pipeline.Result{
			Insufficient: true,
			Message: fmt.Sprintf(
				"The input organism is too small to predict prophages. Please consider large contig (having at least %d genes) to use PhiSpy.",
				t.MinGenes,
			),
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return pipeline.Result{}, err
	}

	rows := testRows(g)
	if err := writeTestSet(ws.TestSet(), rows); err != nil {
		return pipeline.Result{}, err
	}
	t.log.Debug("wrote test set", zap.String("path", ws.TestSet()), zap.Int("genes", len(rows)))
	return pipeline.Result{Outputs: []string{ws.TestSet()}}, nil
}

// testRow is one gene of the test set.
type testRow struct {
	seed.Feature
	function string
	contig   int
}

// testRows orders the genome's pegs by contig, in contigs file order, then
// by leftmost coordinate. Pegs on contigs missing from the contigs file
// come last, by contig name.
func testRows(g *seed.Genome) []testRow {
	order := make(map[string]int, len(g.Contigs))
	for i, c := range g.Contigs {
		order[c.Name] = i
	}

	functions := make(map[string]string, len(g.Functions))
	for _, a := range g.Functions {
		functions[a.ID] = a.Function
	}

	rows := make([]testRow, 0, len(g.Pegs))
	for _, p := range g.Pegs {
		idx, ok := order[p.Contig]
		if !ok {
			idx = len(g.Contigs)
		}
		function, ok := functions[p.ID]
		if !ok {
			function = seed.UnknownFunction
		}
		rows = append(rows, testRow{Feature: p, function: function, contig: idx})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.contig != b.contig {
			return a.contig < b.contig
		}
		if a.Contig != b.Contig {
			return a.Contig < b.Contig
		}
		return a.Left() < b.Left()
	})
	return rows
}

func writeTestSet(path string, rows []testRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create test set %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "id\tfunction\tcontig\tstart\tstop\tstrand")
	for _, r := range rows {
		strand := "+"
		if r.Reverse() {
			strand = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.function, r.Contig, r.Start, r.Stop, strand)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write test set %s: %w", path, err)
	}
	return f.Close()
}
