package stage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JFsanchezherrero/PhiSpy/internal/pipeline"
	"github.com/JFsanchezherrero/PhiSpy/internal/workspace"
)

// Exec is a stage run by an external program. The program gets its inputs
// as flags and must leave its declared output file in the output directory.
type Exec struct {
	name string

	// path to the executable
	path string

	// args builds the flags passed to the executable
	args func(ws workspace.Workspace, cfg pipeline.Config) []string

	// output is the file the program must write
	output func(ws workspace.Workspace) string

	log *zap.Logger
}

// DefaultPath is where an installation keeps the executable of a stage.
func DefaultPath(installDir, name string) string {
	return filepath.Join(installDir, "bin", "phispy-"+name)
}

// Classifier scores each gene of the test set and writes the
// classification.
func Classifier(path string, log *zap.Logger) *Exec {
	return newExec("classify", path, log,
		func(ws workspace.Workspace, cfg pipeline.Config) []string {
			return []string{
				"--organism", ws.Organism,
				"--output", ws.Output,
				"--training-set", strconv.Itoa(cfg.TrainingSet),
				"--window", strconv.Itoa(cfg.WindowSize),
				"--install", cfg.InstallDir,
			}
		},
		workspace.Workspace.Classification,
	)
}

// Refiner reconsiders genes with unknown functions and rewrites the
// classification in place.
func Refiner(path string, log *zap.Logger) *Exec {
	return newExec("refine", path, log,
		func(ws workspace.Workspace, cfg pipeline.Config) []string {
			return []string{"--output", ws.Output}
		},
		workspace.Workspace.Classification,
	)
}

// Evaluator calls prophage regions from the classification and writes the
// final region table.
func Evaluator(path string, log *zap.Logger) *Exec {
	return newExec("evaluate", path, log,
		func(ws workspace.Workspace, cfg pipeline.Config) []string {
			return []string{
				"--output", ws.Output,
				"--organism", ws.Organism,
				"--install", cfg.InstallDir,
				"--number", strconv.Itoa(cfg.Number),
				"--window", strconv.Itoa(cfg.WindowSize),
			}
		},
		workspace.Workspace.Evaluation,
	)
}

func newExec(
	name, path string,
	log *zap.Logger,
	args func(workspace.Workspace, pipeline.Config) []string,
	output func(workspace.Workspace) string,
) *Exec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exec{name: name, path: path, args: args, output: output, log: log}
}

// Name is the stage's name in logs and errors.
func (e *Exec) Name() string { return e.name }

// Path is the stage's executable.
func (e *Exec) Path() string { return e.path }

// Run executes the program and waits for it. Cancelling ctx kills it.
func (e *Exec) Run(ctx context.Context, ws workspace.Workspace, cfg pipeline.Config) (pipeline.Result, error) {
	// make sure the executable exists
	if info, err := os.Stat(e.path); err != nil || info.IsDir() {
		return pipeline.Result{}, fmt.Errorf("failed to find a %s executable at %s", e.name, e.path)
	}

	args := e.args(ws, cfg)
	if cfg.Keep {
		args = append(args, "--keep")
	}

	e.log.Debug("executing stage",
		zap.String("stage", e.name),
		zap.String("path", e.path),
		zap.String("args", strings.Join(args, " ")),
	)
	cmd := exec.CommandContext(ctx, e.path, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pipeline.Result{}, fmt.Errorf("%s interrupted: %w", e.name, ctxErr)
		}
		return pipeline.Result{}, fmt.Errorf("failed to execute %s: %w: %s", e.name, err, strings.TrimSpace(string(output)))
	}

	out := e.output(ws)
	if !workspace.Exists(out) {
		return pipeline.Result{}, fmt.Errorf("%s finished without writing %s", e.name, out)
	}
	return pipeline.Result{Outputs: []string{out}}, nil
}
