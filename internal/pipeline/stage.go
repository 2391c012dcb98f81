package pipeline

import (
	"context"
	"fmt"

	"github.com/JFsanchezherrero/PhiSpy/internal/workspace"
)

// State of a run.
type State string

const (
	ValidateInput          State = "VALIDATE_INPUT"
	AbortedMissingInput    State = "ABORTED_MISSING_INPUT"
	BuildTestSet           State = "BUILD_TEST_SET"
	AbortedTooSmall        State = "ABORTED_TOO_SMALL"
	Classify               State = "CLASSIFY"
	ClassifyDone           State = "CLASSIFY_DONE"
	RefineUnknownFunctions State = "REFINE_UNKNOWN_FUNCTIONS"
	Evaluate               State = "EVALUATE"
	Complete               State = "COMPLETE"
)

// Terminal is whether a run ends in this state.
func (s State) Terminal() bool {
	switch s {
	case AbortedMissingInput, AbortedTooSmall, Complete:
		return true
	}
	return false
}

// NoTrainingSet is the training set selector meaning none was chosen.
const NoTrainingSet = 0

// Config is one run's settings. It doesn't change during the run.
type Config struct {
	// Organism is the SEED directory to analyze
	Organism string

	// Output is where stages write their files
	Output string

	// InstallDir holds the stages' executables and data
	InstallDir string

	// TrainingSet selects the training genome, NoTrainingSet for the default
	TrainingSet int

	// EvaluateOnly reruns just the evaluation on existing classifier output
	EvaluateOnly bool

	// Number is the false-negative threshold: how many consecutive genes in a
	// window must be prophage genes for the region to be called
	Number int

	// WindowSize is how many consecutive genes are examined together
	WindowSize int

	// Quiet suppresses progress narration
	Quiet bool

	// Keep tells stages to leave their temporary files behind
	Keep bool
}

// Result is what a stage reports back.
type Result struct {
	// Outputs are the files the stage wrote
	Outputs []string

	// Insufficient is set by a stage that found the genome can't support
	// the rest of the run. It is a normal outcome, not an error.
	Insufficient bool

	// Message explains Insufficient to the user
	Message string
}

// Stage is one step of the pipeline. It reads the organism directory and
// earlier outputs from ws and writes its own outputs to ws.Output.
type Stage interface {
	Name() string
	Run(ctx context.Context, ws workspace.Workspace, cfg Config) (Result, error)
}

// Stages are the four pipeline steps.
type Stages struct {
	TestSet  Stage
	Classify Stage
	Refine   Stage
	Evaluate Stage
}

// StageError is a stage that failed, with the state the run halted in.
type StageError struct {
	State State
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed in %s: %v", e.Stage, e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
