package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JFsanchezherrero/PhiSpy/internal/workspace"
)

// Outcome is how a run ended.
type Outcome struct {
	// RunID identifies the run in logs and in the report
	RunID string

	// State is the terminal state, or the state the run halted in on error
	State State

	// Path is every state the run entered, in order, ending with State
	Path []State

	// Outputs are the files written by the stages that ran
	Outputs []string

	// Message is the user-facing reason for an early stop
	Message string

	// Err is the cause of a failed run, also returned by Run
	Err error

	Started  time.Time
	Finished time.Time
}

// Completed is whether every stage of the run finished.
func (o *Outcome) Completed() bool {
	return o.State == Complete && o.Err == nil
}

// Orchestrator runs the stages of one genome in order.
type Orchestrator struct {
	stages Stages
	log    *zap.Logger

	// out gets progress narration, silenced by Config.Quiet
	out io.Writer

	newID func() string
	now   func() time.Time
}

// New returns an Orchestrator over stages. A nil log is replaced with a
// no-op logger and a nil out discards narration.
func New(stages Stages, log *zap.Logger, out io.Writer) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Orchestrator{
		stages: stages,
		log:    log,
		out:    out,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// run is the mutable state of a single Run call.
type run struct {
	ws      workspace.Workspace
	cfg     Config
	log     *zap.Logger
	outcome *Outcome

	// reportable is set once the output directory is known to be writable
	reportable bool
}

// Run takes cfg through the state machine until a terminal state or an
// error. The returned Outcome is never nil. The error is nil for runs that
// reach COMPLETE or stop early because the genome is too small.
//
// ctx is checked before every stage and is handed to the stages, so a
// cancelled context stops the run before the next stage starts.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*Outcome, error) {
	id := o.newID()
	r := &run{
		ws:  workspace.New(cfg.Organism, cfg.Output),
		cfg: cfg,
		log: o.log.With(zap.String("run", id)),
		outcome: &Outcome{
			RunID:   id,
			Started: o.now(),
		},
	}

	state := ValidateInput
	for {
		r.outcome.Path = append(r.outcome.Path, state)
		r.log.Debug("entering state", zap.String("state", string(state)))
		if state.Terminal() {
			break
		}

		next, err := o.step(ctx, r, state)
		if err != nil {
			r.outcome.Err = err
			if next == "" {
				break
			}
		}
		state = next
	}
	r.outcome.State = state
	r.outcome.Finished = o.now()

	if r.reportable {
		if err := writeReport(r.ws.Report(), r.cfg, r.outcome); err != nil {
			r.log.Warn("failed to write run report", zap.Error(err))
		} else {
			r.outcome.Outputs = append(r.outcome.Outputs, r.ws.Report())
		}
	}

	if r.outcome.Err != nil {
		r.log.Error("run failed",
			zap.String("state", string(state)),
			zap.Error(r.outcome.Err),
		)
		return r.outcome, r.outcome.Err
	}
	r.log.Info("run finished",
		zap.String("state", string(state)),
		zap.Duration("elapsed", r.outcome.Finished.Sub(r.outcome.Started)),
	)
	return r.outcome, nil
}

// step runs state and returns the next one. An error with an empty next
// state halts the run in the current state.
func (o *Orchestrator) step(ctx context.Context, r *run, state State) (State, error) {
	switch state {
	case ValidateInput:
		return o.validate(r)

	case BuildTestSet:
		o.narrate(r, "Making Test Set... (need couple of minutes)")
		res, err := o.runStage(ctx, r, state, o.stages.TestSet)
		if err != nil {
			return "", err
		}
		if res.Insufficient {
			r.outcome.Message = res.Message
			fmt.Fprintln(o.out, res.Message)
			return AbortedTooSmall, nil
		}
		return Classify, nil

	case Classify:
		o.narrate(r, "Start Classification Algorithm")
		if _, err := o.runStage(ctx, r, state, o.stages.Classify); err != nil {
			return "", err
		}
		return ClassifyDone, nil

	case ClassifyDone:
		o.narrate(r, "Done with classification Algorithm")
		if r.cfg.TrainingSet == NoTrainingSet {
			return RefineUnknownFunctions, nil
		}
		return Evaluate, nil

	case RefineUnknownFunctions:
		o.narrate(r, "As training flag is zero, considering unknown functions")
		if _, err := o.runStage(ctx, r, state, o.stages.Refine); err != nil {
			return "", err
		}
		return Evaluate, nil

	case Evaluate:
		o.narrate(r, "Start evaluation...")
		if _, err := o.runStage(ctx, r, state, o.stages.Evaluate); err != nil {
			return "", err
		}
		o.narrate(r, "Done!!!")
		return Complete, nil
	}
	return "", fmt.Errorf("no transition from state %s", state)
}

// validate checks the organism directory before touching the output
// directory, so a run with missing inputs leaves nothing behind.
func (o *Orchestrator) validate(r *run) (State, error) {
	warnings, err := r.ws.CheckInputs()
	if err != nil {
		return AbortedMissingInput, err
	}
	for _, w := range warnings {
		r.log.Warn(w)
	}

	if err := r.ws.EnsureOutput(); err != nil {
		return AbortedMissingInput, err
	}
	r.reportable = true

	if r.cfg.EvaluateOnly {
		return Evaluate, nil
	}
	return BuildTestSet, nil
}

// runStage invokes one stage unless ctx is already done.
func (o *Orchestrator) runStage(ctx context.Context, r *run, state State, s Stage) (Result, error) {
	if s == nil {
		return Result{}, &StageError{State: state, Stage: "unset", Err: errors.New("no stage configured")}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, &StageError{State: state, Stage: s.Name(), Err: err}
	}

	start := o.now()
	res, err := s.Run(ctx, r.ws, r.cfg)
	if err != nil {
		return Result{}, &StageError{State: state, Stage: s.Name(), Err: err}
	}
	r.log.Debug("stage done",
		zap.String("stage", s.Name()),
		zap.Strings("outputs", res.Outputs),
		zap.Duration("elapsed", o.now().Sub(start)),
	)
	r.outcome.Outputs = append(r.outcome.Outputs, res.Outputs...)
	return res, nil
}

func (o *Orchestrator) narrate(r *run, msg string) {
	if r.cfg.Quiet {
		return
	}
	fmt.Fprintln(o.out, msg)
}
