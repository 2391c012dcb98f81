package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the summary of a run written to the output directory.
type Report struct {
	RunID    string `yaml:"run_id"`
	Started  string `yaml:"started"`
	Finished string `yaml:"finished"`

	Organism     string `yaml:"organism"`
	Output       string `yaml:"output"`
	TrainingSet  int    `yaml:"training_set"`
	EvaluateOnly bool   `yaml:"evaluate_only"`
	Number       int    `yaml:"number"`
	WindowSize   int    `yaml:"window_size"`

	Path    []State  `yaml:"path"`
	State   State    `yaml:"state"`
	Outputs []string `yaml:"outputs,omitempty"`
	Message string   `yaml:"message,omitempty"`
	Error   string   `yaml:"error,omitempty"`
}

func newReport(cfg Config, o *Outcome) Report {
	rep := Report{
		RunID:        o.RunID,
		Started:      o.Started.Format(time.RFC3339),
		Finished:     o.Finished.Format(time.RFC3339),
		Organism:     cfg.Organism,
		Output:       cfg.Output,
		TrainingSet:  cfg.TrainingSet,
		EvaluateOnly: cfg.EvaluateOnly,
		Number:       cfg.Number,
		WindowSize:   cfg.WindowSize,
		Path:         o.Path,
		State:        o.State,
		Outputs:      o.Outputs,
		Message:      o.Message,
	}
	if o.Err != nil {
		rep.Error = o.Err.Error()
	}
	return rep
}

func writeReport(path string, cfg Config, o *Outcome) error {
	b, err := yaml.Marshal(newReport(cfg, o))
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write run report %s: %w", path, err)
	}
	return nil
}

// ReadReport parses a report written by a previous run.
func ReadReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}
	rep := &Report{}
	if err := yaml.Unmarshal(b, rep); err != nil {
		return nil, fmt.Errorf("failed to parse run report %s: %w", path, err)
	}
	return rep, nil
}
