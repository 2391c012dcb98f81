// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/JFsanchezherrero/PhiSpy/internal/stage"
	"github.com/JFsanchezherrero/PhiSpy/internal/training"
)

// SettingsFile is read from the working directory when no settings file
// is passed.
const SettingsFile = "phispy.yaml"

// EnvPrefix is the prefix of environment variables that override settings,
// eg PHISPY_MIN_GENES=30 or PHISPY_STAGES_CLASSIFY=/opt/classify
const EnvPrefix = "PHISPY"

// StagesConfig are paths to the external stage executables
type StagesConfig struct {
	// the per-gene classifier
	Classify string `mapstructure:"classify"`

	// reconsiders genes with unknown function
	Refine string `mapstructure:"refine"`

	// calls prophage regions
	Evaluate string `mapstructure:"evaluate"`
}

// Config is the root-level settings struct and is a mix
// of settings available in phispy.yaml, the environment
// and the command line
type Config struct {
	// the installation directory with the stage executables and training data
	InstallDir string `mapstructure:"install-dir"`

	// the fewest genes a genome needs to be searched for prophages
	MinGenes int `mapstructure:"min-genes"`

	// the highest training set id that can be chosen
	MaxTrainingSet int `mapstructure:"max-training-set"`

	// path to the training genome list
	TrainingList string `mapstructure:"training-list"`

	// external stage executables
	Stages StagesConfig `mapstructure:"stages"`

	// whether to log at debug level
	Verbose bool `mapstructure:"verbose"`
}

// Setup registers defaults and the environment with v and merges in the
// settings file. An empty settings path reads SettingsFile from the working
// directory if there is one.
func Setup(v *viper.Viper, settings string) error {
	v.SetDefault("install-dir", "")
	v.SetDefault("min-genes", stage.DefaultMinGenes)
	v.SetDefault("max-training-set", 30)
	v.SetDefault("training-list", "")
	v.SetDefault("stages.classify", "")
	v.SetDefault("stages.refine", "")
	v.SetDefault("stages.evaluate", "")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if settings == "" {
		if _, err := os.Stat(SettingsFile); err != nil {
			return nil
		}
		settings = SettingsFile
	}

	v.SetConfigFile(settings)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", settings, err)
	}
	return nil
}

// New returns a new Config struct populated by the global Viper settings
func New() (*Config, error) {
	return From(viper.GetViper())
}

// From unmarshals v's settings and fills the paths left empty with ones
// inside the installation directory.
func From(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	if c.InstallDir == "" {
		dir, err := installDir()
		if err != nil {
			return nil, err
		}
		c.InstallDir = dir
	}
	if c.MinGenes < 1 {
		return nil, errors.New("min-genes must be at least 1")
	}

	if c.TrainingList == "" {
		c.TrainingList = filepath.Join(c.InstallDir, training.ListFile)
	}
	if c.Stages.Classify == "" {
		c.Stages.Classify = stage.DefaultPath(c.InstallDir, "classify")
	}
	if c.Stages.Refine == "" {
		c.Stages.Refine = stage.DefaultPath(c.InstallDir, "refine")
	}
	if c.Stages.Evaluate == "" {
		c.Stages.Evaluate = stage.DefaultPath(c.InstallDir, "evaluate")
	}
	return c, nil
}

// installDir is the directory of the running executable, or its parent
// if the executable is in a bin directory.
func installDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to find the installation directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	dir := filepath.Dir(exe)
	if filepath.Base(dir) == "bin" {
		dir = filepath.Dir(dir)
	}
	return dir, nil
}
