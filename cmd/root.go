// Package cmd is for command line interactions with the phispy application
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JFsanchezherrero/PhiSpy/config"
)

var (
	// logger is built before any command runs
	logger = zap.NewNop()

	// settings is the path to a settings file
	settings string

	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "phispy",
	Short: "Find prophages in bacterial genomes",
	Long: `Find prophages in bacterial genomes.

Convert a GenBank file into an organism (SEED) directory with "phispy convert"
and search the organism for prophages with "phispy run".`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Setup(viper.GetViper(), settings); err != nil {
			return err
		}

		l, err := newLogger(viper.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// newLogger logs to stderr, at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	conf := zap.NewDevelopmentConfig()
	conf.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		conf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	conf.DisableStacktrace = true
	conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return conf.Build()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		stderr.Fatalf("%v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&settings, "settings", "", "path to a settings file (default is ./"+config.SettingsFile+" if present)")
	RootCmd.PersistentFlags().Bool("verbose", false, "log debug output")
	RootCmd.PersistentFlags().String("install-dir", "", "directory with the stage executables and training data")

	// Bind the parameters to viper
	must(viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose")))
	must(viper.BindPFlag("install-dir", RootCmd.PersistentFlags().Lookup("install-dir")))
}

func must(err error) {
	if err != nil {
		stderr.Fatal(err)
	}
}
