package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/JFsanchezherrero/PhiSpy/config"
	"github.com/JFsanchezherrero/PhiSpy/internal/pipeline"
	"github.com/JFsanchezherrero/PhiSpy/internal/stage"
	"github.com/JFsanchezherrero/PhiSpy/internal/training"
	"github.com/JFsanchezherrero/PhiSpy/internal/workspace"
)

// runFlags are the flags of the run command
type runFlags struct {
	input        string
	output       string
	trainingSet  int
	list         bool
	choose       bool
	evaluateOnly bool
	number       int
	windowSize   int
	quiet        bool
	keep         bool
}

var runOpts runFlags

// runCmd is for searching an organism directory for prophages
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find prophages in an organism (SEED) directory",
	Long: `
Find prophages in an organism (SEED) directory.

The genome is split into a test set of genes, each gene is classified, genes with
unknown functions are reconsidered when no training set is chosen, and regions of
consecutive prophage genes are called. Results are written to the output directory.

Genomes with fewer than 40 genes (the "min-genes" setting) are too small to search.
A too-small genome is reported and the command exits with status 0.

-t passes any non-negative training set id to the classifier. -c only offers ids
up to the "max-training-set" setting (30 by default).

A missing input file, or an output directory that can't be written, is an error:
the command exits with status 1 after printing the cause.`,
	Example: `  phispy run -i ecoli -o ecoli_phages
  phispy run -i ecoli -o ecoli_phages -t 12
  phispy run -l`,
	Args: cobra.NoArgs,
	RunE: runPhiSpy,
}

func runPhiSpy(cmd *cobra.Command, args []string) error {
	conf, err := config.New()
	if err != nil {
		return err
	}

	if runOpts.list {
		sets, err := training.Load(conf.TrainingList)
		if err != nil {
			return err
		}
		return training.Print(cmd.OutOrStdout(), sets)
	}

	if runOpts.input == "" || runOpts.output == "" {
		return errors.New("input and output directories are required")
	}

	trainingSet := runOpts.trainingSet
	if runOpts.choose {
		// don't prompt for a run that can't start
		if _, err := workspace.New(runOpts.input, runOpts.output).CheckInputs(); err != nil {
			return err
		}
		sets, err := training.Load(conf.TrainingList)
		if err != nil {
			return err
		}
		if trainingSet, err = training.Choose(cmd.InOrStdin(), cmd.OutOrStdout(), sets, conf.MaxTrainingSet); err != nil {
			return err
		}
	}
	if trainingSet < 0 {
		return fmt.Errorf("training set must not be negative, got %d", trainingSet)
	}

	cfg := pipeline.Config{
		Organism:     runOpts.input,
		Output:       runOpts.output,
		InstallDir:   conf.InstallDir,
		TrainingSet:  trainingSet,
		EvaluateOnly: runOpts.evaluateOnly,
		Number:       runOpts.number,
		WindowSize:   runOpts.windowSize,
		Quiet:        runOpts.quiet,
		Keep:         runOpts.keep,
	}

	orchestrator := pipeline.New(pipeline.Stages{
		TestSet:  stage.NewTestSet(conf.MinGenes, logger),
		Classify: stage.Classifier(conf.Stages.Classify, logger),
		Refine:   stage.Refiner(conf.Stages.Refine, logger),
		Evaluate: stage.Evaluator(conf.Stages.Evaluate, logger),
	}, logger, cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Running PhiSpy on %s\n", runOpts.input)
	_, err = orchestrator.Run(ctx, cfg)
	return err
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&runOpts.input, "input_dir", "i", "", "the input directory that holds the genome")
	flags.StringVarP(&runOpts.output, "output_dir", "o", "", "the output directory to write the results")
	flags.IntVarP(&runOpts.trainingSet, "training_set", "t", pipeline.NoTrainingSet, "choose a training set from the list of training sets")
	flags.BoolVarP(&runOpts.list, "list", "l", false, "list the available training sets and exit")
	flags.BoolVarP(&runOpts.choose, "choose", "c", false, "choose a training set from a list (overrides -t)")
	flags.BoolVarP(&runOpts.evaluateOnly, "evaluate", "e", false, "rerun only the evaluation on existing results")
	flags.IntVarP(&runOpts.number, "number", "n", 5, "number of consecutive genes in a region of window size that must be prophage genes to be called")
	flags.IntVarP(&runOpts.windowSize, "window_size", "w", 30, "window size of consecutive genes to look through to find phages")
	flags.BoolVarP(&runOpts.quiet, "quiet", "q", false, "run in quiet mode")
	flags.BoolVarP(&runOpts.keep, "keep", "k", false, "do not delete temp files")

	RootCmd.AddCommand(runCmd)
}
