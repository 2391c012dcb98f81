package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JFsanchezherrero/PhiSpy/internal/convert"
)

// convertCmd is for turning a GenBank file into an organism directory
var convertCmd = &cobra.Command{
	Use:   "convert [genbank-file] [organism-dir]",
	Short: "Convert a GenBank file into an organism (SEED) directory",
	Long: `
Convert a GenBank file into an organism (SEED) directory that "phispy run" can search.

The directory gets the contigs, the assigned functions, the peg and RNA feature tables
and, when the GenBank file has them, GENOME and DESCRIPTION. Every gene (CDS) and RNA
needs a locus_tag and a location. If any is missing nothing is written and the directory
is left as it was.

The arguments can be in either order: the GenBank file is the one with a file extension.`,
	Example: `  phispy convert NC_000913.gbk ecoli
  phispy convert ecoli NC_000913.gbk`,
	Args: cobra.ExactArgs(2),
	RunE: convertGenbank,
}

func convertGenbank(cmd *cobra.Command, args []string) error {
	file, dir := convertArgs(args[0], args[1])
	logger.Debug("converting", zap.String("file", file), zap.String("dir", dir))

	if _, err := convert.New(logger).ConvertFile(file, dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "For your GenBank file %s, the SEED directory %s cannot be created.\n", file, dir)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Your GenBank file is successfully converted to the SEED format, which is located at %s\nPlease use this directory to run PhiSpy.\n", dir)
	return nil
}

// convertArgs returns the GenBank file and the organism directory from the
// two arguments of convert. An argument that is an existing file wins,
// then one with a file extension.
func convertArgs(a, b string) (file, dir string) {
	switch {
	case isFile(a) && !isFile(b):
		return a, b
	case isFile(b) && !isFile(a):
		return b, a
	case filepath.Ext(a) == "" && filepath.Ext(b) != "":
		return b, a
	default:
		return a, b
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func init() {
	RootCmd.AddCommand(convertCmd)
}
