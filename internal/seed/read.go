package seed

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// ReadContigs reads a contigs file, in file order.
func ReadContigs(path string) ([]Contig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var contigs []Contig
	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence type %T in %s", sc.Seq(), path)
		}
		contigs = append(contigs, Contig{Name: s.Name(), Seq: string(s.Seq)})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to read contigs from %s: %w", path, err)
	}
	return contigs, nil
}

// ReadFunctions reads an assigned_functions file.
func ReadFunctions(path string) ([]Assignment, error) {
	var functions []Assignment
	err := readRows(path, 2, func(cols []string) error {
		functions = append(functions, Assignment{ID: cols[0], Function: cols[1]})
		return nil
	})
	return functions, err
}

// ReadPegs reads a peg table.
func ReadPegs(path string) ([]Feature, error) {
	var pegs []Feature
	err := readRows(path, 2, func(cols []string) error {
		f, err := parseFeature(cols)
		if err != nil {
			return err
		}
		pegs = append(pegs, f)
		return nil
	})
	return pegs, err
}

// ReadRNAs reads an RNA table. A row without a function is "unknown".
func ReadRNAs(path string) ([]RNA, error) {
	var rnas []RNA
	err := readRows(path, 2, func(cols []string) error {
		f, err := parseFeature(cols)
		if err != nil {
			return err
		}
		function := UnknownFunction
		if len(cols) > 2 {
			function = cols[2]
		}
		rnas = append(rnas, RNA{Feature: f, Function: function})
		return nil
	})
	return rnas, err
}

// ReadDir loads an organism directory. The contigs file and the peg table
// are required; the other files are read when present.
func ReadDir(dir string) (*Genome, error) {
	contigs, err := ReadContigs(filepath.Join(dir, ContigsFile))
	if err != nil {
		return nil, err
	}
	pegs, err := ReadPegs(filepath.Join(dir, PegTable))
	if err != nil {
		return nil, err
	}

	g := &Genome{Contigs: contigs, Pegs: pegs}
	if len(contigs) > 0 {
		g.OrganismID = contigs[0].Name
	}

	if g.RNAs, err = ReadRNAs(filepath.Join(dir, RNATable)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if g.Functions, err = ReadFunctions(filepath.Join(dir, FunctionsFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	g.Descriptor = readText(filepath.Join(dir, GenomeFile))
	g.Description = readText(filepath.Join(dir, DescriptionFile))

	return g, nil
}

// readRows calls fn with the tab separated columns of each non-empty line,
// erroring on lines with fewer than minCols columns.
func readRows(path string, minCols int, fn func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < minCols {
			return fmt.Errorf("%s:%d: want at least %d columns, got %d", path, line, minCols, len(cols))
		}
		if err := fn(cols); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
	return sc.Err()
}

func parseFeature(cols []string) (Feature, error) {
	contig, start, stop, err := ParseLocation(cols[1])
	if err != nil {
		return Feature{}, err
	}
	return Feature{ID: cols[0], Contig: contig, Start: start, Stop: stop}, nil
}

// readText returns the trimmed contents of an optional file.
func readText(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
