// Package seed is the SEED representation of an annotated genome: contigs,
// protein encoding genes (pegs), RNA genes and their assigned functions,
// laid out as a fixed set of flat files in an organism directory.
package seed

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Files of an organism directory, relative to its root.
const (
	ContigsFile     = "contigs"
	FunctionsFile   = "assigned_functions"
	GenomeFile      = "GENOME"
	DescriptionFile = "DESCRIPTION"
	FeaturesDir     = "Features"
)

var (
	// PegDir holds the peg table
	PegDir = filepath.Join(FeaturesDir, "peg")

	// RNADir holds the RNA table
	RNADir = filepath.Join(FeaturesDir, "rna")

	// PegTable is "<id>\t<contig>_<start>_<stop>" per line
	PegTable = filepath.Join(PegDir, "tbl")

	// RNATable is "<id>\t<contig>_<start>_<stop>\t<function>" per line
	RNATable = filepath.Join(RNADir, "tbl")
)

// UnknownFunction is assigned to features without a product.
const UnknownFunction = "unknown"

// Contig is a named nucleotide sequence.
type Contig struct {
	Name string
	Seq  string
}

// Feature is a gene on a contig. Start and Stop are 1-based and inclusive
// and follow the strand: on the reverse strand Start > Stop.
type Feature struct {
	ID     string
	Contig string
	Start  int
	Stop   int
}

// Location is the "<contig>_<start>_<stop>" column of a feature table.
func (f Feature) Location() string {
	return f.Contig + "_" + strconv.Itoa(f.Start) + "_" + strconv.Itoa(f.Stop)
}

// Reverse is whether the feature is on the reverse strand.
func (f Feature) Reverse() bool {
	return f.Start > f.Stop
}

// Left is the lowest coordinate of the feature.
func (f Feature) Left() int {
	return min(f.Start, f.Stop)
}

// Len is the feature's length in bp.
func (f Feature) Len() int {
	return max(f.Start, f.Stop) - f.Left() + 1
}

// RNA is an RNA gene and its function.
type RNA struct {
	Feature
	Function string
}

// Assignment is one row of assigned_functions.
type Assignment struct {
	ID       string
	Function string
}

// Genome is a genome in SEED form.
type Genome struct {
	// OrganismID namespaces the genome, taken from its first contig
	OrganismID string

	Contigs []Contig

	// Descriptor is the organism/source string written to GENOME
	Descriptor string

	// Description is the free text written to DESCRIPTION
	Description string

	Pegs []Feature
	RNAs []RNA

	// Functions are in the order features were read, pegs and RNAs interleaved
	Functions []Assignment
}

// Function returns the function assigned to a feature id.
func (g *Genome) Function(id string) (string, bool) {
	for _, a := range g.Functions {
		if a.ID == id {
			return a.Function, true
		}
	}
	return "", false
}

// Validate checks that the genome has usable contigs and that every peg and
// RNA has exactly one function assignment.
func (g *Genome) Validate() error {
	if g.OrganismID == "" {
		return errors.New("genome has no organism id")
	}
	if len(g.Contigs) == 0 {
		return errors.New("genome has no contigs")
	}
	for _, c := range g.Contigs {
		if c.Name == "" {
			return errors.New("contig without a name")
		}
		if !HasNucleotides(c.Seq) {
			return fmt.Errorf("contig %s has no nucleotide sequence", c.Name)
		}
	}

	assigned := make(map[string]int, len(g.Functions))
	for _, a := range g.Functions {
		assigned[a.ID]++
	}
	check := func(id string) error {
		if id == "" {
			return errors.New("feature without an id")
		}
		if n := assigned[id]; n != 1 {
			return fmt.Errorf("feature %s has %d function assignments, want 1", id, n)
		}
		return nil
	}
	for _, p := range g.Pegs {
		if err := check(p.ID); err != nil {
			return err
		}
	}
	for _, r := range g.RNAs {
		if err := check(r.ID); err != nil {
			return err
		}
	}
	return nil
}

// HasNucleotides reports whether seq contains any of A, C, G or T.
func HasNucleotides(seq string) bool {
	return strings.ContainsAny(strings.ToUpper(seq), "ACGT")
}

// ParseLocation splits a "<contig>_<start>_<stop>" location. Contig names
// may themselves contain underscores.
func ParseLocation(loc string) (contig string, start, stop int, err error) {
	i := strings.LastIndex(loc, "_")
	if i <= 0 {
		return "", 0, 0, fmt.Errorf("bad location %q", loc)
	}
	j := strings.LastIndex(loc[:i], "_")
	if j <= 0 {
		return "", 0, 0, fmt.Errorf("bad location %q", loc)
	}

	if start, err = strconv.Atoi(loc[j+1 : i]); err != nil {
		return "", 0, 0, fmt.Errorf("bad start in location %q: %w", loc, err)
	}
	if stop, err = strconv.Atoi(loc[i+1:]); err != nil {
		return "", 0, 0, fmt.Errorf("bad stop in location %q: %w", loc, err)
	}
	return loc[:j], start, stop, nil
}
