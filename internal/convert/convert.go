// Package convert turns GenBank records into a SEED organism directory.
//
// A conversion is all or nothing: the genome is built and checked in memory,
// written to a staging directory inside the target and only then moved into
// place. If anything fails the target is returned to the state it was found
// in, or removed if the conversion created it.
package convert

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JFsanchezherrero/PhiSpy/internal/genbank"
	"github.com/JFsanchezherrero/PhiSpy/internal/seed"
)

// Converter builds SEED directories from GenBank records.
type Converter struct {
	log *zap.Logger

	// fs operations, swapped in tests to fail part way through a commit
	fs fileSystem
}

// New returns a Converter that logs to log. A nil log is silent.
func New(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{log: log, fs: osFS{}}
}

// ConvertFile reads the GenBank file at path and converts it into dir.
func (c *Converter) ConvertFile(path, dir string) (*seed.Genome, error) {
	records, err := genbank.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Convert(records, dir)
}

// Convert builds a genome from records and writes it to dir. Records share
// dir, one contig each, so a multi-contig genome is a multi-record file.
func (c *Converter) Convert(records []genbank.Record, dir string) (*seed.Genome, error) {
	g, err := c.Build(records)
	if err != nil {
		return nil, err
	}
	if err := c.write(g, dir); err != nil {
		return nil, err
	}

	c.log.Info("converted GenBank records to SEED",
		zap.String("dir", dir),
		zap.Int("contigs", len(g.Contigs)),
		zap.Int("pegs", len(g.Pegs)),
		zap.Int("rnas", len(g.RNAs)))
	return g, nil
}

// Build makes a genome from records in a single pass. The first fatal
// condition stops the pass and is returned as an *Error.
func (c *Converter) Build(records []genbank.Record) (*seed.Genome, error) {
	if len(records) == 0 {
		return nil, &Error{Kind: ErrSequenceMissing, Field: "contigs"}
	}

	g := &seed.Genome{}
	seen := make(map[string]bool)

	for i, rec := range records {
		name := contigName(rec)
		if name == "" {
			return nil, &Error{Kind: ErrFieldMissing, Record: strconv.Itoa(i + 1), Field: "contig name"}
		}

		sequence := strings.ToUpper(strings.TrimSpace(rec.Seq))
		if !seed.HasNucleotides(sequence) {
			return nil, &Error{Kind: ErrSequenceMissing, Record: name}
		}
		g.Contigs = append(g.Contigs, seed.Contig{Name: name, Seq: sequence})

		if i == 0 {
			g.OrganismID = name
			g.Descriptor = descriptor(rec)
			g.Description = rec.Description
			if g.Descriptor == "" {
				c.log.Warn("no source or organism in GenBank record, GENOME not written", zap.String("record", name))
			}
		}

		for j, f := range rec.Features {
			kind := strings.ToUpper(f.Type)
			isPeg := strings.Contains(kind, "CD")
			isRNA := strings.Contains(kind, "RNA")
			if !isPeg && !isRNA {
				continue
			}

			feat, function, err := c.feature(name, j+1, f)
			if err != nil {
				return nil, err
			}

			// a feature type matching both is written to both tables, but
			// its function only once
			if seen[feat.ID] {
				return nil, &Error{Kind: ErrDuplicateID, Record: name, Feature: j + 1, Type: f.Type, Field: feat.ID}
			}
			seen[feat.ID] = true
			g.Functions = append(g.Functions, seed.Assignment{ID: feat.ID, Function: function})

			if isPeg {
				g.Pegs = append(g.Pegs, feat)
			}
			if isRNA {
				g.RNAs = append(g.RNAs, seed.RNA{Feature: feat, Function: function})
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("built an invalid genome: %w", err)
	}
	return g, nil
}

// feature makes a SEED feature from a GenBank feature on contig.
func (c *Converter) feature(contig string, index int, f genbank.Feature) (seed.Feature, string, error) {
	id, ok := f.Qualifier("locus_tag")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return seed.Feature{}, "", &Error{Kind: ErrFieldMissing, Record: contig, Feature: index, Type: f.Type, Field: "locus_tag"}
	}

	function, ok := f.Qualifier("product")
	function = strings.TrimSpace(function)
	if !ok || function == "" {
		c.log.Debug("feature has no product", zap.String("locus_tag", id))
		function = seed.UnknownFunction
	}

	if f.Location == nil {
		return seed.Feature{}, "", &Error{Kind: ErrFieldMissing, Record: contig, Feature: index, Type: f.Type, Field: "location of " + id}
	}

	feat := seed.Feature{ID: id, Contig: contig}
	if f.Location.Strand == genbank.Reverse {
		feat.Start = f.Location.End
		feat.Stop = f.Location.Start + 1
	} else {
		feat.Start = f.Location.Start + 1
		feat.Stop = f.Location.End
	}
	return feat, function, nil
}

// contigName is the LOCUS name, or the record id when the name is too short
// to be meaningful.
func contigName(rec genbank.Record) string {
	name := strings.TrimSpace(rec.Name)
	if len(name) < 3 {
		name = strings.TrimSpace(rec.ID)
	}
	return name
}

// descriptor prefers the SOURCE line over the ORGANISM line.
func descriptor(rec genbank.Record) string {
	if s, ok := rec.Annotations["source"]; ok && s != "" {
		return s
	}
	return rec.Annotations["organism"]
}
