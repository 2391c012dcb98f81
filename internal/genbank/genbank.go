// Package genbank reads GenBank flat files into the annotated records the
// SEED converter works from.
//
// Parsing is done by poly's genbank reader. This package keeps the parts
// needed to build a SEED directory: the LOCUS name, the ACCESSION/VERSION
// id, DEFINITION, SOURCE and ORGANISM, the feature table and the sequence.
package genbank

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bebop/poly/io/genbank"
)

// Strand of a feature location.
type Strand int

const (
	// Forward is the plus strand
	Forward Strand = 1

	// Reverse is the minus strand (a complement location)
	Reverse Strand = -1
)

// Location is the span of a feature on its record. Start is 0-based and End
// is exclusive, so a GenBank location of 10..40 has Start 9 and End 40.
type Location struct {
	Start  int
	End    int
	Strand Strand
}

// Feature is a single entry in a record's feature table.
type Feature struct {
	// Type is the feature key, eg "CDS", "tRNA", "gene"
	Type string

	// Location is nil when the feature has no usable location
	Location *Location

	// Qualifiers maps a qualifier name (without the leading "/") to its values
	Qualifiers map[string][]string
}

// Qualifier returns the first value of a qualifier and whether it was set.
func (f Feature) Qualifier(name string) (string, bool) {
	vals, ok := f.Qualifiers[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Record is one LOCUS ... // entry of a GenBank file.
type Record struct {
	// Name from the LOCUS line
	Name string

	// ID is the VERSION accession, or the first ACCESSION if there is no VERSION
	ID string

	// Description from the DEFINITION lines, without the trailing period
	Description string

	// Annotations holds "source" and "organism" when present
	Annotations map[string]string

	// Seq is the record's sequence
	Seq string

	Features []Feature
}

// ReadFile parses every record in the GenBank file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GenBank file %s: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// Read parses every record from r. Input without a record is an error.
func Read(r io.Reader) ([]Record, error) {
	gbs, err := genbank.ParseMulti(r)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, gb := range gbs {
		if gb.Meta.Locus.Name == "" && gb.Sequence == "" && len(gb.Features) == 0 {
			continue
		}
		records = append(records, record(gb))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no LOCUS record found")
	}
	return records, nil
}

func record(gb genbank.Genbank) Record {
	rec := Record{
		Name:        strings.TrimSpace(gb.Meta.Locus.Name),
		ID:          firstField(gb.Meta.Version),
		Description: strings.TrimSuffix(strings.TrimSpace(gb.Meta.Definition), "."),
		Annotations: map[string]string{},
		Seq:         gb.Sequence,
	}
	if rec.ID == "" {
		rec.ID = firstField(gb.Meta.Accession)
	}
	if source := strings.TrimSpace(gb.Meta.Source); source != "" {
		rec.Annotations["source"] = source
	}
	if organism := strings.TrimSpace(gb.Meta.Organism); organism != "" {
		rec.Annotations["organism"] = organism
	}

	for _, f := range gb.Features {
		feat := Feature{
			Type:       f.Type,
			Location:   location(f.Location),
			Qualifiers: make(map[string][]string, len(f.Attributes)),
		}
		for name, value := range f.Attributes {
			feat.Qualifiers[name] = append(feat.Qualifiers[name], value)
		}
		rec.Features = append(rec.Features, feat)
	}
	return rec
}

// location flattens a parsed location to its outer span. Joined locations
// span from their leftmost to their rightmost base and are on the reverse
// strand only when every part is. A location without any span is nil.
func location(l genbank.Location) *Location {
	start, end, ok := span(l)
	if !ok || end < start {
		return nil
	}
	strand := Forward
	if reverse(l) {
		strand = Reverse
	}
	return &Location{Start: start, End: end, Strand: strand}
}

func span(l genbank.Location) (start, end int, ok bool) {
	if len(l.SubLocations) == 0 {
		if l.Start == 0 && l.End == 0 {
			return 0, 0, false
		}
		return l.Start, l.End, true
	}
	for _, sub := range l.SubLocations {
		s, e, subOK := span(sub)
		if !subOK {
			continue
		}
		if !ok || s < start {
			start = s
		}
		if !ok || e > end {
			end = e
		}
		ok = true
	}
	return start, end, ok
}

func reverse(l genbank.Location) bool {
	inner := false
	if len(l.SubLocations) > 0 {
		inner = true
		for _, sub := range l.SubLocations {
			if !reverse(sub) {
				inner = false
				break
			}
		}
	}
	return l.Complement != inner
}

func firstField(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
