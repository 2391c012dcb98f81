package convert

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldMissing is a feature or record without a required field
	// (locus tag, location, contig name)
	ErrFieldMissing = errors.New("required field missing")

	// ErrSequenceMissing is a record without nucleotide sequence
	ErrSequenceMissing = errors.New("sequence missing")

	// ErrDuplicateID is a locus tag shared by two pegs/RNAs
	ErrDuplicateID = errors.New("duplicate feature id")

	// ErrTargetUnwritable is a SEED directory that can't be created or written
	ErrTargetUnwritable = errors.New("cannot write SEED directory")
)

// Error is a fatal conversion condition with the record and feature it
// was found on.
type Error struct {
	// Kind is one of the Err* sentinels
	Kind error

	// Record is the contig name, or the record's 1-based position if it has none
	Record string

	// Feature is the 1-based position in the record's feature table, 0 if
	// the error isn't about a feature
	Feature int

	// Type of the feature, eg "CDS"
	Type string

	// Field that was missing or invalid, eg "locus_tag"
	Field string

	// Err is an underlying cause, if any
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Record != "" {
		fmt.Fprintf(&b, " in record %s", e.Record)
	}
	if e.Feature > 0 {
		fmt.Fprintf(&b, ", feature %d (%s)", e.Feature, e.Type)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
