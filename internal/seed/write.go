package seed

import (
	"bufio"
	"fmt"
	"io"
)

// WriteContigs writes contigs as ">name" followed by the sequence on one line.
func WriteContigs(w io.Writer, contigs []Contig) error {
	bw := bufio.NewWriter(w)
	for _, c := range contigs {
		fmt.Fprintf(bw, ">%s\n%s\n", c.Name, c.Seq)
	}
	return bw.Flush()
}

// WriteFunctions writes "<id>\t<function>" rows.
func WriteFunctions(w io.Writer, functions []Assignment) error {
	bw := bufio.NewWriter(w)
	for _, a := range functions {
		fmt.Fprintf(bw, "%s\t%s\n", a.ID, a.Function)
	}
	return bw.Flush()
}

// WritePegs writes "<id>\t<contig>_<start>_<stop>" rows.
func WritePegs(w io.Writer, pegs []Feature) error {
	bw := bufio.NewWriter(w)
	for _, p := range pegs {
		fmt.Fprintf(bw, "%s\t%s\n", p.ID, p.Location())
	}
	return bw.Flush()
}

// WriteRNAs writes "<id>\t<contig>_<start>_<stop>\t<function>" rows.
func WriteRNAs(w io.Writer, rnas []RNA) error {
	bw := bufio.NewWriter(w)
	for _, r := range rnas {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", r.ID, r.Location(), r.Function)
	}
	return bw.Flush()
}
