// Package training reads the list of training genomes shipped with an
// installation and lets a user pick one.
package training

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ListFile is the training genome list, relative to the installation dir.
var ListFile = filepath.Join("data", "trainingGenome_list.txt")

// MaxAttempts is how many invalid answers Choose accepts before giving up.
const MaxAttempts = 10

// ErrNoChoice is a prompt that ended without a valid answer.
var ErrNoChoice = errors.New("no training set chosen")

// Set is a training genome.
type Set struct {
	ID      int
	File    string
	Name    string
	Enabled bool
}

// Load reads a training genome list: tab separated id, file, name and an
// enabled flag of 1 or 0.
func Load(path string) ([]Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot find the training set list: %w", err)
	}
	defer f.Close()

	var sets []Set
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		cols := strings.Split(text, "\t")
		if len(cols) < 4 {
			return nil, fmt.Errorf("%s:%d: want 4 columns, got %d", path, line, len(cols))
		}
		id, err := strconv.Atoi(strings.TrimSpace(cols[0]))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad id %q", path, line, cols[0])
		}
		enabled, err := strconv.Atoi(strings.TrimSpace(cols[3]))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad flag %q", path, line, cols[3])
		}

		sets = append(sets, Set{
			ID:      id,
			File:    cols[1],
			Name:    cols[2],
			Enabled: enabled == 1,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return sets, nil
}

// Print writes the enabled sets, one "id name" per line.
func Print(w io.Writer, sets []Set) error {
	bw := bufio.NewWriter(w)
	for _, s := range sets {
		if s.Enabled {
			fmt.Fprintf(bw, "%d %s\n", s.ID, s.Name)
		}
	}
	return bw.Flush()
}

// Choose shows the list and asks for a training set until the answer is a
// number between 0 and maxID. 0 means none.
func Choose(in io.Reader, out io.Writer, sets []Set, maxID int) (int, error) {
	sc := bufio.NewScanner(in)
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := Print(out, sets); err != nil {
			return 0, err
		}
		fmt.Fprint(out, "Please choose the number for a closely related organism we can use for training, or choose 0 if you don't know: ")

		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrNoChoice, err)
			}
			return 0, fmt.Errorf("%w: no more input", ErrNoChoice)
		}

		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil || n < 0 || n > maxID {
			continue
		}
		fmt.Fprintln(out)
		return n, nil
	}
	return 0, fmt.Errorf("%w after %d attempts", ErrNoChoice, MaxAttempts)
}
