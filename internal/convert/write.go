package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/JFsanchezherrero/PhiSpy/internal/seed"
)

// fileSystem is the subset of os used to write a SEED directory.
type fileSystem interface {
	MkdirAll(path string, perm fs.FileMode) error
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
	Stat(name string) (fs.FileInfo, error)
}

type osFS struct{}

func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) MkdirTemp(dir, pattern string) (string, error) { return os.MkdirTemp(dir, pattern) }
func (osFS) WriteFile(name string, data []byte, perm fs.FileMode) error { return os.WriteFile(name, data, perm) }
func (osFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (osFS) Remove(name string) error { return os.Remove(name) }
func (osFS) RemoveAll(path string) error { return os.RemoveAll(path) }
func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// file is one SEED file staged for commit.
type file struct {
	rel  string
	data []byte
}

// transaction tracks everything a write changed so it can be undone.
type transaction struct {
	fs  fileSystem
	log *zap.Logger
	dir string

	// dirs created, outermost first
	dirs []string

	// staging directory inside dir
	stage string

	// files moved into dir, and the pre-existing files they displaced
	committed []string
	backups   map[string]string
}

// encode renders the genome's SEED files in commit order.
func encode(g *seed.Genome) ([]file, error) {
	type encoder struct {
		rel   string
		write func(io.Writer) error
	}
	encoders := []encoder{
		{seed.ContigsFile, func(w io.Writer) error { return seed.WriteContigs(w, g.Contigs) }},
		{seed.FunctionsFile, func(w io.Writer) error { return seed.WriteFunctions(w, g.Functions) }},
		{seed.PegTable, func(w io.Writer) error { return seed.WritePegs(w, g.Pegs) }},
		{seed.RNATable, func(w io.Writer) error { return seed.WriteRNAs(w, g.RNAs) }},
	}
	if g.Descriptor != "" {
		encoders = append(encoders, encoder{seed.GenomeFile, func(w io.Writer) error {
			_, err := io.WriteString(w, g.Descriptor)
			return err
		}})
	}
	if g.Description != "" {
		encoders = append(encoders, encoder{seed.DescriptionFile, func(w io.Writer) error {
			_, err := io.WriteString(w, g.Description)
			return err
		}})
	}

	files := make([]file, 0, len(encoders))
	for _, e := range encoders {
		var buf bytes.Buffer
		if err := e.write(&buf); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", e.rel, err)
		}
		files = append(files, file{rel: e.rel, data: buf.Bytes()})
	}
	return files, nil
}

// write stages and commits the genome's files into dir, rolling back on
// any failure.
func (c *Converter) write(g *seed.Genome, dir string) (err error) {
	files, err := encode(g)
	if err != nil {
		return err
	}

	tx := &transaction{fs: c.fs, log: c.log, dir: dir, backups: map[string]string{}}
	defer func() {
		if err == nil {
			tx.cleanup()
			return
		}
		if rbErr := tx.rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to roll back %s: %w", dir, rbErr))
		}
	}()

	if err := tx.mkdir(dir); err != nil {
		return unwritable(dir, err)
	}
	if tx.stage, err = c.fs.MkdirTemp(dir, ".seed-*"); err != nil {
		return unwritable(dir, err)
	}

	for _, f := range files {
		staged := filepath.Join(tx.stage, f.rel)
		if err := c.fs.MkdirAll(filepath.Dir(staged), 0o755); err != nil {
			return unwritable(dir, err)
		}
		if err := c.fs.WriteFile(staged, f.data, 0o644); err != nil {
			return unwritable(dir, err)
		}
	}

	for _, f := range files {
		if err := tx.commit(f.rel); err != nil {
			return unwritable(dir, err)
		}
	}

	// metadata left by an earlier conversion doesn't describe this genome
	for _, rel := range stale(files) {
		if err := tx.discard(rel); err != nil {
			return unwritable(dir, err)
		}
	}
	return nil
}

// stale is the optional metadata files that files doesn't include.
func stale(files []file) []string {
	var rels []string
	for _, rel := range []string{seed.GenomeFile, seed.DescriptionFile} {
		found := false
		for _, f := range files {
			if f.rel == rel {
				found = true
				break
			}
		}
		if !found {
			rels = append(rels, rel)
		}
	}
	return rels
}

func unwritable(dir string, err error) error {
	return &Error{Kind: ErrTargetUnwritable, Field: dir, Err: err}
}

// mkdir creates path and any missing parents, remembering each one created.
func (tx *transaction) mkdir(path string) error {
	var missing []string
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		if _, err := tx.fs.Stat(p); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		missing = append(missing, p)
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		if err := tx.fs.MkdirAll(missing[i], 0o755); err != nil {
			return err
		}
		tx.dirs = append(tx.dirs, missing[i])
	}
	return nil
}

// commit moves a staged file into place, setting aside any file it replaces.
func (tx *transaction) commit(rel string) error {
	dst := filepath.Join(tx.dir, rel)
	if err := tx.mkdir(filepath.Dir(dst)); err != nil {
		return err
	}

	if _, err := tx.fs.Stat(dst); err == nil {
		backup := filepath.Join(tx.stage, ".previous", rel)
		if err := tx.fs.MkdirAll(filepath.Dir(backup), 0o755); err != nil {
			return err
		}
		if err := tx.fs.Rename(dst, backup); err != nil {
			return err
		}
		tx.backups[dst] = backup
	}

	if err := tx.fs.Rename(filepath.Join(tx.stage, rel), dst); err != nil {
		return err
	}
	tx.committed = append(tx.committed, dst)
	return nil
}

// discard sets aside an existing file in dir so rollback can restore it.
func (tx *transaction) discard(rel string) error {
	dst := filepath.Join(tx.dir, rel)
	if _, err := tx.fs.Stat(dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	backup := filepath.Join(tx.stage, ".previous", rel)
	if err := tx.fs.MkdirAll(filepath.Dir(backup), 0o755); err != nil {
		return err
	}
	if err := tx.fs.Rename(dst, backup); err != nil {
		return err
	}
	tx.backups[dst] = backup
	return nil
}

// rollback removes committed files, restores displaced ones and removes the
// directories the write created. It keeps going past failures and returns
// them all.
func (tx *transaction) rollback() error {
	var errs []error
	for i := len(tx.committed) - 1; i >= 0; i-- {
		dst := tx.committed[i]
		if err := tx.fs.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	for dst, backup := range tx.backups {
		if err := tx.fs.Rename(backup, dst); err != nil {
			errs = append(errs, err)
		}
	}
	if tx.stage != "" {
		if err := tx.fs.RemoveAll(tx.stage); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(tx.dirs) - 1; i >= 0; i-- {
		if err := tx.fs.Remove(tx.dirs[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		tx.log.Info("rolled back SEED directory", zap.String("dir", tx.dir))
	}
	return errors.Join(errs...)
}

// cleanup drops the staging directory after a successful commit. The
// SEED files are already in place, so a failure here is only logged.
func (tx *transaction) cleanup() {
	if err := tx.fs.RemoveAll(tx.stage); err != nil {
		tx.log.Warn("failed to remove staging directory", zap.String("dir", tx.stage), zap.Error(err))
	}
}
