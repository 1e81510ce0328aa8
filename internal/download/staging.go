package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staging is the scratch directory one version group downloads into.
type Staging struct {
	dir string
}

// NewStaging creates a Staging rooted at dir. Nothing is created on disk
// until Reset.
func NewStaging(dir string) *Staging {
	return &Staging{dir: dir}
}

// Dir returns the staging directory.
func (s *Staging) Dir() string { return s.dir }

// cleanName drops directory parts of a remote file name so it cannot
// escape its slot.
func cleanName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "file"
	}
	return base
}

// Reset empties the staging directory, creating it if needed.
func (s *Staging) Reset() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clearing staging dir: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	return nil
}

// Remove deletes the staging directory and everything in it.
func (s *Staging) Remove() error {
	return os.RemoveAll(s.dir)
}

// Store writes r into a fresh slot directory under the staging dir and
// returns the final path and byte count. Every call gets its own slot, so
// two jobs with the same name never share a path. Data lands in a temp
// file first; a failed transfer removes the slot entirely.
func (s *Staging) Store(name string, r io.Reader) (string, int64, error) {
	name = cleanName(name)
	slot, err := os.MkdirTemp(s.dir, "job-*")
	if err != nil {
		return "", 0, fmt.Errorf("create staging slot: %w", err)
	}
	fail := func(err error) (string, int64, error) {
		_ = os.RemoveAll(slot)
		return "", 0, err
	}

	f, err := os.CreateTemp(slot, name+".*.part")
	if err != nil {
		return fail(fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := f.Name()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return fail(fmt.Errorf("writing %s: %w", name, err))
	}
	if err := f.Close(); err != nil {
		return fail(fmt.Errorf("closing temp file: %w", err))
	}

	destPath := filepath.Join(slot, name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fail(err)
	}
	return destPath, n, nil
}

// Rename gives a staged file a new name inside its slot. It fails with an
// error wrapping os.ErrExist if newName is already taken there.
func (s *Staging) Rename(path, newName string) (string, error) {
	dest := filepath.Join(filepath.Dir(path), cleanName(newName))
	if dest == path {
		return path, nil
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("rename %s: %w", filepath.Base(dest), os.ErrExist)
	}
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}
