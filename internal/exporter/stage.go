package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// StagedFile is a fully written temp file waiting to replace Target.
type StagedFile struct {
	Target string
	temp   string
}

// stage creates a temp file next to target and hands it to write. The temp
// file is removed if write or close fails.
func stage(target string, write func(f *os.File) error) (_ *StagedFile, err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return nil, err
	}
	if err := tmp.Chmod(0644); err != nil {
		return nil, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return &StagedFile{Target: target, temp: tmp.Name()}, nil
}

// Discard removes the temp file.
func (s *StagedFile) Discard() {
	if s != nil {
		os.Remove(s.temp)
	}
}

// DiscardAll removes every temp file in files; nil entries are skipped.
func DiscardAll(files ...*StagedFile) {
	for _, s := range files {
		s.Discard()
	}
}

// CommitAll moves every staged file onto its target. Either all targets are
// replaced or none are: existing targets are set aside first and restored
// if any rename fails. Temp files are removed on failure.
func CommitAll(files ...*StagedFile) (err error) {
	defer func() {
		if err != nil {
			DiscardAll(files...)
		}
	}()

	for _, s := range files {
		if info, err := os.Stat(s.Target); err == nil && info.IsDir() {
			return fmt.Errorf("cannot replace %s: is a directory", s.Target)
		}
	}

	type moved struct {
		target string
		backup string
	}
	var done []moved
	rollback := func() error {
		var errs []error
		for i := len(done) - 1; i >= 0; i-- {
			m := done[i]
			if m.backup != "" {
				errs = append(errs, os.Rename(m.backup, m.target))
			} else {
				errs = append(errs, os.Remove(m.target))
			}
		}
		return errors.Join(errs...)
	}

	for _, s := range files {
		backup, err := setAside(s.Target)
		if err != nil {
			return errors.Join(err, rollback())
		}
		if err := os.Rename(s.temp, s.Target); err != nil {
			if backup != "" {
				done = append(done, moved{target: s.Target, backup: backup})
			}
			return errors.Join(fmt.Errorf("failed to move %s into place: %w", s.Target, err), rollback())
		}
		done = append(done, moved{target: s.Target, backup: backup})
	}

	for _, m := range done {
		if m.backup != "" {
			os.Remove(m.backup)
		}
	}
	return nil
}

// setAside renames an existing target to a backup name in the same
// directory and returns that name, or "" when there is nothing to keep.
func setAside(target string) (string, error) {
	if _, err := os.Lstat(target); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	backup, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".bak.*")
	if err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", target, err)
	}
	backup.Close()
	if err := os.Rename(target, backup.Name()); err != nil {
		os.Remove(backup.Name())
		return "", fmt.Errorf("failed to back up %s: %w", target, err)
	}
	return backup.Name(), nil
}
