package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

var (
	// ErrFileNotFound is returned when a requested file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPath is returned when a path is invalid or contains path traversal.
	ErrInvalidPath = errors.New("invalid path")
)

const (
	dirPerm  fs.FileMode = 0755
	filePerm fs.FileMode = 0644
)

// LocalStorage is an output directory on the local filesystem. Generated
// artifacts land here under fixed names so that pytest, run from the same
// directory, picks up the latest set. Every write replaces the previous file
// in one rename, so a concurrent test run sees either the old or the new
// content and never a partial file.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage opens the output directory at baseDir, creating it and any
// missing parents. Opening an existing directory is not an error.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("%w: base directory cannot be empty", ErrInvalidPath)
	}
	baseDir = filepath.Clean(baseDir)
	if baseDir == "." {
		return nil, fmt.Errorf("%w: base directory cannot be the working directory", ErrInvalidPath)
	}

	s := &LocalStorage{baseDir: baseDir}
	if err := s.ensureDir(baseDir); err != nil {
		return nil, err
	}
	return s, nil
}

// BaseDir returns the output directory.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Upload replaces the file at name with the content of reader. The output
// directory is recreated if it was removed while the process was running.
func (s *LocalStorage) Upload(ctx context.Context, name string, reader io.Reader) error {
	target, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := s.ensureDir(filepath.Dir(target)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// Download opens the file at name. Directories are reported as missing.
func (s *LocalStorage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	target, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.statFile(target); err != nil {
		return nil, err
	}

	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return file, nil
}

// Delete removes the file at name, then prunes the directories it leaves
// empty up to, but not including, the output directory.
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	target, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	for dir := filepath.Dir(target); dir != s.baseDir; dir = filepath.Dir(dir) {
		// Remove fails on a non-empty directory, which ends the walk.
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// Exists reports whether a regular file is stored at name.
func (s *LocalStorage) Exists(ctx context.Context, name string) (bool, error) {
	target, err := s.resolve(name)
	if err != nil {
		return false, err
	}

	if _, err := s.statFile(target); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetURL returns a file:// URL for the file at name.
func (s *LocalStorage) GetURL(ctx context.Context, name string) (string, error) {
	target, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if _, err := s.statFile(target); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// resolve maps a slash-separated name onto a path inside the output
// directory. Absolute names and names that climb out of it are rejected.
func (s *LocalStorage) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) || filepath.Clean(local) == "." {
		return "", fmt.Errorf("%w: %q escapes the output directory", ErrInvalidPath, name)
	}
	return filepath.Join(s.baseDir, local), nil
}

func (s *LocalStorage) statFile(target string) (fs.FileInfo, error) {
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrFileNotFound
	}
	return info, nil
}

func (s *LocalStorage) ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
