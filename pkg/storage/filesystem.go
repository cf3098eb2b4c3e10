package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideRoot is returned for names that escape the storage root.
var ErrOutsideRoot = errors.New("storage: path escapes root directory")

// DiskStore keeps generated exports on the local filesystem.
type DiskStore struct {
	root string
}

// NewDiskStore creates root if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		root = "./exports"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: abs}, nil
}

// Save writes data under name and returns the relative name.
func (s *DiskStore) Save(name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return name, nil
}

// Open returns a reader for a stored file; callers close it.
func (s *DiskStore) Open(name string) (io.ReadSeekCloser, os.FileInfo, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open export file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("stat export file: %w", err)
	}
	return file, info, nil
}

// Delete removes a stored file; missing files are not an error.
func (s *DiskStore) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete export file: %w", err)
	}
	return nil
}

// Sweep deletes files last modified before now-ttl and returns their relative names.
func (s *DiskStore) Sweep(now time.Time, ttl time.Duration) ([]string, error) {
	cutoff := now.Add(-ttl)
	var removed []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		rel, _ := filepath.Rel(s.root, path)
		removed = append(removed, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep exports: %w", err)
	}
	return removed, nil
}

func (s *DiskStore) resolve(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", ErrOutsideRoot
	}
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return path, nil
}
