package helm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// chartStore keeps expanded chart trees on disk keyed by chart content hash.
type chartStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

var charts = newChartStore()

func newChartStore() *chartStore {
	return &chartStore{entries: map[string]string{}}
}

// lookup returns the directory for key while it is still on disk.
func (s *chartStore) lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if _, err := os.Stat(dir); err != nil {
		return "", false
	}
	return dir, true
}

func (s *chartStore) store(key, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = dir
}

func (s *chartStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// clear removes every entry and its directory.
func (s *chartStore) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for key, dir := range s.entries {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", dir, err))
		}
		delete(s.entries, key)
	}
	return errors.Join(errs...)
}

// ClearChartCache removes all cached chart directories.
func ClearChartCache() error {
	return charts.clear()
}

// copyTree writes every file below root in fsys into dst.
func copyTree(fsys fs.FS, root, dst string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("failed to walk %s: %w", p, walkErr)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	})
}

// copyToTemp copies fsys below root into a new temporary directory.
func copyToTemp(fsys fs.FS, root, prefix string) (string, error) {
	dir, err := os.MkdirTemp("", prefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	if err := copyTree(fsys, root, dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}
