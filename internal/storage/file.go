package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileStorage keeps snapshots in a local directory, for development
type FileStorage struct {
	dir string
}

// Ensure FileStorage implements StorageInterface
var _ StorageInterface = (*FileStorage)(nil)

// NewFileStorage creates the directory if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// path keeps every file inside dir
func (s *FileStorage) path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

func (s *FileStorage) Store(filename string, data []byte) error {
	if err := os.WriteFile(s.path(filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	logrus.Debugf("Stored %s in %s", filename, s.dir)
	return nil
}

func (s *FileStorage) Retrieve(filename string) ([]byte, error) {
	data, err := os.ReadFile(s.path(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

func (s *FileStorage) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}

func (s *FileStorage) Delete(filename string) error {
	if err := os.Remove(s.path(filename)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	return nil
}
