package bill

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keeps the source documents extractions were made from
type Storage interface {
	// Save stores data under name and returns the name to retrieve it by
	Save(name string, data []byte) (string, error)

	// Get retrieves a stored document
	Get(name string) ([]byte, error)

	// Delete removes a stored document
	Delete(name string) error
}

// LocalStorage implements Storage in a single flat directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes a document to the storage directory
func (l *LocalStorage) Save(name string, data []byte) (string, error) {
	path, err := l.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get reads a document from the storage directory
func (l *LocalStorage) Get(name string) ([]byte, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a document from the storage directory
func (l *LocalStorage) Delete(name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// path resolves name inside basePath. Names may not contain directories.
func (l *LocalStorage) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(l.basePath, name), nil
}
