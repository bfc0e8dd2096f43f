package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalCropStore writes crops into a directory served statically by the HTTP layer
type LocalCropStore struct {
	dir       string
	urlPrefix string
}

// NewLocalCropStore creates the directory if needed
func NewLocalCropStore(dir, urlPrefix string) (*LocalCropStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create crops directory %s: %w", dir, err)
	}
	return &LocalCropStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the directory crops are written to
func (s *LocalCropStore) Dir() string {
	return s.dir
}

// URLPrefix returns the URL path crops are served under
func (s *LocalCropStore) URLPrefix() string {
	return s.urlPrefix
}

// Save writes the crop and returns its URL path
func (s *LocalCropStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid crop name %q", name)
	}

	fullPath := filepath.Join(s.dir, name)

	// O_EXCL: an existing file is never overwritten
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(fullPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return "", err
	}

	return path.Join(s.urlPrefix, name), nil
}
