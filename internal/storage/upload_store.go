package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// UploadStore keeps uploaded files on disk for the lifetime of one request
type UploadStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Remove(path string) error
}

type tempUploadStore struct {
	dir string
}

// NewTempUploadStore stores uploads under dir with randomized names
func NewTempUploadStore(dir string) (UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &tempUploadStore{dir: dir}, nil
}

func (s *tempUploadStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, "upload-*"+safeExt(file.Filename))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// Remove deletes the upload. A file that is already gone is not an error.
func (s *tempUploadStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 8 || strings.ContainsAny(ext, `*/\`) {
		return ""
	}
	return ext
}
