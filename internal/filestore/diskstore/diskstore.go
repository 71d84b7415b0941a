// Package diskstore keeps avatars as plain files in one directory.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/patric-chuzhbe/contactsapi/internal/filestore"
)

type DiskStore struct {
	dir string
}

// New creates dir when it does not exist yet.
func New(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("in internal/filestore/diskstore/diskstore.go/New(): error while `os.MkdirAll()` calling: %w", err)
	}

	return &DiskStore{dir: dir}, nil
}

// Save writes content to dir/name, replacing an existing file.
func (s *DiskStore) Save(_ context.Context, name string, content io.Reader, _ string) error {
	if !filestore.ValidName(name) {
		return filestore.ErrInvalidName
	}

	file, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("in internal/filestore/diskstore/diskstore.go/Save(): error while `os.OpenFile()` calling: %w", err)
	}

	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		return fmt.Errorf("in internal/filestore/diskstore/diskstore.go/Save(): error while `io.Copy()` calling: %w", err)
	}

	return file.Close()
}

// Open returns filestore.ErrNotExist for unknown or malformed names.
func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !filestore.ValidName(name) {
		return nil, filestore.ErrNotExist
	}

	file, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, filestore.ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, filestore.ErrNotExist
	}

	return file, nil
}
