// Package filestore holds what the avatar stores have in common.
package filestore

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned by Open for unknown names.
var ErrNotExist = errors.New("file does not exist")

// ErrInvalidName is returned for names that are empty or contain a path.
var ErrInvalidName = errors.New("invalid file name")

// ValidName reports whether name is a bare file name.
func ValidName(name string) bool {
	return name != "" &&
		name != "." &&
		name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}
