package domain

import (
	"fmt"
	"path/filepath"
)

// IncomingFile is one file instance ready for processing.
// It is created at invocation start from a single path argument.
type IncomingFile struct {
	// Path is the absolute path of the file as delivered.
	Path string

	// Name is the base name used for classification and hierarchy.
	Name string

	// WorkingCopy is the path of a temporary transformed rendition
	// (e.g. decompressed). Empty when no pre-processing applies.
	// It is owned by the current invocation and deleted before it ends.
	WorkingCopy string
}

// NewIncomingFile builds an IncomingFile from a path argument.
func NewIncomingFile(path string) (*IncomingFile, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &IncomingFile{
		Path: abs,
		Name: filepath.Base(abs),
	}, nil
}

// ContentPath returns the path checks and indexing should read:
// the working copy when one exists, otherwise the original file.
func (f *IncomingFile) ContentPath() string {
	if f.WorkingCopy != "" {
		return f.WorkingCopy
	}
	return f.Path
}

// HasWorkingCopy reports whether pre-processing produced a working copy.
func (f *IncomingFile) HasWorkingCopy() bool {
	return f.WorkingCopy != ""
}
