package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const fileScheme = "file://"

// Local is a Store on the local filesystem. Location references are
// file:// URLs. Keys come from the service layer only, so no defense
// beyond a containment check is attempted.
type Local struct {
	path string
}

// NewLocal creates the base directory if necessary.
func NewLocal(path string) (*Local, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve object store path %q: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create object store path %q: %w", path, err)
	}
	return &Local{path: path}, nil
}

// contains reports whether fullPath sits inside the base directory. A bare
// prefix check is not enough, it would also accept sibling directories that
// share the base's name as a prefix.
func (s *Local) contains(fullPath string) bool {
	return strings.HasPrefix(fullPath, s.path+string(filepath.Separator))
}

func (s *Local) Put(_ context.Context, key string, data []byte) (string, error) {
	fullPath := filepath.Join(s.path, key)
	if !s.contains(fullPath) {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write object %q: %w", key, err)
	}

	return fileScheme + fullPath, nil
}

func (s *Local) Get(_ context.Context, location string) (io.ReadCloser, error) {
	fullPath := strings.TrimPrefix(location, fileScheme)
	if !s.contains(fullPath) {
		// Tolerate bare keys so locations written by other backends can
		// still be resolved by their final path element.
		fullPath = filepath.Join(s.path, filepath.Base(fullPath))
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoObject
		}
		return nil, fmt.Errorf("failed to open object at %q: %w", location, err)
	}
	return f, nil
}
