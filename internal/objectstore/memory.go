package objectstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

const memScheme = "mem://"

// Memory is an in-process Store for tests and throwaway deployments.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory object store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (s *Memory) Put(_ context.Context, key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored
	return memScheme + key, nil
}

func (s *Memory) Get(_ context.Context, location string) (io.ReadCloser, error) {
	key := strings.TrimPrefix(location, memScheme)

	s.mu.Lock()
	data, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoObject
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
