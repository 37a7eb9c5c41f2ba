package filestore

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
)

// Mem keeps blobs in memory; tests only.
type Mem struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ core.FileStore = (*Mem)(nil) // interface compliance check

func NewMem() *Mem {
	return &Mem{blobs: make(map[string][]byte)}
}

func (s *Mem) Save(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[path] = cp
	return nil
}

func (s *Mem) Load(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[path]
	if !ok {
		return nil, errors.Errorf("blob not found: %s", path)
	}
	return data, nil
}

func (s *Mem) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, path)
	return nil
}
