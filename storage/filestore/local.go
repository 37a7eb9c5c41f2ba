// Package filestore persists uploaded blobs.
package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
)

// Local stores blobs as files under a root directory.
type Local struct {
	root string
}

var _ core.FileStore = (*Local)(nil) // interface compliance check

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &Local{root: root}, nil
}

func (s *Local) Save(_ context.Context, path string, data []byte) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(err, "creating dir for %s", path)
	}
	return errors.Wrapf(os.WriteFile(full, data, 0o644), "writing %s", path)
}

func (s *Local) Load(_ context.Context, path string) ([]byte, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	return data, errors.Wrapf(err, "reading %s", path)
}

func (s *Local) Delete(_ context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.Remove(full), "removing %s", path)
}

// fullPath rejects paths escaping the root.
func (s *Local) fullPath(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", errors.Errorf("invalid storage path: %s", path)
	}
	return full, nil
}
