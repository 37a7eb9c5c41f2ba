package core

import "context"

// FileStore is any service that can persist and retrieve uploaded blobs.
type FileStore interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}
