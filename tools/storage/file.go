package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStateStore is a StateStore backed by a local file. The documents are
// plain JSON that a human may edit between runs.
type FileStateStore struct {
	FilePath string
}

func NewFileStateStore(filePath string) *FileStateStore {
	return &FileStateStore{FilePath: filePath}
}

func (f *FileStateStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.FilePath)
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	return data, err
}

func (f *FileStateStore) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(f.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return os.WriteFile(f.FilePath, data, 0o644)
}
