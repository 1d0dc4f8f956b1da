// Package storage provides byte-level persistence for the three
// file-backed structures: the product library, the substitution table, and
// the unavailable log. Stores move bytes; parsing and validation belong to
// the owning packages.
package storage

import (
	"context"
	"errors"
)

// StateStore loads and saves one persisted document.
type StateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ErrNotExist is returned by Load when the document has never been written.
// Callers treat it as an empty starting state, not a failure.
var ErrNotExist = errors.New("state document does not exist")

// TestStateStore is a simple in-memory implementation for testing.
type TestStateStore struct {
	data    []byte
	loadErr error
	saveErr error
}

func NewTestStateStore(data []byte) *TestStateStore {
	return &TestStateStore{data: data}
}

func NewTestStateStoreWithError(err error) *TestStateStore {
	return &TestStateStore{loadErr: err}
}

func NewTestStateStoreWithSaveError(err error) *TestStateStore {
	return &TestStateStore{saveErr: err}
}

func (t *TestStateStore) Load(ctx context.Context) ([]byte, error) {
	if t.loadErr != nil {
		return nil, t.loadErr
	}
	if t.data == nil {
		return nil, ErrNotExist
	}
	return t.data, nil
}

func (t *TestStateStore) Save(ctx context.Context, data []byte) error {
	if t.saveErr != nil {
		return t.saveErr
	}
	t.data = append([]byte(nil), data...)
	return nil
}

// Data exposes the stored bytes for test assertions.
func (t *TestStateStore) Data() []byte { return t.data }
