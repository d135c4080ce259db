// store.go tracks which diagram instances have already been rendered.

// Package renderstate persists per-diagram render flags so a later pass
// skips diagrams that rendered successfully and retries the ones that did not.
package renderstate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Store records render flags keyed by diagram ID. The digest ties a flag to
// the exact source that was rendered, so an edited diagram renders again.
type Store interface {
	IsRendered(ctx context.Context, id, digest string) (bool, error)
	MarkRendered(ctx context.Context, id, digest string) error
	Clear(ctx context.Context, id string) error
}

// Digest returns the hex SHA-256 of a diagram source.
func Digest(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	flags map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{flags: make(map[string]string)}
}

func (m *Memory) IsRendered(_ context.Context, id, digest string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	got, ok := m.flags[id]
	return ok && got == digest, nil
}

func (m *Memory) MarkRendered(_ context.Context, id, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[id] = digest
	return nil
}

func (m *Memory) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, id)
	return nil
}
