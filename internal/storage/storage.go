// Package storage persists engine snapshots, one document per boss.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gravitas-games/crimeboss/pkg/engine"
)

var (
	// ErrSnapshotNotFound is returned by Load when a boss has no save yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrStaleSnapshot is returned by Save when a newer version is stored.
	ErrStaleSnapshot = errors.New("stored snapshot is newer")
)

// SnapshotStore saves and loads complete engine states.
type SnapshotStore interface {
	Save(ctx context.Context, bossID string, state engine.State) error
	Load(ctx context.Context, bossID string) (engine.State, error)
	Delete(ctx context.Context, bossID string) error
}

func encode(state engine.State) ([]byte, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return doc, nil
}

func decode(doc []byte) (engine.State, error) {
	var state engine.State
	if err := json.Unmarshal(doc, &state); err != nil {
		return engine.State{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return state, nil
}

// MemoryStore keeps encoded snapshots in a map. It is meant for tests and
// local runs without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	version uint64
	doc     []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

func (m *MemoryStore) Save(ctx context.Context, bossID string, state engine.State) error {
	doc, err := encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.docs[bossID]; ok && cur.version > state.Version {
		return fmt.Errorf("%w: %s has version %d, got %d", ErrStaleSnapshot, bossID, cur.version, state.Version)
	}
	m.docs[bossID] = memoryDoc{version: state.Version, doc: doc}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, bossID string) (engine.State, error) {
	m.mu.RLock()
	cur, ok := m.docs[bossID]
	m.mu.RUnlock()
	if !ok {
		return engine.State{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, bossID)
	}
	return decode(cur.doc)
}

func (m *MemoryStore) Delete(ctx context.Context, bossID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, bossID)
	return nil
}
