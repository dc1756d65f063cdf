package memory

import (
	"context"
	"sync"

	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/store"
)

type snapshot struct {
	graph    *common.Graph
	analysis *common.Analysis
}

// MemoryStore is an in-memory GraphStore used in tests and as a degraded
// fallback when no database is configured. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	editable  map[string]snapshot
	published map[string]snapshot
	seeds     map[string]string

	// SaveCount helps tests assert save-on-every-mutation behavior.
	SaveCount int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		editable:  map[string]snapshot{},
		published: map[string]snapshot{},
		seeds:     map[string]string{},
	}
}

func (m *MemoryStore) Load(ctx context.Context, caseID string) (*common.Graph, *common.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.editable[caseID]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	return snap.graph.Clone(), snap.analysis, nil
}

func (m *MemoryStore) Save(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editable[caseID] = snapshot{graph: g.Clone(), analysis: a}
	m.SaveCount++
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.editable, caseID)
	return nil
}

func (m *MemoryStore) LoadPublished(ctx context.Context, caseID string) (*common.Graph, *common.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.published[caseID]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	return snap.graph.Clone(), snap.analysis, nil
}

func (m *MemoryStore) SavePublished(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[caseID] = snapshot{graph: g.Clone(), analysis: a}
	return nil
}

func (m *MemoryStore) LoadSeedText(ctx context.Context, caseID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.seeds[caseID]
	if !ok {
		return "", store.ErrNotFound
	}
	return text, nil
}

func (m *MemoryStore) SaveSeedText(ctx context.Context, caseID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeds[caseID] = text
	return nil
}
