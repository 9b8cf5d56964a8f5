package assetmock

import (
	domain "collateral-lending/internal/domain/asset"
	"context"
	"sort"
	"sync"
)

var _ domain.Registry = (*Memory)(nil)

// Memory is an in-memory registry with the same ownership rules as the
// gorm-backed one.
type Memory struct {
	mu     sync.Mutex
	owners map[uint64]string
}

func NewMemory() *Memory { return &Memory{owners: map[uint64]string{}} }

func (m *Memory) OwnerOf(_ context.Context, tokenID uint64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[tokenID]
	return o, ok, nil
}

func (m *Memory) Transfer(_ context.Context, from, to string, tokenID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.owners[tokenID]; !ok || o != from {
		return domain.ErrNotOwner
	}
	m.owners[tokenID] = to
	return nil
}

func (m *Memory) Mint(_ context.Context, to string, tokenID uint64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owners[tokenID]; ok {
		return domain.ErrAlreadyMinted
	}
	m.owners[tokenID] = to
	return nil
}

func (m *Memory) Burn(_ context.Context, tokenID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owners[tokenID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.owners, tokenID)
	return nil
}

func (m *Memory) TokensOf(_ context.Context, owner string) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []uint64{}
	for id, o := range m.owners {
		if o == owner {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
