package adapters

import (
	"context"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/usecase"
)

// MemoryStore serves series loaded once at start-up. It is never written
// after construction, so concurrent readers need no locking.
type MemoryStore struct {
	byKey map[string]entity.Series
	names []string
}

var _ usecase.SeriesStore = (*MemoryStore)(nil)

// NewMemoryStore indexes series by NameKey. Series whose names collide on the
// key are concatenated in the given order; the first spelling is kept.
func NewMemoryStore(series []entity.Series) *MemoryStore {
	m := &MemoryStore{byKey: make(map[string]entity.Series, len(series))}
	for _, s := range series {
		key := NameKey(s.Name)
		cur, ok := m.byKey[key]
		if !ok {
			m.names = append(m.names, s.Name)
			cur = entity.Series{Name: s.Name}
		}
		cur.Observations = append(cur.Observations, s.Observations...)
		m.byKey[key] = cur
	}
	for key, s := range m.byKey {
		sortObservations(s.Observations)
		m.byKey[key] = s
	}
	return m
}

func (m *MemoryStore) Lookup(ctx context.Context, name string) (entity.Series, error) {
	s, ok := m.byKey[NameKey(name)]
	if !ok || s.Len() == 0 {
		return entity.Series{}, domain.ErrNotFound
	}
	return s, nil
}

// ListNames returns the index names in the order they were first seen.
func (m *MemoryStore) ListNames(ctx context.Context) ([]string, error) {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out, nil
}
