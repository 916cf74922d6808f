package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cschleiden/go-resume/store"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]*store.Record
}

var _ store.Store = (*memoryStore)(nil)

func NewMemoryStore() *memoryStore {
	return &memoryStore{
		records: make(map[string]*store.Record),
	}
}

func (s *memoryStore) Get(ctx context.Context, physicalID string) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[physicalID]
	if !ok {
		return nil, store.ErrRecordNotFound
	}

	return r.Clone(), nil
}

func (s *memoryStore) Put(ctx context.Context, r *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[r.PhysicalID] = r.Clone()

	return nil
}

func (s *memoryStore) Delete(ctx context.Context, physicalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, physicalID)

	return nil
}

func (s *memoryStore) List(ctx context.Context, count int) ([]*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*store.Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r.Clone())
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].PhysicalID < records[j].PhysicalID
		}

		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	if count > 0 && len(records) > count {
		records = records[:count]
	}

	return records, nil
}

func (s *memoryStore) Close() error {
	return nil
}
