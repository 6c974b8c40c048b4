package countstore

import (
	"context"
	"sync"
)

// MemCountStore keeps counters in-process. Single-instance deployments and
// tests only; counters reset on restart.
type MemCountStore struct {
	lk     sync.Mutex
	counts map[string]int
}

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		counts: make(map[string]int),
	}
}

func (s *MemCountStore) GetDayCount(ctx context.Context, name, val string) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.counts[dayBucket(name, val)], nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.counts[dayBucket(name, val)]++
	return nil
}
