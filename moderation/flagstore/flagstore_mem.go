package flagstore

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemFlagStore is an in-process FlagStore for tests and local development.
type MemFlagStore struct {
	lk     sync.RWMutex
	nextID uint64
	flags  map[uint64]*ModerationFlag
}

func NewMemFlagStore() *MemFlagStore {
	return &MemFlagStore{
		nextID: 1,
		flags:  make(map[uint64]*ModerationFlag),
	}
}

func (s *MemFlagStore) Create(ctx context.Context, flag *ModerationFlag) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	flag.ID = s.nextID
	s.nextID++
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = time.Now().UTC()
	}
	s.flags[flag.ID] = flag.Clone()
	return nil
}

func (s *MemFlagStore) Get(ctx context.Context, id uint64) (*ModerationFlag, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()

	f, ok := s.flags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.Clone(), nil
}

func (s *MemFlagStore) Update(ctx context.Context, flag *ModerationFlag) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	if _, ok := s.flags[flag.ID]; !ok {
		return ErrNotFound
	}
	s.flags[flag.ID] = flag.Clone()
	return nil
}

func (s *MemFlagStore) Search(ctx context.Context, q Query) ([]*ModerationFlag, int, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()

	var hits []*ModerationFlag
	for _, f := range s.flags {
		if matchQuery(f, q) {
			hits = append(hits, f)
		}
	}
	slices.SortFunc(hits, func(a, b *ModerationFlag) int {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.After(b.CreatedAt) {
				return -1
			}
			return 1
		}
		// stable tiebreak for flags created in the same instant
		if a.ID > b.ID {
			return -1
		}
		return 1
	})

	total := len(hits)
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.PageSize
		if start > total {
			start = total
		}
		end := start + q.PageSize
		if end > total {
			end = total
		}
		hits = hits[start:end]
	}

	out := make([]*ModerationFlag, len(hits))
	for i, f := range hits {
		out[i] = f.Clone()
	}
	return out, total, nil
}

func matchQuery(f *ModerationFlag, q Query) bool {
	if !q.IncludeDeleted && f.Deleted() {
		return false
	}
	if q.Status != "" && f.Status != q.Status {
		return false
	}
	if q.Tier != "" && f.HighestTier != q.Tier {
		return false
	}
	if q.ReviewedBy != "" && f.ReviewedBy != q.ReviewedBy {
		return false
	}
	if q.CreatedBy != "" && f.CreatedBy != q.CreatedBy {
		return false
	}
	if q.Tag != "" && !slices.Contains(f.Tags(), q.Tag) {
		return false
	}
	return true
}
