package pipeline

import (
	"context"
	"sync"
)

// Visited is the set of homepages already claimed this run. LoadOrStore must
// be atomic: of two workers racing on the same homepage, exactly one sees
// seen=false and proceeds to fetch.
type Visited interface {
	LoadOrStore(ctx context.Context, homepage string) (seen bool, err error)
}

type memoryVisited struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryVisited returns the default in-process visited set. It lives for
// one batch run and is discarded afterwards.
func NewMemoryVisited() Visited {
	return &memoryVisited{seen: make(map[string]struct{})}
}

func (v *memoryVisited) LoadOrStore(_ context.Context, homepage string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[homepage]; ok {
		return true, nil
	}
	v.seen[homepage] = struct{}{}
	return false, nil
}
