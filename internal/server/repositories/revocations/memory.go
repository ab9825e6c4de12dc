package revocations

import (
	"context"
	"sync"
	"time"
)

// nowFn is a seam for tests.
var nowFn = time.Now

// MemoryRepository keeps revocations in process. Used when no Redis address
// is configured.
type MemoryRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{revoked: make(map[string]time.Time)}
}

func (r *MemoryRepository) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := nowFn()

	r.mu.Lock()
	defer r.mu.Unlock()

	for k, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, k)
		}
	}
	r.revoked[jti] = now.Add(ttl)
	return nil
}

func (r *MemoryRepository) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	if !nowFn().Before(until) {
		delete(r.revoked, jti)
		return false, nil
	}
	return true, nil
}
