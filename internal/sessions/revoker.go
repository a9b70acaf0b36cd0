// Package sessions tracks revoked session tokens so a logged-out token stops
// working before it expires.
package sessions

import (
	"context"
	"sync"
	"time"
)

type Revoker interface {
	// Revoke marks the token id as revoked for ttl, which should cover the
	// token's remaining lifetime.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker keeps revocations in process memory. It is used when no redis
// address is configured.
type MemoryRevoker struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{now: time.Now, revoked: make(map[string]time.Time)}
}

func (revoker *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}

	revoker.mu.Lock()
	defer revoker.mu.Unlock()

	now := revoker.now()
	revoker.pruneLocked(now)
	revoker.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (revoker *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	revoker.mu.Lock()
	defer revoker.mu.Unlock()

	expiresAt, ok := revoker.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !revoker.now().Before(expiresAt) {
		delete(revoker.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (revoker *MemoryRevoker) pruneLocked(now time.Time) {
	for tokenID, expiresAt := range revoker.revoked {
		if !now.Before(expiresAt) {
			delete(revoker.revoked, tokenID)
		}
	}
}
