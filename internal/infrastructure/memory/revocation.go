package memory

import (
	"container/heap"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type revokedEntry struct {
	key       string
	expiresAt time.Time
}

// expiryHeap orders entries by expiry, earliest first.
type expiryHeap []revokedEntry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(revokedEntry)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// RevocationRegistry remembers revoked tokens in process memory until the
// token itself expires. Expired entries are purged on every call.
type RevocationRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time
	byExp   expiryHeap
	now     func() time.Time
}

func NewRevocationRegistry() *RevocationRegistry {
	return &RevocationRegistry{entries: map[string]time.Time{}, now: time.Now}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *RevocationRegistry) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.purge(now)
	if !expiresAt.After(now) {
		// already rejected by expiry
		return nil
	}
	key := tokenKey(token)
	if _, ok := r.entries[key]; ok {
		return nil
	}
	r.entries[key] = expiresAt
	heap.Push(&r.byExp, revokedEntry{key: key, expiresAt: expiresAt})
	return nil
}

func (r *RevocationRegistry) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purge(r.now())
	_, ok := r.entries[tokenKey(token)]
	return ok, nil
}

// Len reports how many revocations are still retained.
func (r *RevocationRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purge(r.now())
	return len(r.entries)
}

func (r *RevocationRegistry) purge(now time.Time) {
	for r.byExp.Len() > 0 && !r.byExp[0].expiresAt.After(now) {
		e := heap.Pop(&r.byExp).(revokedEntry)
		delete(r.entries, e.key)
	}
}
