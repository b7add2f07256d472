package utils

import (
	"sync"
	"time"
)

// RevocationList remembers logged out token ids until the token would have
// expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *RevocationList) Revoke(jti string, until time.Time) {
	if jti == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.revoked[jti] = until
}

func (r *RevocationList) IsRevoked(jti string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	return ok && r.now().Before(until)
}

// Len reports the number of entries still held.
func (r *RevocationList) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.revoked)
}

func (r *RevocationList) prune() {
	now := r.now()
	for jti, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, jti)
		}
	}
}
