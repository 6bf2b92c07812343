// Package state tracks which messages a run has already seen.
package state

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"
)

// Hash returns the base64 SHA-256 digest identifying a raw message.
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Seen is a set of message hashes. The zero value is not usable; call
// NewSeen.
type Seen struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
}

func NewSeen() *Seen {
	return &Seen{hashes: make(map[string]struct{})}
}

// Mark records hash and reports whether it was recorded before.
func (s *Seen) Mark(hash string) (dup bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup = s.hashes[hash]; !dup {
		s.hashes[hash] = struct{}{}
	}
	return dup
}

// Len returns the number of distinct messages recorded.
func (s *Seen) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}
