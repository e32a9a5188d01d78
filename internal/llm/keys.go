package llm

import (
	"errors"
	"sync/atomic"
)

// keyRing cycles through a fixed credential list. The counter is shared
// by every concurrent caller of the owning provider, so rotation stays
// round-robin across the whole process: best-effort fairness, not a
// guarantee that two concurrent attempts never land on the same key.
type keyRing struct {
	keys []string
	next atomic.Int64
}

func newKeyRing(keys []string) (*keyRing, error) {
	if len(keys) == 0 {
		return nil, errors.New("key ring requires at least one key")
	}
	return &keyRing{keys: keys}, nil
}

// take returns the next key and its index, advancing the shared counter
// by exactly one.
func (r *keyRing) take() (string, int) {
	n := r.next.Add(1) - 1
	i := int(n % int64(len(r.keys)))
	return r.keys[i], i
}

func (r *keyRing) size() int { return len(r.keys) }
