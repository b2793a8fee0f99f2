package service

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// keyLock serializes work per listing identifier using a fixed set of
// striped mutexes. The stripe is chosen by consistent hashing on the key, so
// all mutations of the same listing contend on the same mutex while distinct
// listings proceed in parallel (modulo stripe collisions).
type keyLock struct {
	stripes []sync.Mutex
}

// newKeyLock creates a keyLock with n stripes. If n <= 0, defaultStripes is
// used.
func newKeyLock(n int) *keyLock {
	if n <= 0 {
		n = defaultStripes
	}
	return &keyLock{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe owning key and returns its unlock function.
func (k *keyLock) Lock(key string) func() {
	mu := &k.stripes[k.stripeIndex(key)]
	mu.Lock()
	return mu.Unlock
}

// stripeIndex maps a key deterministically to a stripe index.
func (k *keyLock) stripeIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(k.stripes)))
}
