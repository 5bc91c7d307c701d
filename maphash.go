// Completion: 100% - Probe hashing complete
package main

import "github.com/dolthub/maphash"

// maphashSeed seeds the open-addressing probe sequence used by
// FlexibleDict (containers.go). Grounded on the pack's own use of
// github.com/dolthub/maphash for swiss-map-style probe hashing: unlike
// StrView.Hash (the canonical FNV-1a used for dict-key equality and pinned
// exactly by spec §8), probe placement has no externally observable
// contract, so a faster hash with a fresh seed per dict is appropriate here.
type maphashSeed struct {
	hasher maphash.Hasher[string]
}

func newMaphashSeed() maphashSeed {
	return maphashSeed{hasher: maphash.NewHasher[string]()}
}

func probeHash(seed maphashSeed, key StrView) uint64 {
	return seed.hasher.Hash(key.String())
}
