// Package hash provides the xxHash64 helpers used for cache sharding and
// delta block fingerprinting.
package hash

import "github.com/cespare/xxhash/v2"

// Path computes the xxHash64 of a topic path, used to pick a cache shard.
func Path(path string) uint64 {
	return xxhash.Sum64String(path)
}

// Block computes the xxHash64 fingerprint of a block of bytes.
func Block(data []byte) uint64 {
	return xxhash.Sum64(data)
}
