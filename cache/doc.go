// Package cache implements the per-session update-value cache: the last
// value successfully sent for each topic path, kept so that subsequent
// updates can be transmitted as deltas against a known baseline.
//
// Entries appear on the first successful send for a path, are replaced on
// every later send, and disappear only through explicit invalidation
// (Remove with a topic selector, or Clear) or by discarding the cache with
// its session. There is no TTL and no implicit eviction.
//
// The cache is sharded by path hash and each entry carries its own lock, so
// updates to unrelated topics never serialize against each other, while
// Update lets a caller hold one path's lock across the whole
// read-baseline / generate-delta / store-value sequence.
package cache
