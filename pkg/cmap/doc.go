// Package cmap provides a string-keyed concurrent map split into shards.
//
// Keys are assigned to shards by a seeded murmur3 hash. Each shard has its
// own RWMutex, so operations on keys in different shards do not contend.
//
// Usage:
//
//	m := cmap.New[[]byte]()
//	m.Set("key", []byte("value"))
//	val, ok := m.Get("key")
//
// Range and Keys lock one shard at a time and therefore do not observe a
// consistent snapshot of the whole map.
package cmap
