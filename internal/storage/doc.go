// Package storage provides the key-value engines behind the example store.
//
// Two engines implement KV:
//
//   - MemoryEngine: a sharded concurrent map, lost on restart
//   - BadgerEngine: Badger v3 on disk, with a periodic value-log GC loop
//
// Open selects an engine from Config.Engine.
package storage
