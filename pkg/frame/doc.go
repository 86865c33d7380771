// Package frame turns a non-blocking byte stream into RESP frames and back.
//
// A Reader owns a fixed-capacity arena per connection. Each Read pulls as
// many bytes as the source will give without blocking, decodes every
// complete top-level value into a FIFO queue and compacts the unconsumed
// tail to the front of the arena. A Writer keeps the outbound bytes that the
// socket has not accepted yet and drains them on demand.
//
// Neither type is safe for concurrent use; both are meant to be owned by a
// single event-loop goroutine.
package frame
