package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/redif-go/pkg/resp"
)

// DefaultCapacity is the arena size used when NewReader is given a
// non-positive capacity (1 MiB).
const DefaultCapacity = 1024 * 1024

// Reader accumulates bytes from a stream and splits them into complete
// RESP values.
//
// Invariant: 0 <= n <= len(buf); only buf[:n] is ever decoded.
type Reader struct {
	buf []byte
	n   int

	frames []resp.Value
	head   int

	eof bool
}

// NewReader returns a Reader whose arena holds capacity bytes. The arena
// never grows: a single frame larger than capacity fails with
// ErrFrameTooLarge.
func NewReader(capacity int) *Reader {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Reader{buf: make([]byte, capacity)}
}

// Read pulls all bytes src offers without blocking and queues every
// complete value they finish.
//
// It returns the number of bytes transferred in this call. A source that
// reports would-block yields a nil error, even with zero bytes. A zero-byte
// transfer ends the call: it is ErrEndOfStream when nothing was transferred
// before it and success otherwise. Transport errors other than would-block
// and decode errors are returned as is.
func (r *Reader) Read(src io.Reader) (int, error) {
	total := 0
	for {
		if r.n == len(r.buf) {
			return total, fmt.Errorf("%w: %d bytes buffered without a complete frame", ErrFrameTooLarge, r.n)
		}

		n, err := src.Read(r.buf[r.n:])
		if n > 0 {
			r.n += n
			total += n
			if derr := r.decode(); derr != nil {
				return total, derr
			}
		}

		switch {
		case err == nil && n > 0:
			continue
		case err == nil, errors.Is(err, io.EOF):
			if total == 0 {
				return 0, ErrEndOfStream
			}
			r.eof = true
			return total, nil
		case isInterrupted(err):
			continue
		case isWouldBlock(err):
			return total, nil
		default:
			return total, err
		}
	}
}

// decode queues every complete value at the front of the arena and moves
// the unconsumed tail to offset 0.
func (r *Reader) decode() error {
	off := 0
	for off < r.n {
		v, next, err := resp.Decode(r.buf[:r.n], off)
		if err != nil {
			return err
		}
		if next == 0 {
			break
		}
		r.frames = append(r.frames, v)
		off = next
	}
	if off > 0 {
		r.n = copy(r.buf, r.buf[off:r.n])
	}
	return nil
}

// Next removes and returns the oldest completed value. It reports false
// when no value is queued. Next never performs I/O.
func (r *Reader) Next() (resp.Value, bool) {
	if r.head >= len(r.frames) {
		return resp.Value{}, false
	}
	v := r.frames[r.head]
	r.frames[r.head] = resp.Value{}
	r.head++
	if r.head == len(r.frames) {
		r.frames = r.frames[:0]
		r.head = 0
	}
	return v, true
}

// Queued returns the number of completed values not yet taken by Next.
func (r *Reader) Queued() int { return len(r.frames) - r.head }

// Buffered returns the bytes of the incomplete frame held in the arena.
// The slice aliases the arena and is only valid until the next Read.
func (r *Reader) Buffered() []byte { return r.buf[:r.n] }

// Cap returns the arena capacity.
func (r *Reader) Cap() int { return len(r.buf) }

// AtEOF reports whether a Read observed the end of the stream after having
// transferred data in the same call. The peer will send nothing more.
func (r *Reader) AtEOF() bool { return r.eof }
