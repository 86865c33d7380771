package frame

import "io"

// Writer queues outbound bytes and writes them to a non-blocking
// destination as far as it accepts them.
type Writer struct {
	queue   [][]byte
	off     int // bytes of queue[0] already written
	pending int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Queue appends data to the outbound queue without writing. The Writer
// keeps a reference to data; callers must not modify it afterwards.
func (w *Writer) Queue(data []byte) {
	if len(data) == 0 {
		return
	}
	w.queue = append(w.queue, data)
	w.pending += len(data)
}

// Write queues data (which may be nil) and then flushes.
func (w *Writer) Write(dst io.Writer, data []byte) (int, error) {
	w.Queue(data)
	return w.Flush(dst)
}

// Flush writes queued bytes to dst in order until the queue is empty or dst
// would block. Would-block is not an error; the unwritten remainder stays
// queued for the next call. Any other error is returned with the count of
// bytes written before it.
func (w *Writer) Flush(dst io.Writer) (int, error) {
	total := 0
	for len(w.queue) > 0 {
		head := w.queue[0][w.off:]
		n, err := dst.Write(head)
		if n > 0 {
			total += n
			w.pending -= n
			w.off += n
			if w.off == len(w.queue[0]) {
				w.queue[0] = nil
				w.queue = w.queue[1:]
				w.off = 0
			}
		}
		switch {
		case err == nil && n == 0:
			return total, io.ErrShortWrite
		case err == nil:
			continue
		case isInterrupted(err):
			continue
		case isWouldBlock(err):
			return total, nil
		default:
			return total, err
		}
	}
	w.queue = nil
	return total, nil
}

// Pending returns the number of bytes not yet written.
func (w *Writer) Pending() int { return w.pending }

// Len returns the number of queued buffers, including a partially written
// one.
func (w *Writer) Len() int { return len(w.queue) }
