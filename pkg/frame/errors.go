package frame

import (
	"errors"
	"fmt"
	"io"
	"syscall"
)

var (
	// ErrEndOfStream is returned by Reader.Read when the peer closed the
	// stream before any byte was transferred in that call.
	ErrEndOfStream = fmt.Errorf("frame: end of stream: %w", io.EOF)

	// ErrFrameTooLarge is returned when the arena is full and still holds
	// no complete frame.
	ErrFrameTooLarge = errors.New("frame: frame exceeds reader capacity")

	// ErrWouldBlock may be returned by a source or destination to signal
	// that no progress is possible right now. EAGAIN and EWOULDBLOCK are
	// treated the same way.
	ErrWouldBlock = errors.New("frame: operation would block")
)

func isWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK)
}

func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}
