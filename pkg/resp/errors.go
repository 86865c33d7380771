package resp

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol marks structurally invalid input. Every decode error wraps it.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLengthOutOfRange is returned when a declared bulk length or array
	// count lies outside [-1, MaxSize].
	ErrLengthOutOfRange = fmt.Errorf("%w: length out of range", ErrProtocol)

	// ErrNotText is returned by Value.Text for kinds with no textual form.
	ErrNotText = errors.New("resp: value has no text form")

	// ErrInvalidUTF8 is returned by Value.Text for Data that is not UTF-8.
	ErrInvalidUTF8 = errors.New("resp: data is not valid utf-8")
)
