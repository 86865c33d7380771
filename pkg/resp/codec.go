package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// MaxSize bounds a declared bulk length or array count (512 MiB).
const MaxSize = 512 * 1024 * 1024

// Type markers.
const (
	markerStatus = '+'
	markerError  = '-'
	markerInt    = ':'
	markerData   = '$'
	markerBulk   = '*'
)

var (
	crlf           = []byte("\r\n")
	nullBulkBytes  = []byte("$-1\r\n")
	nullArrayBytes = []byte("*-1\r\n")
)

// minElemSize is the shortest possible encoding of any value ("+\r\n").
const minElemSize = 3

// Decode parses exactly one value starting at buf[start].
//
// On success it returns the value and next, the offset just past it, so
// next-start bytes were consumed. When buf does not yet hold a complete
// value it returns next == 0 and a nil error: the caller should retry from
// the same start once more bytes are available. An array is incomplete as
// soon as any of its elements is, even if earlier elements were complete.
//
// Any structural violation returns an error wrapping ErrProtocol and no
// value.
func Decode(buf []byte, start int) (Value, int, error) {
	if start < 0 || start > len(buf) {
		return Value{}, 0, fmt.Errorf("%w: start offset %d outside buffer of %d bytes", ErrProtocol, start, len(buf))
	}
	if start == len(buf) {
		return Value{}, 0, nil
	}

	marker := buf[start]
	switch marker {
	case markerStatus, markerError, markerInt, markerData, markerBulk:
	default:
		return Value{}, 0, fmt.Errorf("%w: invalid type marker %q", ErrProtocol, marker)
	}

	line, next, err := readLine(buf, start+1)
	if err != nil || next == 0 {
		return Value{}, 0, err
	}

	switch marker {
	case markerStatus, markerError:
		if !utf8.Valid(line) {
			return Value{}, 0, fmt.Errorf("%w: invalid utf-8 in %q line", ErrProtocol, marker)
		}
		if marker == markerStatus {
			return StatusValue(string(line)), next, nil
		}
		return ErrorValue(string(line)), next, nil

	case markerInt:
		n, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return Value{}, 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
		}
		return IntValue(n), next, nil

	case markerData:
		n, err := parseLength(line, "bulk length")
		if err != nil {
			return Value{}, 0, err
		}
		if n == -1 {
			return NilValue(), next, nil
		}
		end := next + int(n)
		if len(buf)-next < int(n)+len(crlf) {
			return Value{}, 0, nil
		}
		if buf[end] != '\r' || buf[end+1] != '\n' {
			return Value{}, 0, fmt.Errorf("%w: bulk string of %d bytes not terminated by CRLF", ErrProtocol, n)
		}
		data := make([]byte, n)
		copy(data, buf[next:end])
		return DataValue(data), end + len(crlf), nil

	default: // markerBulk
		n, err := parseLength(line, "array length")
		if err != nil {
			return Value{}, 0, err
		}
		if n == -1 {
			return NullArrayValue(), next, nil
		}
		// Do not trust the declared count for preallocation.
		capHint := int(n)
		if avail := (len(buf) - next) / minElemSize; capHint > avail {
			capHint = avail
		}
		elems := make([]Value, 0, capHint)
		off := next
		for i := int64(0); i < n; i++ {
			v, nx, err := Decode(buf, off)
			if err != nil {
				return Value{}, 0, err
			}
			if nx == 0 {
				return Value{}, 0, nil
			}
			elems = append(elems, v)
			off = nx
		}
		return BulkValue(elems...), off, nil
	}
}

// readLine returns the bytes between pos and the next CRLF, and the offset
// following the CRLF. next is 0 when no LF has arrived yet.
func readLine(buf []byte, pos int) (line []byte, next int, err error) {
	idx := bytes.IndexByte(buf[pos:], '\n')
	if idx < 0 {
		return nil, 0, nil
	}
	lf := pos + idx
	if idx == 0 || buf[lf-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: invalid CRLF in %q", ErrProtocol, buf[pos-1:lf+1])
	}
	return buf[pos : lf-1], lf + 1, nil
}

func parseLength(line []byte, what string) (int64, error) {
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrProtocol, what, line)
	}
	if n < -1 || n > MaxSize {
		return 0, fmt.Errorf("%w: %s %d not in [-1, %d]", ErrLengthOutOfRange, what, n, MaxSize)
	}
	return n, nil
}

// Encode returns the wire form of v. Nil always encodes as the null bulk
// string.
func Encode(v Value) []byte {
	return AppendEncode(make([]byte, 0, encodedSizeHint(v)), v)
}

// AppendEncode appends the wire form of v to dst and returns the extended
// slice.
func AppendEncode(dst []byte, v Value) []byte {
	switch v.kind {
	case KindNil:
		return append(dst, nullBulkBytes...)
	case KindNullArray:
		return append(dst, nullArrayBytes...)
	case KindStatus:
		dst = append(dst, markerStatus)
		dst = append(dst, v.str...)
		return append(dst, crlf...)
	case KindError:
		dst = append(dst, markerError)
		dst = append(dst, v.str...)
		return append(dst, crlf...)
	case KindInt:
		dst = append(dst, markerInt)
		dst = strconv.AppendInt(dst, v.num, 10)
		return append(dst, crlf...)
	case KindData:
		dst = append(dst, markerData)
		dst = strconv.AppendInt(dst, int64(len(v.data)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.data...)
		return append(dst, crlf...)
	case KindBulk:
		dst = append(dst, markerBulk)
		dst = strconv.AppendInt(dst, int64(len(v.array)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.array {
			dst = AppendEncode(dst, e)
		}
		return dst
	default:
		return dst
	}
}

// EncodeCommand encodes args as an array of bulk strings, the form clients
// use for requests.
//
//	EncodeCommand("SET", "a", "1") == "*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n"
func EncodeCommand(args ...string) []byte {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = StringValue(a)
	}
	return Encode(BulkValue(elems...))
}

func encodedSizeHint(v Value) int {
	switch v.kind {
	case KindData:
		return len(v.data) + 16
	case KindBulk:
		n := 16
		for _, e := range v.array {
			n += encodedSizeHint(e)
		}
		return n
	default:
		return len(v.str) + 24
	}
}
