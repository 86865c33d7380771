package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNil is the null bulk string ($-1). It is the zero Kind.
	KindNil Kind = iota
	// KindNullArray is the null array (*-1).
	KindNullArray
	// KindInt is a signed 64-bit integer.
	KindInt
	// KindData is a binary-safe bulk string.
	KindData
	// KindBulk is an ordered array of values.
	KindBulk
	// KindStatus is a simple status line.
	KindStatus
	// KindError is an error line.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNullArray:
		return "null-array"
	case KindInt:
		return "int"
	case KindData:
		return "data"
	case KindBulk:
		return "bulk"
	case KindStatus:
		return "status"
	case KindError:
		return "error"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable RESP value. The zero Value is Nil.
//
// Values hold their payload by reference; callers must not modify a slice
// after handing it to a constructor or after obtaining it from an accessor.
type Value struct {
	kind  Kind
	num   int64
	str   string
	data  []byte
	array []Value
}

// NilValue returns the null bulk string.
func NilValue() Value { return Value{} }

// NullArrayValue returns the null array.
func NullArrayValue() Value { return Value{kind: KindNullArray} }

// IntValue returns an integer value.
func IntValue(n int64) Value { return Value{kind: KindInt, num: n} }

// DataValue returns a bulk string holding b. A nil b is an empty string,
// not Nil.
func DataValue(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindData, data: b}
}

// StringValue returns a bulk string holding the bytes of s.
func StringValue(s string) Value { return Value{kind: KindData, data: []byte(s)} }

// BulkValue returns an array of the given elements. With no elements it is
// the empty array, not NullArray.
func BulkValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindBulk, array: elems}
}

// StatusValue returns a status line. s must not contain CR or LF.
func StatusValue(s string) Value { return Value{kind: KindStatus, str: s} }

// ErrorValue returns an error line. s must not contain CR or LF.
func ErrorValue(s string) Value { return Value{kind: KindError, str: s} }

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is Nil or NullArray.
func (v Value) IsNil() bool { return v.kind == KindNil || v.kind == KindNullArray }

// Int returns the integer payload, or 0 when v is not an Int.
func (v Value) Int() int64 { return v.num }

// Bytes returns the Data payload, or an empty slice for any other kind.
func (v Value) Bytes() []byte {
	if v.kind != KindData {
		return []byte{}
	}
	return v.data
}

// Array returns the Bulk elements, or nil for any other kind.
func (v Value) Array() []Value {
	if v.kind != KindBulk {
		return nil
	}
	return v.array
}

// Str returns the Status or Error text, or "" for any other kind.
func (v Value) Str() string { return v.str }

// Text returns a best-effort textual view: the literal text of Status,
// Error and Int values, and the UTF-8 contents of Data. Non-UTF-8 Data
// yields ErrInvalidUTF8; Nil, NullArray and Bulk yield ErrNotText.
func (v Value) Text() (string, error) {
	switch v.kind {
	case KindStatus, KindError:
		return v.str, nil
	case KindInt:
		return strconv.FormatInt(v.num, 10), nil
	case KindData:
		if !utf8.Valid(v.data) {
			return "", ErrInvalidUTF8
		}
		return string(v.data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotText, v.kind)
	}
}

// Equal reports whether v and o are structurally equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil, KindNullArray:
		return true
	case KindInt:
		return v.num == o.num
	case KindData:
		return bytes.Equal(v.data, o.data)
	case KindStatus, KindError:
		return v.str == o.str
	case KindBulk:
		if len(v.array) != len(o.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].Equal(o.array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders v for debugging.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.kind {
	case KindNil:
		sb.WriteString("nil")
	case KindNullArray:
		sb.WriteString("null-array")
	case KindInt:
		sb.WriteString("int(")
		sb.WriteString(strconv.FormatInt(v.num, 10))
		sb.WriteByte(')')
	case KindData:
		if utf8.Valid(v.data) {
			sb.WriteString("string-data(")
			sb.WriteString(strconv.Quote(string(v.data)))
		} else {
			sb.WriteString("binary-data(")
			fmt.Fprintf(sb, "%v", v.data)
		}
		sb.WriteByte(')')
	case KindBulk:
		sb.WriteString("bulk(")
		for i, e := range v.array {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.format(sb)
		}
		sb.WriteByte(')')
	case KindStatus:
		sb.WriteString("status(")
		sb.WriteString(strconv.Quote(v.str))
		sb.WriteByte(')')
	case KindError:
		sb.WriteString("error(")
		sb.WriteString(strconv.Quote(v.str))
		sb.WriteByte(')')
	default:
		sb.WriteString(v.kind.String())
	}
}
