// Package hexdump renders byte slices in the classic offset / hex / ASCII
// layout for debug logging.
package hexdump

import (
	"fmt"
	"strings"
)

// BytesPerLine is the number of input bytes rendered on each line.
const BytesPerLine = 16

// Lines returns one line per BytesPerLine bytes of b:
//
//	00000000  2B 4F 4B 0D 0A                                    +OK..
//
// Bytes outside printable ASCII are shown as '.'.
func Lines(b []byte) []string {
	lines := make([]string, 0, (len(b)+BytesPerLine-1)/BytesPerLine)
	for off := 0; off < len(b); off += BytesPerLine {
		end := off + BytesPerLine
		if end > len(b) {
			end = len(b)
		}
		lines = append(lines, line(off, b[off:end]))
	}
	return lines
}

// Dump joins Lines with newlines, truncating input beyond limit bytes when
// limit is positive.
func Dump(b []byte, limit int) string {
	truncated := 0
	if limit > 0 && len(b) > limit {
		truncated = len(b) - limit
		b = b[:limit]
	}
	s := strings.Join(Lines(b), "\n")
	if truncated > 0 {
		s += fmt.Sprintf("\n... %d more bytes", truncated)
	}
	return s
}

func line(off int, chunk []byte) string {
	var hex, ascii strings.Builder
	for i, c := range chunk {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02X", c)
		if c >= 0x20 && c < 0x7f {
			ascii.WriteByte(c)
		} else {
			ascii.WriteByte('.')
		}
	}
	return fmt.Sprintf("%08x  %-47s  %s", off, hex.String(), ascii.String())
}
