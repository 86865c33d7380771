package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/redif-go/pkg/resp"
)

// RawFormatter renders replies the way redis-cli does on a terminal.
type RawFormatter struct{}

// Format writes v followed by a newline.
func (RawFormatter) Format(w io.Writer, v resp.Value) error {
	var b strings.Builder
	writeRaw(&b, v, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

// writeRaw renders v starting at the current column. Continuation lines
// of nested arrays are indented to line up under their parent's label.
func writeRaw(b *strings.Builder, v resp.Value, indent int) {
	switch v.Kind() {
	case resp.KindNil, resp.KindNullArray:
		b.WriteString("(nil)")
	case resp.KindInt:
		b.WriteString("(integer) ")
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case resp.KindData:
		b.WriteString(strconv.Quote(string(v.Bytes())))
	case resp.KindStatus:
		b.WriteString(v.Str())
	case resp.KindError:
		b.WriteString("(error) ")
		b.WriteString(v.Str())
	case resp.KindBulk:
		elems := v.Array()
		if len(elems) == 0 {
			b.WriteString("(empty array)\n")
			return
		}
		width := len(strconv.Itoa(len(elems)))
		for i, e := range elems {
			if i > 0 {
				b.WriteString(strings.Repeat(" ", indent))
			}
			label := strconv.Itoa(i + 1)
			label = strings.Repeat(" ", width-len(label)) + label + ") "
			b.WriteString(label)
			writeRaw(b, e, indent+len(label))
		}
		return
	}
	b.WriteByte('\n')
}
