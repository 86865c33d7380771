package output

import (
	"encoding/base64"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/yndnr/redif-go/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter writes one reply to w.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatRaw, "":
		return RawFormatter{}, nil
	case FormatJSON:
		return JSONFormatter{}, nil
	case FormatYAML:
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("output: unknown format %q (want raw, json or yaml)", format)
	}
}

// Document converts v into plain Go values for structured encoders:
//
//	Nil, null array   -> nil
//	Int               -> int64
//	Data (UTF-8)      -> string
//	Data (binary)     -> {"base64": "..."}
//	Status            -> string
//	Error             -> {"error": "..."}
//	Bulk              -> []any
func Document(v resp.Value) any {
	switch v.Kind() {
	case resp.KindInt:
		return v.Int()
	case resp.KindData:
		if utf8.Valid(v.Bytes()) {
			return string(v.Bytes())
		}
		return map[string]any{"base64": base64.StdEncoding.EncodeToString(v.Bytes())}
	case resp.KindStatus:
		return v.Str()
	case resp.KindError:
		return map[string]any{"error": v.Str()}
	case resp.KindBulk:
		elems := v.Array()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = Document(e)
		}
		return out
	default:
		return nil
	}
}
