package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/redif-go/pkg/resp"
)

func render(t *testing.T, f Formatter, v resp.Value) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Format(&buf, v); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	return buf.String()
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  Format
		want    Formatter
		wantErr bool
	}{
		{"", RawFormatter{}, false},
		{FormatRaw, RawFormatter{}, false},
		{FormatJSON, JSONFormatter{}, false},
		{FormatYAML, YAMLFormatter{}, false},
		{"table", nil, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if f != tt.want {
				t.Errorf("NewFormatter() = %#v, want %#v", f, tt.want)
			}
		})
	}
}

// ============================================================================
// Raw
// ============================================================================

func TestRawFormatter(t *testing.T) {
	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"nil", resp.NilValue(), "(nil)\n"},
		{"null array", resp.NullArrayValue(), "(nil)\n"},
		{"int", resp.IntValue(-3), "(integer) -3\n"},
		{"data", resp.StringValue("foo"), "\"foo\"\n"},
		{"data escapes", resp.DataValue([]byte("a\r\n\x00")), "\"a\\r\\n\\x00\"\n"},
		{"status", resp.StatusValue("OK"), "OK\n"},
		{"error", resp.ErrorValue("too few arguments"), "(error) too few arguments\n"},
		{"empty array", resp.BulkValue(), "(empty array)\n"},
		{
			name: "flat array",
			v:    resp.BulkValue(resp.StringValue("a"), resp.IntValue(2), resp.NilValue()),
			want: "1) \"a\"\n2) (integer) 2\n3) (nil)\n",
		},
		{
			name: "nested array",
			v: resp.BulkValue(
				resp.StringValue("a"),
				resp.BulkValue(resp.StringValue("b"), resp.StringValue("c")),
			),
			want: "1) \"a\"\n2) 1) \"b\"\n   2) \"c\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, RawFormatter{}, tt.v); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRawFormatter_WideIndex(t *testing.T) {
	elems := make([]resp.Value, 10)
	for i := range elems {
		elems[i] = resp.IntValue(int64(i))
	}
	lines := strings.Split(strings.TrimSuffix(render(t, RawFormatter{}, resp.BulkValue(elems...)), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[0] != " 1) (integer) 0" || lines[9] != "10) (integer) 9" {
		t.Errorf("labels not aligned: %q, %q", lines[0], lines[9])
	}
}

// ============================================================================
// Structured
// ============================================================================

func sample() resp.Value {
	return resp.BulkValue(
		resp.StatusValue("OK"),
		resp.IntValue(7),
		resp.StringValue("text"),
		resp.DataValue([]byte{0xff, 0xfe}),
		resp.NilValue(),
		resp.ErrorValue("boom"),
	)
}

func TestDocument(t *testing.T) {
	want := []any{
		"OK",
		int64(7),
		"text",
		map[string]any{"base64": "//4="},
		nil,
		map[string]any{"error": "boom"},
	}
	if got := Document(sample()); !reflect.DeepEqual(got, want) {
		t.Errorf("Document() = %#v, want %#v", got, want)
	}
}

func TestJSONFormatter(t *testing.T) {
	out := render(t, JSONFormatter{}, sample())

	var got []any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 6 || got[0] != "OK" || got[1] != float64(7) || got[4] != nil {
		t.Errorf("decoded = %#v", got)
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("output is not indented")
	}
}

func TestYAMLFormatter(t *testing.T) {
	out := render(t, YAMLFormatter{}, sample())

	var got []any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(got) != 6 || got[0] != "OK" || got[1] != 7 || got[2] != "text" {
		t.Errorf("decoded = %#v", got)
	}
	if m, ok := got[5].(map[string]any); !ok || m["error"] != "boom" {
		t.Errorf("error element = %#v", got[5])
	}
}
