package resp

import (
	"errors"
	"testing"
)

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		want    string
		wantErr error
	}{
		{name: "status", value: StatusValue("OK"), want: "OK"},
		{name: "error", value: ErrorValue("ERR x"), want: "ERR x"},
		{name: "int", value: IntValue(-7), want: "-7"},
		{name: "utf-8 data", value: StringValue("héllo"), want: "héllo"},
		{name: "binary data", value: DataValue([]byte{0xff, 0xfe}), wantErr: ErrInvalidUTF8},
		{name: "nil", value: NilValue(), wantErr: ErrNotText},
		{name: "null array", value: NullArrayValue(), wantErr: ErrNotText},
		{name: "bulk", value: BulkValue(StringValue("a")), wantErr: ErrNotText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.Text()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Text() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Text() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "nil vs nil", a: NilValue(), b: Value{}, want: true},
		{name: "nil vs empty data", a: NilValue(), b: StringValue(""), want: false},
		{name: "nil vs null array", a: NilValue(), b: NullArrayValue(), want: false},
		{name: "status vs error same text", a: StatusValue("x"), b: ErrorValue("x"), want: false},
		{name: "data equal", a: StringValue("abc"), b: DataValue([]byte("abc")), want: true},
		{name: "int differ", a: IntValue(1), b: IntValue(2), want: false},
		{name: "bulk length differ", a: BulkValue(IntValue(1)), b: BulkValue(), want: false},
		{
			name: "nested equal",
			a:    BulkValue(BulkValue(StringValue("a")), IntValue(3)),
			b:    BulkValue(BulkValue(StringValue("a")), IntValue(3)),
			want: true,
		},
		{
			name: "nested differ",
			a:    BulkValue(BulkValue(StringValue("a"))),
			b:    BulkValue(BulkValue(StringValue("b"))),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{NilValue(), "nil"},
		{NullArrayValue(), "null-array"},
		{IntValue(5), "int(5)"},
		{StringValue("x"), `string-data("x")`},
		{DataValue([]byte{0xff}), "binary-data([255])"},
		{StatusValue("OK"), `status("OK")`},
		{ErrorValue("bad"), `error("bad")`},
		{BulkValue(IntValue(1), StringValue("a")), `bulk(int(1), string-data("a"))`},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValue_Accessors(t *testing.T) {
	if got := IntValue(9).Int(); got != 9 {
		t.Errorf("Int() = %d", got)
	}
	if got := StatusValue("x").Bytes(); len(got) != 0 {
		t.Errorf("Bytes() on status = %q, want empty", got)
	}
	if got := StringValue("x").Array(); got != nil {
		t.Errorf("Array() on data = %v, want nil", got)
	}
	if !NullArrayValue().IsNil() || !NilValue().IsNil() || BulkValue().IsNil() {
		t.Error("IsNil() mismatch")
	}
	if KindBulk.String() != "bulk" {
		t.Errorf("KindBulk.String() = %q", KindBulk.String())
	}
}
