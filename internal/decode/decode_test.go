package decode_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jpetrucciani/epimetheus/internal/decode"
)

func mappingKeys(v decode.Value) []string {
	keys := make([]string, 0, len(v.Mapping))
	for _, m := range v.Mapping {
		keys = append(keys, m.Key)
	}
	return keys
}

func TestDecodeJSONPreservesKeyOrder(t *testing.T) {
	v, err := decode.Decode([]byte(`{"b": 1, "a": 2, "c": 3}`), decode.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"b", "a", "c"}
	if got := mappingKeys(v); !reflect.DeepEqual(got, want) {
		t.Errorf("wrong key order: got %v, want %v", got, want)
	}
}

func TestDecodeJSONTypes(t *testing.T) {
	input := `{"n": 1.5, "s": "x", "b": true, "z": null, "arr": [1, "2"], "obj": {"k": 0}}`
	v, err := decode.Decode([]byte(input), decode.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decode.Value{Kind: decode.KindMapping, Mapping: []decode.Member{
		{Key: "n", Value: decode.Value{Kind: decode.KindNumber, Number: 1.5}},
		{Key: "s", Value: decode.Value{Kind: decode.KindText, Text: "x"}},
		{Key: "b", Value: decode.Value{Kind: decode.KindBool, Bool: true}},
		{Key: "z", Value: decode.Value{Kind: decode.KindNull}},
		{Key: "arr", Value: decode.Value{Kind: decode.KindSequence, Sequence: []decode.Value{
			{Kind: decode.KindNumber, Number: 1},
			{Kind: decode.KindText, Text: "2"},
		}}},
		{Key: "obj", Value: decode.Value{Kind: decode.KindMapping, Mapping: []decode.Member{
			{Key: "k", Value: decode.Value{Kind: decode.KindNumber, Number: 0}},
		}}},
	}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("wrong tree:\n got:  %#v\n want: %#v", v, want)
	}
}

func TestDecodeJSONDuplicateKeyKeepsLastValue(t *testing.T) {
	v, err := decode.Decode([]byte(`{"a": 1, "a": 2}`), decode.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Mapping) != 1 {
		t.Fatalf("expected one member, got %d", len(v.Mapping))
	}
	if got := v.Mapping[0].Value.Number; got != 2 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"a":`},
		{"trailing data", `{} {}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode.Decode([]byte(tt.input), decode.FormatJSON)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var decodeErr *decode.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("expected *DecodeError, got %T", err)
			}
		})
	}
}

func TestDecodeYAMLPreservesKeyOrder(t *testing.T) {
	input := "b: 1\na: 2\nc: 3\n"
	v, err := decode.Decode([]byte(input), decode.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"b", "a", "c"}
	if got := mappingKeys(v); !reflect.DeepEqual(got, want) {
		t.Errorf("wrong key order: got %v, want %v", got, want)
	}
}

func TestDecodeYAMLScalars(t *testing.T) {
	input := "num: 2.5\ncount: 3\nok: true\nnothing: ~\nname: web\n"
	v, err := decode.Decode([]byte(input), decode.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decode.Value{Kind: decode.KindMapping, Mapping: []decode.Member{
		{Key: "num", Value: decode.Value{Kind: decode.KindNumber, Number: 2.5}},
		{Key: "count", Value: decode.Value{Kind: decode.KindNumber, Number: 3}},
		{Key: "ok", Value: decode.Value{Kind: decode.KindBool, Bool: true}},
		{Key: "nothing", Value: decode.Value{Kind: decode.KindNull}},
		{Key: "name", Value: decode.Value{Kind: decode.KindText, Text: "web"}},
	}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("wrong tree:\n got:  %#v\n want: %#v", v, want)
	}
}

func TestDecodeYAMLNested(t *testing.T) {
	input := "outer:\n  inner:\n    - 1\n    - 2\n"
	v, err := decode.Decode([]byte(input), decode.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inner := v.Mapping[0].Value.Mapping[0].Value
	if inner.Kind != decode.KindSequence || len(inner.Sequence) != 2 {
		t.Fatalf("expected two-element sequence, got %#v", inner)
	}
	if inner.Sequence[1].Number != 2 {
		t.Errorf("got %v, want 2", inner.Sequence[1].Number)
	}
}

func TestDecodeYAMLEmptyDocument(t *testing.T) {
	v, err := decode.Decode(nil, decode.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != decode.KindNull {
		t.Errorf("expected null, got %#v", v)
	}
}

func TestDecodeYAMLMalformed(t *testing.T) {
	_, err := decode.Decode([]byte("a: [1,"), decode.FormatYAML)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var decodeErr *decode.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeCSV(t *testing.T) {
	input := "a,b\n1,x\n2.5,3\n"
	v, err := decode.Decode([]byte(input), decode.FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decode.Value{Kind: decode.KindSequence, Sequence: []decode.Value{
		{Kind: decode.KindMapping, Mapping: []decode.Member{
			{Key: "a", Value: decode.Value{Kind: decode.KindNumber, Number: 1}},
			{Key: "b", Value: decode.Value{Kind: decode.KindText, Text: "x"}},
		}},
		{Kind: decode.KindMapping, Mapping: []decode.Member{
			{Key: "a", Value: decode.Value{Kind: decode.KindNumber, Number: 2.5}},
			{Key: "b", Value: decode.Value{Kind: decode.KindNumber, Number: 3}},
		}},
	}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("wrong tree:\n got:  %#v\n want: %#v", v, want)
	}
}

func TestDecodeCSVSkipsMalformedRows(t *testing.T) {
	// The second body row has too few columns and must be skipped
	// without aborting the rest of the file.
	input := "a,b\n1,x\n2\n4,5\n"
	v, err := decode.Decode([]byte(input), decode.FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(v.Sequence) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(v.Sequence))
	}
	if got := v.Sequence[1].Mapping[0].Value.Number; got != 4 {
		t.Errorf("got %v, want 4", got)
	}
}

func TestDecodeCSVRequiresHeader(t *testing.T) {
	_, err := decode.Decode(nil, decode.FormatCSV)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var decodeErr *decode.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := decode.Decode([]byte("{}"), decode.FormatUnknown)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  decode.Format
		ok    bool
	}{
		{"json", decode.FormatJSON, true},
		{"yaml", decode.FormatYAML, true},
		{"yml", decode.FormatYAML, true},
		{"csv", decode.FormatCSV, true},
		{"toml", decode.FormatUnknown, false},
		{"", decode.FormatUnknown, false},
	}
	for _, tt := range tests {
		got, err := decode.ParseFormat(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("ParseFormat(%q) error = %v, want ok=%v", tt.input, err, tt.ok)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
