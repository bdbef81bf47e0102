// Package decode converts raw source bytes into a format-agnostic value
// tree. Decoding is a pure function of the input bytes and the declared
// format; all formats produce the same Value representation so the
// flattener never needs to know where a document came from.
package decode

import "fmt"

// Format identifies the wire format of a source document.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCSV     Format = "csv"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatUnknown, fmt.Errorf("unsupported format %q", s)
	}
}

// DecodeError reports a malformed document.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode converts raw bytes in the given format into a value tree.
func Decode(data []byte, format Format) (Value, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatCSV:
		return decodeCSV(data)
	default:
		return Value{}, &DecodeError{Format: format, Err: fmt.Errorf("unsupported format")}
	}
}
