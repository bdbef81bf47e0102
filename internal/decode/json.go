package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// decodeJSON reads one JSON document via the token stream so that object
// key order survives into the value tree. map-based unmarshalling would
// lose it and break deterministic flattening.
func decodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSONValue(dec)
	if err != nil {
		return Value{}, &DecodeError{Format: FormatJSON, Err: err}
	}

	if _, err := dec.Token(); err != io.EOF {
		return Value{}, &DecodeError{Format: FormatJSON, Err: fmt.Errorf("trailing data after document")}
	}

	return v, nil
}

func readJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, fmt.Errorf("empty document")
		}
		return Value{}, err
	}
	return jsonValue(dec, tok)
}

func jsonValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q: %w", t.String(), err)
		}
		return Value{Kind: KindNumber, Number: f}, nil
	case string:
		return Value{Kind: KindText, Text: t}, nil
	case json.Delim:
		switch t {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func readJSONObject(dec *json.Decoder) (Value, error) {
	obj := Value{Kind: KindMapping}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
		}
		val, err := readJSONValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Mapping = setMember(obj.Mapping, key, val)
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return obj, nil
}

func readJSONArray(dec *json.Decoder) (Value, error) {
	arr := Value{Kind: KindSequence}
	for dec.More() {
		val, err := readJSONValue(dec)
		if err != nil {
			return Value{}, err
		}
		arr.Sequence = append(arr.Sequence, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return arr, nil
}
