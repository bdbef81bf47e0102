package decode

import (
	"fmt"
	"strconv"

	"go.yaml.in/yaml/v4"
)

// decodeYAML parses one YAML document into the value tree. Decoding into
// yaml.Node keeps mapping keys in document order.
func decodeYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, &DecodeError{Format: FormatYAML, Err: err}
	}

	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Value{Kind: KindNull}, nil
		}
		node = node.Content[0]
	}
	if node.Kind == 0 {
		// Empty input parses to a zero node.
		return Value{Kind: KindNull}, nil
	}

	v, err := yamlValue(node)
	if err != nil {
		return Value{}, &DecodeError{Format: FormatYAML, Err: err}
	}
	return v, nil
}

func yamlValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias)

	case yaml.ScalarNode:
		return yamlScalar(node), nil

	case yaml.SequenceNode:
		seq := Value{Kind: KindSequence, Sequence: make([]Value, 0, len(node.Content))}
		for _, child := range node.Content {
			v, err := yamlValue(child)
			if err != nil {
				return Value{}, err
			}
			seq.Sequence = append(seq.Sequence, v)
		}
		return seq, nil

	case yaml.MappingNode:
		obj := Value{Kind: KindMapping}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			val, err := yamlValue(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			obj.Mapping = setMember(obj.Mapping, key.Value, val)
		}
		return obj, nil

	default:
		return Value{}, fmt.Errorf("unexpected node kind %d at line %d", node.Kind, node.Line)
	}
}

// yamlScalar maps a resolved scalar tag to a leaf value. Scalars the
// resolver tags as something other than null/bool/number stay text.
func yamlScalar(node *yaml.Node) Value {
	switch node.Tag {
	case "!!null":
		return Value{Kind: KindNull}
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return Value{Kind: KindText, Text: node.Value}
		}
		return Value{Kind: KindBool, Bool: b}
	case "!!int", "!!float":
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return Value{Kind: KindNumber, Number: f}
		}
		// Non-decimal int forms (0x10, 0o17) need base detection.
		if n, err := strconv.ParseInt(node.Value, 0, 64); err == nil {
			return Value{Kind: KindNumber, Number: float64(n)}
		}
		return Value{Kind: KindText, Text: node.Value}
	default:
		return Value{Kind: KindText, Text: node.Value}
	}
}
