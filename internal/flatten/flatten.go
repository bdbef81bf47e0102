// Package flatten turns a decoded value tree into a flat list of metric
// name/value pairs. It owns the naming rules: path segments joined by
// underscores, ignore-key pruning, and sanitization of characters
// Prometheus-style names cannot carry.
package flatten

import (
	"strconv"
	"strings"

	"github.com/jpetrucciani/epimetheus/internal/decode"
)

// Separator joins path segments in metric names.
const Separator = "_"

// Pair is one flattened metric.
type Pair struct {
	Name  string
	Value float64
}

// Flatten walks tree depth-first and emits one pair per numeric leaf.
// Mapping keys listed in ignore prune their whole subtree; sequence
// indices become decimal path segments and are never ignorable. Booleans
// coerce to 1/0, null and text leaves emit nothing. Flatten never fails:
// extraction is best-effort against heterogeneous documents, and output
// order is deterministic for a given tree and ignore set.
func Flatten(tree decode.Value, ignore []string, prefix string) []Pair {
	f := &flattener{
		ignore: make(map[string]struct{}, len(ignore)),
		prefix: prefix,
		index:  make(map[string]int),
	}
	for _, key := range ignore {
		f.ignore[key] = struct{}{}
	}
	f.walk(tree, nil)
	return f.pairs
}

type flattener struct {
	ignore map[string]struct{}
	prefix string
	pairs  []Pair
	index  map[string]int // name -> position in pairs
}

func (f *flattener) walk(v decode.Value, path []string) {
	switch v.Kind {
	case decode.KindMapping:
		for _, m := range v.Mapping {
			if _, skip := f.ignore[m.Key]; skip {
				continue
			}
			f.walk(m.Value, append(path, m.Key))
		}
	case decode.KindSequence:
		for i, elem := range v.Sequence {
			f.walk(elem, append(path, strconv.Itoa(i)))
		}
	case decode.KindNumber:
		f.emit(path, v.Number)
	case decode.KindBool:
		if v.Bool {
			f.emit(path, 1)
		} else {
			f.emit(path, 0)
		}
	}
	// Null and text leaves emit nothing.
}

// emit records one pair. When two paths collapse to the same sanitized
// name within a pass, the later value overwrites the earlier one in
// place (last write wins, first-visit position kept).
func (f *flattener) emit(path []string, value float64) {
	name := sanitize(f.prefix + strings.Join(path, Separator))
	if i, ok := f.index[name]; ok {
		f.pairs[i].Value = value
		return
	}
	f.index[name] = len(f.pairs)
	f.pairs = append(f.pairs, Pair{Name: name, Value: value})
}

// sanitize replaces every character outside [A-Za-z0-9_] with the
// separator and collapses separator runs. Case is preserved.
func sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	sep := false
	for _, r := range raw {
		ok := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		if r == '_' {
			if sep {
				continue
			}
			sep = true
		} else {
			sep = false
		}
		b.WriteByte(byte(r))
	}
	return b.String()
}
