package decode

// Kind discriminates the variants of a decoded Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindSequence
	KindMapping
)

// Value is one node of the format-agnostic document tree. Exactly the
// fields for its Kind are meaningful; the rest stay zero.
type Value struct {
	Kind     Kind
	Bool     bool
	Number   float64
	Text     string
	Sequence []Value
	Mapping  []Member
}

// Member is one key/value entry of a mapping. Mappings are kept as
// ordered member slices so traversal order matches document order.
type Member struct {
	Key   string
	Value Value
}

// setMember inserts or replaces a key while preserving the position of
// its first occurrence. Keys are unique per mapping level.
func setMember(members []Member, key string, value Value) []Member {
	for i := range members {
		if members[i].Key == key {
			members[i].Value = value
			return members
		}
	}
	return append(members, Member{Key: key, Value: value})
}
