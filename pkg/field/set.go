package field

import "strings"

// Set is an ordered, read-only collection of definitions keyed by bare
// placeholder key.
type Set struct {
	defs  []Definition
	index map[string]int
}

// NewSet builds a Set preserving the given order. A later definition with the
// same key replaces the earlier one without moving it.
func NewSet(defs ...Definition) Set {
	set := Set{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		key := def.Key()
		if key == "" {
			continue
		}
		if pos, ok := set.index[key]; ok {
			set.defs[pos] = def
			continue
		}
		set.index[key] = len(set.defs)
		set.defs = append(set.defs, def)
	}
	return set
}

// Get resolves a definition by exact key, falling back to a case-insensitive
// match in set order.
func (s Set) Get(key string) (Definition, bool) {
	key = BareKey(key)
	if pos, ok := s.index[key]; ok {
		return s.defs[pos], true
	}
	for _, def := range s.defs {
		if strings.EqualFold(def.Key(), key) {
			return def, true
		}
	}
	return Definition{}, false
}

// Has reports whether a definition exists for key.
func (s Set) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// All returns a copy of the definitions in set order.
func (s Set) All() []Definition {
	return append([]Definition(nil), s.defs...)
}

// Keys returns the bare keys in set order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.defs))
	for _, def := range s.defs {
		keys = append(keys, def.Key())
	}
	return keys
}

// Len returns the number of definitions.
func (s Set) Len() int {
	return len(s.defs)
}
