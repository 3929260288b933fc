package field

import "strings"

// ResolveChildFields returns the definitions revealed by the selected option
// of a radio group. Child keys without a definition are dropped. Non-radio
// fields, unmatched selections and options without children all yield nil.
func ResolveChildFields(def Definition, selected string, set Set) []Definition {
	group, ok := def.RadioGroup()
	if !ok {
		return nil
	}
	selected = BareKey(selected)
	if selected == "" {
		return nil
	}

	for _, option := range group.Options {
		if !strings.EqualFold(option.Key(), selected) {
			continue
		}
		if len(option.ChildFields) == 0 {
			return nil
		}
		out := make([]Definition, 0, len(option.ChildFields))
		for _, child := range option.ChildFields {
			if childDef, ok := set.Get(child); ok {
				out = append(out, childDef)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
