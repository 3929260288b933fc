package sections

import (
	"strconv"
	"strings"
)

// HiddenGroupPrefixes mark fields whose values are owned by a merged or radio
// parent and that never render as independent inputs.
var HiddenGroupPrefixes = []string{"merged_hidden_", "radio_hidden_", "radio_child_"}

// IsHidden reports whether group carries a reserved hidden prefix.
func IsHidden(group string) bool {
	group = strings.TrimSpace(group)
	for _, prefix := range HiddenGroupPrefixes {
		if strings.HasPrefix(group, prefix) {
			return true
		}
	}
	return false
}

// ParseGroup splits a "name" or "name|colorIndex" tag. Missing or
// non-numeric indexes read as 0. The index is returned as parsed; callers
// reduce it against their palette.
func ParseGroup(tag string) (string, int) {
	tag = strings.TrimSpace(tag)
	name, rawIndex, found := strings.Cut(tag, "|")
	name = strings.TrimSpace(name)
	if !found {
		return name, 0
	}
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil {
		return name, 0
	}
	return name, index
}
