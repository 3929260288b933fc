package compose

import (
	"strings"

	"github.com/goliatone/go-formpreview/pkg/field"
)

// DefaultRadioMark marks the selected option when it declares neither a value
// nor a label.
const DefaultRadioMark = "✓"

// SplitMergedValue splits raw on the literal separator and assigns the i-th part
// to the i-th key. Missing parts resolve to "" and extra parts are dropped. An
// empty separator assigns the whole value to the first key.
func SplitMergedValue(raw string, keys []string, separator string) map[string]string {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out
	}

	var parts []string
	switch {
	case raw == "":
	case separator == "":
		parts = []string{raw}
	default:
		parts = strings.Split(raw, separator)
	}

	for i, key := range keys {
		key = field.BareKey(key)
		if _, seen := out[key]; seen {
			continue
		}
		if i < len(parts) {
			out[key] = parts[i]
			continue
		}
		out[key] = ""
	}
	return out
}

// JoinMergedValue rebuilds the raw merged value from per-key values.
func JoinMergedValue(values map[string]string, keys []string, separator string) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, values[field.BareKey(key)])
	}
	return strings.Join(parts, separator)
}

// ExpandRadioGroupValue resolves the option matching selected to its marker and
// every other option to "". An unmatched selection leaves every option empty.
func ExpandRadioGroupValue(selected string, options []field.RadioOption) map[string]string {
	out := make(map[string]string, len(options))
	selected = field.BareKey(selected)

	matched := false
	for _, option := range options {
		key := option.Key()
		if key == "" {
			continue
		}
		if !matched && selected != "" && strings.EqualFold(key, selected) {
			out[key] = RadioMark(option)
			matched = true
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = ""
		}
	}
	return out
}

// RadioMark returns the marker value rendered for a selected option.
func RadioMark(option field.RadioOption) string {
	if v := strings.TrimSpace(option.Value); v != "" {
		return option.Value
	}
	if l := strings.TrimSpace(option.Label); l != "" {
		return option.Label
	}
	return DefaultRadioMark
}
