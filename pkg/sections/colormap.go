package sections

import (
	"sort"
	"strings"
)

// ColorMap maps bare field keys to their section color. The empty key, which
// no field can use, holds the color for keys outside every section.
type ColorMap map[string]Color

// BuildFieldColorMap derives the key to color map from sections. A
// WithFallbackColor option sets the color Lookup returns for unknown keys.
func BuildFieldColorMap(sections []Section, opts ...Option) ColorMap {
	cfg := newConfig(opts)
	out := make(ColorMap)
	for _, section := range sections {
		for _, entry := range section.Fields {
			if entry.Key == "" {
				continue
			}
			if _, exists := out[entry.Key]; exists {
				continue
			}
			out[entry.Key] = section.Color
		}
	}
	if cfg.fallback != (Color{}) && cfg.fallback != DefaultColor {
		out[""] = cfg.fallback
	}
	return out
}

// Resolve reports the color of key using an exact match, then a
// case-insensitive match in sorted key order.
func (m ColorMap) Resolve(key string) (Color, bool) {
	if len(m) == 0 || key == "" {
		return Color{}, false
	}
	if c, ok := m[key]; ok {
		return c, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return m[k], true
		}
	}
	return Color{}, false
}

// Fallback returns the color for keys outside every section.
func (m ColorMap) Fallback() Color {
	if c, ok := m[""]; ok {
		return c
	}
	return DefaultColor
}

// Lookup returns the color of key or the fallback color.
func (m ColorMap) Lookup(key string) Color {
	if c, ok := m.Resolve(key); ok {
		return c
	}
	return m.Fallback()
}
