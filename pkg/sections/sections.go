package sections

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/field"
)

// FallbackSection names the bucket collecting ungrouped fields.
const FallbackSection = "ungrouped"

// Entry is a visible field inside a section.
type Entry struct {
	Key        string           `json:"key"`
	Label      string           `json:"label"`
	Definition field.Definition `json:"-"`
}

// Section is a named, colored, ordered bucket of fields.
type Section struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	ColorIndex int     `json:"colorIndex"`
	Color      Color   `json:"color"`
	Order      int     `json:"order"`
	Fields     []Entry `json:"fields"`
}

// Keys returns the field keys of the section in display order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, entry := range s.Fields {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Option configures Build.
type Option func(*config)

type config struct {
	palette       Palette
	fallback      Color
	fallbackLabel string
}

func newConfig(opts []Option) config {
	cfg := config{palette: DefaultPalette, fallback: DefaultColor}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithPalette overrides DefaultPalette.
func WithPalette(p Palette) Option {
	return func(cfg *config) {
		if len(p) > 0 {
			cfg.palette = append(Palette(nil), p...)
		}
	}
}

// WithFallbackColor sets the color of keys outside every section.
func WithFallbackColor(c Color) Option {
	return func(cfg *config) {
		if c != (Color{}) {
			cfg.fallback = c
		}
	}
}

// WithFallbackLabel sets the display label of the ungrouped section.
func WithFallbackLabel(label string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			cfg.fallbackLabel = trimmed
		}
	}
}

// Build groups the visible definitions of set into sections. Aliases map field
// keys or section names to display labels. Sections sort by the minimum order
// of their members, ties broken by first encounter; members sort by order.
func Build(set field.Set, aliases map[string]string, opts ...Option) []Section {
	cfg := newConfig(opts)

	var out []Section
	index := make(map[string]int)

	for _, def := range set.All() {
		if IsHidden(def.Group) {
			continue
		}
		key := def.Key()
		if key == "" {
			continue
		}

		name, colorIndex := ParseGroup(def.Group)
		if name == "" {
			name = FallbackSection
			colorIndex = 0
		}

		pos, ok := index[name]
		if !ok {
			colorIndex = Normalize(colorIndex, len(cfg.palette))
			pos = len(out)
			index[name] = pos
			out = append(out, Section{
				Name:       name,
				Label:      sectionLabel(name, aliases, cfg),
				ColorIndex: colorIndex,
				Color:      cfg.palette.Pick(colorIndex),
				Order:      def.Order,
			})
		}

		section := &out[pos]
		if def.Order < section.Order {
			section.Order = def.Order
		}
		section.Fields = append(section.Fields, Entry{
			Key:        key,
			Label:      fieldLabel(def, aliases),
			Definition: def,
		})
	}

	for i := range out {
		sort.SliceStable(out[i].Fields, func(a, b int) bool {
			return out[i].Fields[a].Definition.Order < out[i].Fields[b].Definition.Order
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Order < out[b].Order
	})
	return out
}

func sectionLabel(name string, aliases map[string]string, cfg config) string {
	if alias := strings.TrimSpace(aliases[name]); alias != "" {
		return alias
	}
	if name == FallbackSection && cfg.fallbackLabel != "" {
		return cfg.fallbackLabel
	}
	return name
}

func fieldLabel(def field.Definition, aliases map[string]string) string {
	key := def.Key()
	if alias := strings.TrimSpace(aliases[key]); alias != "" {
		return alias
	}
	if def.Label != "" {
		return def.Label
	}
	return key
}
