package preview

import (
	"html"
	"sort"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/compose"
	"github.com/goliatone/go-formpreview/pkg/dateformat"
	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

// FormData maps bare field keys to their current string values.
type FormData map[string]string

// Clone returns a shallow copy of the form data.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// PreviewState is the most recent render.
type PreviewState struct {
	HTML       string `json:"html"`
	HasPreview bool   `json:"hasPreview"`
}

// HasPreview reports whether a template has content worth rendering.
func HasPreview(template string) bool {
	return strings.TrimSpace(template) != ""
}

var entityDecoder = strings.NewReplacer("&#123;", "{", "&#125;", "}")

// Engine renders templates. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	markers           Markers
	locale            dateformat.Locale
	defaultDateFormat string
	escape            bool
}

// NewEngine constructs an Engine with default markers, English dates and
// escaped values.
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		markers:           DefaultMarkers(),
		locale:            dateformat.LocaleEnglish,
		defaultDateFormat: dateformat.DefaultLayout,
		escape:            true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Render substitutes data into template using a default Engine.
func Render(template string, data FormData, defs field.Set, colors sections.ColorMap, active string) string {
	return defaultEngine.Render(template, data, defs, colors, active)
}

// Render substitutes data into template. The result depends only on the
// arguments; identical inputs produce identical output.
func (e *Engine) Render(template string, data FormData, defs field.Set, colors sections.ColorMap, active string) string {
	if e == nil {
		e = defaultEngine
	}
	active = strings.TrimSpace(active)
	normalized := entityDecoder.Replace(template)
	table := e.buildTable(data, defs, colors, active)
	return scan(normalized, func(inner string) string {
		if r, ok := table.lookup(inner); ok {
			return r.text
		}
		return e.fallback(inner, data, defs, colors, active)
	})
}

type replacement struct {
	key       string
	text      string
	composite bool
}

// replacementTable groups candidate replacements by lower-cased key in
// insertion order.
type replacementTable map[string][]replacement

func (t replacementTable) put(key, text string, composite bool) {
	k := strings.ToLower(key)
	t[k] = append(t[k], replacement{key: key, text: text, composite: composite})
}

// lookup picks the replacement for a placeholder. Entries from merged and
// radio parents win over plain entries. Within the winning kind a key equal
// to inner wins, otherwise the first entry does.
func (t replacementTable) lookup(inner string) (replacement, bool) {
	candidates := t[strings.ToLower(inner)]
	if len(candidates) == 0 {
		return replacement{}, false
	}
	composite := false
	for _, c := range candidates {
		if c.composite {
			composite = true
			break
		}
	}
	var first *replacement
	for i := range candidates {
		c := &candidates[i]
		if c.composite != composite {
			continue
		}
		if c.key == inner {
			return *c, true
		}
		if first == nil {
			first = c
		}
	}
	return *first, true
}

func (e *Engine) buildTable(data FormData, defs field.Set, colors sections.ColorMap, active string) replacementTable {
	table := make(replacementTable, len(data))
	for _, key := range sortedKeys(data) {
		raw := data[key]
		def, hasDef := defs.Get(key)
		isActive := active != "" && strings.EqualFold(key, active)
		parentColor := colors.Lookup(key)

		switch mode := def.Mode().(type) {
		case field.Merged:
			parts := compose.SplitMergedValue(raw, mode.Fields, mode.Separator)
			for _, sub := range mode.Fields {
				sub = field.BareKey(sub)
				table.put(sub, e.display(sub, parts[sub], isActive, subColor(colors, sub, parentColor)), true)
			}
		case field.RadioGroup:
			expanded := compose.ExpandRadioGroupValue(raw, mode.Options)
			for _, option := range mode.Options {
				sub := option.Key()
				if sub == "" {
					continue
				}
				table.put(sub, e.display(sub, expanded[sub], isActive, subColor(colors, sub, parentColor)), true)
			}
		default:
			value := raw
			if hasDef && def.IsDate() && raw != "" {
				value = e.formatDate(raw, def.DateFormat)
			}
			table.put(key, e.display(key, value, isActive, parentColor), false)
		}
	}
	return table
}

// fallback resolves a placeholder no primary entry claimed.
func (e *Engine) fallback(inner string, data FormData, defs field.Set, colors sections.ColorMap, active string) string {
	key := strings.TrimSpace(inner)
	if matched, ok := lookupFold(data, key); ok {
		if value := data[matched]; value != "" {
			if def, ok := defs.Get(matched); ok && def.IsDate() {
				value = e.formatDate(value, def.DateFormat)
			}
			return e.text(value)
		}
	}
	if active != "" && strings.EqualFold(key, active) {
		return e.markers.Blank(key, colors.Lookup(key))
	}
	return ""
}

func (e *Engine) display(key, value string, active bool, color sections.Color) string {
	switch {
	case active && value == "":
		return e.markers.Blank(key, color)
	case active:
		return e.markers.Highlight(key, e.text(value), color)
	default:
		return e.text(value)
	}
}

func (e *Engine) text(value string) string {
	if !e.escape {
		return value
	}
	return html.EscapeString(value)
}

func (e *Engine) formatDate(raw, layout string) string {
	if strings.TrimSpace(layout) == "" {
		layout = e.defaultDateFormat
	}
	return dateformat.FormatLocale(raw, layout, e.locale)
}

func subColor(colors sections.ColorMap, key string, parent sections.Color) sections.Color {
	if c, ok := colors.Resolve(key); ok {
		return c
	}
	return parent
}

// lookupFold finds key in data exactly, then case-insensitively in sorted key
// order so the first matching key wins deterministically.
func lookupFold(data FormData, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if _, ok := data[key]; ok {
		return key, true
	}
	for _, k := range sortedKeys(data) {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

func sortedKeys(data FormData) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
