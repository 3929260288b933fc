package preview

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/dateformat"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

// Markers render the inline elements used for the active field.
type Markers struct {
	// Blank marks an active field that has no value yet.
	Blank func(key string, color sections.Color) string
	// Highlight wraps the (already escaped) value of the active field.
	Highlight func(key, value string, color sections.Color) string
}

// DefaultMarkers returns span based markers styled with the field color.
func DefaultMarkers() Markers {
	return Markers{
		Blank: func(key string, color sections.Color) string {
			return fmt.Sprintf(
				`<span class="fp-field fp-field--blank" data-field="%s" style="background-color:%s;border-bottom:2px solid %s;padding:0 0.75em;">&nbsp;</span>`,
				html.EscapeString(key), html.EscapeString(color.Background), html.EscapeString(color.Foreground),
			)
		},
		Highlight: func(key, value string, color sections.Color) string {
			return fmt.Sprintf(
				`<span class="fp-field fp-field--active" data-field="%s" style="background-color:%s;color:%s;border-radius:2px;padding:0 2px;">%s</span>`,
				html.EscapeString(key), html.EscapeString(color.Background), html.EscapeString(color.Foreground), value,
			)
		},
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithMarkers overrides the active field markers. Nil funcs keep the defaults.
func WithMarkers(m Markers) Option {
	return func(e *Engine) {
		if m.Blank != nil {
			e.markers.Blank = m.Blank
		}
		if m.Highlight != nil {
			e.markers.Highlight = m.Highlight
		}
	}
}

// WithDateLocale selects the month names used for date fields.
func WithDateLocale(locale dateformat.Locale) Option {
	return func(e *Engine) {
		if locale != "" {
			e.locale = locale
		}
	}
}

// WithDefaultDateFormat sets the layout used when a date field declares none.
func WithDefaultDateFormat(layout string) Option {
	return func(e *Engine) {
		if trimmed := strings.TrimSpace(layout); trimmed != "" {
			e.defaultDateFormat = trimmed
		}
	}
}

// WithRawValues inserts form values without HTML escaping.
func WithRawValues() Option {
	return func(e *Engine) {
		e.escape = false
	}
}
