package locations

import (
	"net/http"
	"strings"
)

type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchTop  EmptySearchMode = "top"
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	LayoutParam     string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc

	// Layout formats option values; empty means DefaultLayout.
	Layout string
	// Locations backs the default static lookup; nil means the embedded list.
	Locations []Location
	// Lookup replaces the static lookup, for example with a Cache.
	Lookup Lookup
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/locations",
		SearchParam:     "q",
		LimitParam:      "limit",
		LayoutParam:     "format",
		DefaultLimit:    20,
		MaxLimit:        100,
		EmptySearchMode: EmptySearchNone,
		Layout:          DefaultLayout,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchNone
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/locations"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if strings.TrimSpace(opts.Layout) == "" {
		opts.Layout = DefaultLayout
	}
	if opts.Locations != nil {
		opts.Locations = append([]Location{}, opts.Locations...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		o.LimitParam = name
	}
}

// WithLayoutParam names the query parameter that overrides the layout per
// request. An empty name disables the override.
func WithLayoutParam(name string) OptionFn {
	return func(o *Options) {
		o.LayoutParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		o.Guard = guard
	}
}

func WithLayout(layout string) OptionFn {
	return func(o *Options) {
		o.Layout = layout
	}
}

func WithLocations(locations []Location) OptionFn {
	return func(o *Options) {
		if locations == nil {
			o.Locations = nil
			return
		}
		o.Locations = append([]Location{}, locations...)
	}
}

func WithLookup(lookup Lookup) OptionFn {
	return func(o *Options) {
		o.Lookup = lookup
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
