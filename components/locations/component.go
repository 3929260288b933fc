package locations

import "net/http"

// Component bundles the location handler, its configuration and routing.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Lookup returns the configured lookup, or a static lookup over the
// configured locations.
func (c *Component) Lookup() (Lookup, error) {
	opts := c.Options()
	if opts.Lookup != nil {
		return opts.Lookup, nil
	}
	return NewStaticLookup(opts.Locations, func(o *Options) { *o = opts })
}

// Handler returns the net/http handler.
func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.Options())
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, c.Options())
}
