// Package formpreview renders live previews of templated documents. Templates
// carry {{placeholder}} markers that are filled from form values as a user
// types, with the focused field highlighted in its section color.
//
// The root package re-exports the common entry points; the pkg/ packages hold
// the building blocks.
package formpreview

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
	"github.com/goliatone/go-formpreview/pkg/source"
)

// FormData maps placeholder identifiers to raw values.
type FormData = preview.FormData

// PreviewState is a single publication of the preview.
type PreviewState = preview.PreviewState

// Engine performs substitution.
type Engine = preview.Engine

// Coordinator schedules renders for an editing session.
type Coordinator = preview.Coordinator

// Bundle is a loaded template with its definitions and aliases.
type Bundle = source.Bundle

// Render substitutes data into template with default engine settings.
func Render(template string, data FormData, defs field.Set, colors sections.ColorMap, active string) string {
	return preview.Render(template, data, defs, colors, active)
}

// NewEngine exposes the engine constructor from the root module.
func NewEngine(options ...preview.Option) *Engine {
	return preview.NewEngine(options...)
}

// NewCoordinator exposes the coordinator constructor from the root module.
func NewCoordinator(engine *Engine, options ...preview.CoordinatorOption) *Coordinator {
	return preview.NewCoordinator(engine, options...)
}

// Option configures LoadBundle and RenderBundle.
type Option func(*options)

type options struct {
	loader   source.LoaderOptions
	selector theme.ThemeSelector
	theme    string
	variant  string
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLoaderOptions configures how LoadBundle reads its inputs. Without it
// only local files are read; set AllowHTTP to accept http(s) URLs.
func WithLoaderOptions(lo source.LoaderOptions) Option {
	return func(o *options) { o.loader = lo }
}

// WithThemeSelector colors sections from the go-theme selection returned by
// selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *options) { o.selector = selector }
}

// WithThemeProvider builds a go-theme selector over provider with the given
// defaults.
func WithThemeProvider(provider theme.ThemeProvider, defaultTheme, defaultVariant string) Option {
	return func(o *options) {
		if provider == nil {
			return
		}
		o.selector = theme.Selector{Registry: provider, DefaultTheme: defaultTheme, DefaultVariant: defaultVariant}
	}
}

// WithTheme names the theme and variant requested from the selector.
func WithTheme(name, variant string) Option {
	return func(o *options) {
		o.theme = name
		o.variant = variant
	}
}

// LoadBundle loads a template and its companion documents. Empty paths other
// than template are skipped. References are read from the local filesystem
// unless WithLoaderOptions enables HTTP or an fs.FS.
func LoadBundle(ctx context.Context, template, definitions, aliases string, opts ...Option) (Bundle, error) {
	o := newOptions(opts)
	req := source.BundleRequest{}
	for _, ref := range []struct {
		raw string
		dst *source.Source
	}{
		{template, &req.Template},
		{definitions, &req.Definitions},
		{aliases, &req.Aliases},
	} {
		src, err := source.Parse(ref.raw)
		if err != nil {
			return Bundle{}, err
		}
		*ref.dst = src
	}
	return source.LoadBundle(ctx, source.NewLoader(o.loader), req)
}

// RenderBundle renders b with values and returns the standalone HTML page
// including the section legend. A theme selector supplies the section colors.
func RenderBundle(b Bundle, values FormData, active string, opts ...Option) (string, error) {
	o := newOptions(opts)
	sectionOpts, err := sections.ThemeOptions(o.selector, o.theme, o.variant)
	if err != nil {
		return "", err
	}
	built := sections.Build(b.Definitions, b.Aliases, sectionOpts...)
	body := ""
	hasPreview := preview.HasPreview(b.HTML)
	if hasPreview {
		body = preview.Render(b.HTML, values, b.Definitions, sections.BuildFieldColorMap(built, sectionOpts...), active)
	}
	return page.New().Render(page.Page{Body: body, HasPreview: hasPreview, Sections: built})
}

// EmbeddedTemplates exposes the built-in page layout so callers can reuse or
// extend it without importing the page package directly.
func EmbeddedTemplates() fs.FS {
	return page.TemplatesFS()
}
