package page

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formpreview/pkg/sections"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// DefaultTemplate is the layout name looked up in the template FS.
const DefaultTemplate = "page.tpl"

// TemplatesFS exposes the built-in layout so callers can copy or extend it.
func TemplatesFS() fs.FS {
	// the embed pattern is static, so Sub cannot fail
	sub, _ := fs.Sub(embeddedTemplates, "templates")
	return sub
}

// Page is the data rendered into the layout.
type Page struct {
	Title      string
	Body       string
	HasPreview bool
	Sections   []sections.Section
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates    fs.FS
	name         string
	lang         string
	stylesheet   string
	legendTitle  string
	emptyMessage string
}

// WithTemplates replaces the embedded layout with templates from files.
func WithTemplates(files fs.FS, name string) Option {
	return func(cfg *config) {
		if files == nil {
			return
		}
		cfg.templates = files
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithLang sets the html lang attribute.
func WithLang(lang string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			cfg.lang = trimmed
		}
	}
}

// WithStylesheet appends CSS to the layout's style block.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = css
	}
}

// WithLegendTitle overrides the legend heading.
func WithLegendTitle(title string) Option {
	return func(cfg *config) {
		cfg.legendTitle = title
	}
}

// WithEmptyMessage overrides the text shown when there is nothing to preview.
func WithEmptyMessage(msg string) Option {
	return func(cfg *config) {
		cfg.emptyMessage = msg
	}
}

// Renderer renders pages. It is safe for concurrent use.
type Renderer struct {
	cfg config
	set *pongo2.TemplateSet

	once sync.Once
	tmpl *pongo2.Template
	err  error
}

// New constructs a Renderer.
func New(options ...Option) *Renderer {
	cfg := config{
		name:         DefaultTemplate,
		lang:         "en",
		legendTitle:  "Sections",
		emptyMessage: "No preview available.",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	files := cfg.templates
	if files == nil {
		files = TemplatesFS()
	}
	return &Renderer{
		cfg: cfg,
		set: pongo2.NewSet("formpreview", pongo2.NewFSLoader(files)),
	}
}

// Render returns the full HTML document for p.
func (r *Renderer) Render(p Page) (string, error) {
	if r == nil {
		return "", errors.New("page: renderer is nil")
	}
	tmpl, err := r.template()
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Preview"
	}
	ctx := pongo2.Context{
		"lang":          r.cfg.lang,
		"title":         title,
		"body":          p.Body,
		"has_preview":   p.HasPreview,
		"sections":      p.Sections,
		"stylesheet":    r.cfg.stylesheet,
		"legend_title":  r.cfg.legendTitle,
		"empty_message": r.cfg.emptyMessage,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("page: execute %q: %w", r.cfg.name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) template() (*pongo2.Template, error) {
	r.once.Do(func() {
		r.tmpl, r.err = r.set.FromFile(r.cfg.name)
		if r.err != nil {
			r.err = fmt.Errorf("page: load %q: %w", r.cfg.name, r.err)
		}
	})
	return r.tmpl, r.err
}
