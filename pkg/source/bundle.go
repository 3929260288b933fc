package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/pkg/field"
)

// BundleRequest names the documents that make up a preview. Only Template is
// required.
type BundleRequest struct {
	Template    Source
	Definitions Source
	Aliases     Source
	DataTypes   Source
	// Sanitize strips scripts and unsafe attributes from the template while
	// keeping inline styling.
	Sanitize bool
}

// Bundle is a loaded preview input.
type Bundle struct {
	HTML        string
	Definitions field.Set
	Aliases     map[string]string
}

// LoadBundle loads and decodes every document named by req.
func LoadBundle(ctx context.Context, loader *Loader, req BundleRequest) (Bundle, error) {
	if loader == nil {
		return Bundle{}, errors.New("source: loader is nil")
	}
	if req.Template == nil {
		return Bundle{}, errors.New("source: template source is required")
	}

	raw, err := loader.Load(ctx, req.Template)
	if err != nil {
		return Bundle{}, err
	}
	tmpl, err := Template(raw, Ext(req.Template), req.Sanitize)
	if err != nil {
		return Bundle{}, err
	}
	bundle := Bundle{HTML: tmpl, Aliases: map[string]string{}}

	if req.Definitions != nil {
		data, err := loader.Load(ctx, req.Definitions)
		if err != nil {
			return Bundle{}, err
		}
		set, err := field.Decode(data, FormatOf(req.Definitions))
		if err != nil {
			return Bundle{}, fmt.Errorf("source: definitions %q: %w", req.Definitions.Location(), err)
		}
		bundle.Definitions = set
	}

	if req.DataTypes != nil {
		data, err := loader.Load(ctx, req.DataTypes)
		if err != nil {
			return Bundle{}, err
		}
		var catalog field.Catalog
		if err := unmarshal(data, FormatOf(req.DataTypes), &catalog); err != nil {
			return Bundle{}, fmt.Errorf("source: data types %q: %w", req.DataTypes.Location(), err)
		}
		bundle.Definitions = catalog.Apply(bundle.Definitions)
	}

	if req.Aliases != nil {
		data, err := loader.Load(ctx, req.Aliases)
		if err != nil {
			return Bundle{}, err
		}
		aliases, err := ParseFormData(data)
		if err != nil {
			return Bundle{}, fmt.Errorf("source: aliases %q: %w", req.Aliases.Location(), err)
		}
		bundle.Aliases = aliases
	}
	return bundle, nil
}

// FormatOf picks the structured format of a source from its extension.
func FormatOf(src Source) field.Format {
	switch Ext(src) {
	case ".yaml", ".yml":
		return field.FormatYAML
	default:
		return field.FormatJSON
	}
}

// Template prepares raw template bytes. Markdown (by extension) is converted
// to HTML; raw HTML inside Markdown is kept.
func Template(raw []byte, ext string, sanitize bool) (string, error) {
	out := string(raw)
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		var buf bytes.Buffer
		if err := markdown().Convert(raw, &buf); err != nil {
			return "", fmt.Errorf("source: convert markdown: %w", err)
		}
		out = buf.String()
	}
	if sanitize {
		out = templatePolicy().Sanitize(out)
	}
	return out, nil
}

var (
	markdownOnce sync.Once
	markdownMD   goldmark.Markdown

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownMD = goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		)
	})
	return markdownMD
}

func templatePolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("style", "class", "id").Globally()
		p.AllowElements("section", "article", "header", "footer")
		policy = p
	})
	return policy
}

func unmarshal(data []byte, format field.Format, out any) error {
	if format == field.FormatYAML {
		return yaml.Unmarshal(data, out)
	}
	return json.Unmarshal(data, out)
}
