package sections

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme token names read by PaletteFromTheme, formatted with the palette index.
const (
	tokenBackground = "section.%d.background"
	tokenForeground = "section.%d.foreground"
	tokenFallbackBG = "section.default.background"
	tokenFallbackFG = "section.default.foreground"
)

// DefaultThemeName is the built-in theme mirroring DefaultPalette.
const DefaultThemeName = "default"

//go:embed themes/*.yaml
var builtinThemes embed.FS

// PaletteFromTheme overlays theme tokens onto DefaultPalette. Variant tokens
// override manifest tokens. A nil selection returns DefaultPalette unchanged.
func PaletteFromTheme(selection *theme.Selection) (Palette, Color) {
	palette := append(Palette(nil), DefaultPalette...)
	fallback := DefaultColor
	if selection == nil {
		return palette, fallback
	}

	tokens := selection.Tokens()
	for i := range palette {
		if bg := strings.TrimSpace(tokens[fmt.Sprintf(tokenBackground, i)]); bg != "" {
			palette[i].Background = bg
		}
		if fg := strings.TrimSpace(tokens[fmt.Sprintf(tokenForeground, i)]); fg != "" {
			palette[i].Foreground = fg
		}
	}
	if bg := strings.TrimSpace(tokens[tokenFallbackBG]); bg != "" {
		fallback.Background = bg
	}
	if fg := strings.TrimSpace(tokens[tokenFallbackFG]); fg != "" {
		fallback.Foreground = fg
	}
	return palette, fallback
}

// SelectPalette resolves a theme through selector and derives its palette.
func SelectPalette(selector theme.ThemeSelector, name, variant string) (Palette, Color, error) {
	if selector == nil {
		return append(Palette(nil), DefaultPalette...), DefaultColor, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, Color{}, fmt.Errorf("sections: select theme %q: %w", name, err)
	}
	palette, fallback := PaletteFromTheme(selection)
	return palette, fallback, nil
}

// ThemeOptions resolves a theme into the Build and BuildFieldColorMap options
// carrying its palette and fallback color.
func ThemeOptions(selector theme.ThemeSelector, name, variant string) ([]Option, error) {
	palette, fallback, err := SelectPalette(selector, name, variant)
	if err != nil {
		return nil, err
	}
	return []Option{WithPalette(palette), WithFallbackColor(fallback)}, nil
}

// BuiltinThemes returns a registry holding the embedded theme manifests.
func BuiltinThemes() (*theme.MemoryRegistry, error) {
	registry := theme.NewRegistry()
	entries, err := fs.ReadDir(builtinThemes, "themes")
	if err != nil {
		return nil, fmt.Errorf("sections: read builtin themes: %w", err)
	}
	for _, entry := range entries {
		manifest, err := theme.LoadFile(builtinThemes, path.Join("themes", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("sections: load builtin theme: %w", err)
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("sections: register theme %q: %w", manifest.Name, err)
		}
	}
	return registry, nil
}

// LoadThemeManifest reads a theme manifest from a file, or from a directory
// holding theme.json, theme.yaml or manifest.yaml.
func LoadThemeManifest(p string) (*theme.Manifest, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("sections: theme manifest: %w", err)
	}
	var manifest *theme.Manifest
	if info.IsDir() {
		manifest, err = theme.LoadDir(os.DirFS(p), ".")
	} else {
		manifest, err = theme.LoadFile(os.DirFS(filepath.Dir(p)), filepath.Base(p))
	}
	if err != nil {
		return nil, fmt.Errorf("sections: theme manifest %s: %w", p, err)
	}
	return manifest, nil
}
