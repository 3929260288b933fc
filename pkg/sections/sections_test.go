package sections_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

func sampleSet() field.Set {
	return field.NewSet(
		field.Definition{Placeholder: "{{notes}}", Order: 50},
		field.Definition{Placeholder: "{{last}}", Group: "person|1", Order: 2},
		field.Definition{Placeholder: "{{first}}", Group: "person|1", Order: 1, Label: "First name"},
		field.Definition{Placeholder: "{{street}}", Group: "address|10", Order: 5},
		field.Definition{Placeholder: "{{d}}", Group: "merged_hidden_dob", Order: 0},
		field.Definition{Placeholder: "{{opt_a}}", Group: "radio_hidden_choice", Order: 0},
		field.Definition{Placeholder: "{{child}}", Group: "radio_child_choice", Order: 0},
		field.Definition{Placeholder: "{{city}}", Group: "address|oops", Order: 6},
	)
}

func TestParseGroup(t *testing.T) {
	cases := []struct {
		tag       string
		wantName  string
		wantIndex int
	}{
		{"person", "person", 0},
		{"person|3", "person", 3},
		{"person|abc", "person", 0},
		{" person | 12 ", "person", 12},
		{"", "", 0},
	}
	for _, tc := range cases {
		name, index := sections.ParseGroup(tc.tag)
		if name != tc.wantName || index != tc.wantIndex {
			t.Fatalf("ParseGroup(%q) = (%q, %d), want (%q, %d)", tc.tag, name, index, tc.wantName, tc.wantIndex)
		}
	}
}

func TestPalettePick_Modulo(t *testing.T) {
	p := sections.DefaultPalette
	if p.Pick(8) != p[0] || p.Pick(10) != p[2] || p.Pick(-1) != p[7] {
		t.Fatalf("palette index not reduced modulo %d", len(p))
	}
	if len(p) != sections.PaletteSize {
		t.Fatalf("expected %d palette entries, got %d", sections.PaletteSize, len(p))
	}
}

func TestBuild_GroupsSortsAndFiltersHidden(t *testing.T) {
	got := sections.Build(sampleSet(), map[string]string{"person": "Person", "last": "Surname"})

	type summary struct {
		Name       string
		Label      string
		ColorIndex int
		Order      int
		Keys       []string
		Labels     []string
	}
	var summaries []summary
	for _, s := range got {
		var labels []string
		for _, e := range s.Fields {
			labels = append(labels, e.Label)
		}
		summaries = append(summaries, summary{s.Name, s.Label, s.ColorIndex, s.Order, s.Keys(), labels})
	}

	want := []summary{
		{"person", "Person", 1, 1, []string{"first", "last"}, []string{"First name", "Surname"}},
		{"address", "address", 2, 5, []string{"street", "city"}, []string{"street", "city"}},
		{sections.FallbackSection, sections.FallbackSection, 0, 50, []string{"notes"}, []string{"notes"}},
	}
	if diff := cmp.Diff(want, summaries); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if got[1].Color != sections.DefaultPalette[2] {
		t.Fatalf("address color = %+v, want palette[2]", got[1].Color)
	}
}

func TestBuild_TiesKeepEncounterOrder(t *testing.T) {
	set := field.NewSet(
		field.Definition{Placeholder: "{{b1}}", Group: "b", Order: 1},
		field.Definition{Placeholder: "{{a1}}", Group: "a", Order: 1},
		field.Definition{Placeholder: "{{c1}}", Group: "c", Order: 1},
	)
	var names []string
	for _, s := range sections.Build(set, nil) {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, names); diff != "" {
		t.Fatalf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	aliases := map[string]string{"street": "Street"}
	first := sections.Build(sampleSet(), aliases)
	second := sections.Build(sampleSet(), aliases)
	opts := cmpopts.IgnoreFields(sections.Entry{}, "Definition")
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Fatalf("sections differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(sections.BuildFieldColorMap(first), sections.BuildFieldColorMap(second)); diff != "" {
		t.Fatalf("color maps differ between runs:\n%s", diff)
	}
}

func TestColorMap_Lookup(t *testing.T) {
	colors := sections.BuildFieldColorMap(sections.Build(sampleSet(), nil))
	if got := colors.Lookup("first"); got != sections.DefaultPalette[1] {
		t.Fatalf("first color = %+v", got)
	}
	if got := colors.Lookup("FIRST"); got != sections.DefaultPalette[1] {
		t.Fatalf("case-insensitive lookup failed: %+v", got)
	}
	if got := colors.Lookup("d"); got != sections.DefaultColor {
		t.Fatalf("hidden field should fall back to default color, got %+v", got)
	}
	if _, ok := colors.Resolve("missing"); ok {
		t.Fatalf("expected missing key to be unresolved")
	}
}

func TestWithPalette(t *testing.T) {
	custom := sections.Palette{{Background: "#000", Foreground: "#fff"}, {Background: "#111", Foreground: "#eee"}}
	got := sections.Build(sampleSet(), nil, sections.WithPalette(custom), sections.WithFallbackLabel("Other"))
	if got[1].ColorIndex != 0 || got[1].Color != custom[0] {
		t.Fatalf("address should wrap to custom[0], got index %d color %+v", got[1].ColorIndex, got[1].Color)
	}
	if got[2].Label != "Other" {
		t.Fatalf("fallback label = %q", got[2].Label)
	}
}

type stubSelector struct {
	selection *theme.Selection
	err       error
}

func (s stubSelector) Select(_, _ string, _ ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, s.err
}

func TestSelectPalette_ThemeTokens(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"section.0.background":       "#101010",
			"section.1.foreground":       "#202020",
			"section.default.background": "#303030",
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"section.0.background": "#000000"}},
		},
	}

	palette, fallback, err := sections.SelectPalette(stubSelector{selection: &theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest}}, "acme", "dark")
	if err != nil {
		t.Fatalf("select palette: %v", err)
	}
	if palette[0].Background != "#000000" || palette[0].Foreground != sections.DefaultPalette[0].Foreground {
		t.Fatalf("variant token not applied: %+v", palette[0])
	}
	if palette[1].Foreground != "#202020" {
		t.Fatalf("manifest token not applied: %+v", palette[1])
	}
	if fallback.Background != "#303030" {
		t.Fatalf("fallback token not applied: %+v", fallback)
	}
	if sections.DefaultPalette[0].Background == "#000000" {
		t.Fatalf("default palette mutated")
	}

	if _, _, err := sections.SelectPalette(stubSelector{err: errors.New("boom")}, "acme", ""); err == nil {
		t.Fatalf("expected selector error to surface")
	}
}

func TestColorMap_FallbackColor(t *testing.T) {
	themed := sections.Color{Background: "#123456", Foreground: "#654321"}
	colors := sections.BuildFieldColorMap(sections.Build(sampleSet(), nil), sections.WithFallbackColor(themed))
	if got := colors.Lookup("missing"); got != themed {
		t.Fatalf("missing key should use themed fallback, got %+v", got)
	}
	if got := colors.Lookup("first"); got != sections.DefaultPalette[1] {
		t.Fatalf("section member color changed: %+v", got)
	}
	if _, ok := colors.Resolve(""); ok {
		t.Fatalf("empty key must not resolve")
	}

	var empty sections.ColorMap
	if got := empty.Lookup("x"); got != sections.DefaultColor {
		t.Fatalf("nil map should fall back to DefaultColor, got %+v", got)
	}
}

func TestBuiltinThemes(t *testing.T) {
	registry, err := sections.BuiltinThemes()
	if err != nil {
		t.Fatalf("builtin themes: %v", err)
	}
	selector := theme.Selector{Registry: registry, DefaultTheme: sections.DefaultThemeName}

	palette, fallback, err := sections.SelectPalette(selector, "", "")
	if err != nil {
		t.Fatalf("select default: %v", err)
	}
	if diff := cmp.Diff(sections.DefaultPalette, palette); diff != "" {
		t.Fatalf("default theme should mirror DefaultPalette (-want +got):\n%s", diff)
	}
	if fallback != sections.DefaultColor {
		t.Fatalf("default fallback = %+v", fallback)
	}

	dark, darkFallback, err := sections.SelectPalette(selector, sections.DefaultThemeName, "dark")
	if err != nil {
		t.Fatalf("select dark: %v", err)
	}
	if dark[0].Background != "#1E3A8A" || darkFallback.Background != "#713F12" {
		t.Fatalf("dark variant not applied: %+v %+v", dark[0], darkFallback)
	}

	contrast, _, err := sections.SelectPalette(selector, "contrast", "")
	if err != nil {
		t.Fatalf("select contrast: %v", err)
	}
	if contrast[0].Background != "#000000" {
		t.Fatalf("contrast palette = %+v", contrast[0])
	}
}

func TestThemeOptions_ApplyToBuildAndColorMap(t *testing.T) {
	registry := theme.NewRegistry()
	err := registry.Register(&theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"section.1.background":       "#AA0000",
			"section.default.background": "#00AA00",
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	opts, err := sections.ThemeOptions(theme.Selector{Registry: registry}, "acme", "")
	if err != nil {
		t.Fatalf("theme options: %v", err)
	}
	colors := sections.BuildFieldColorMap(sections.Build(sampleSet(), nil, opts...), opts...)
	if got := colors.Lookup("first"); got.Background != "#AA0000" {
		t.Fatalf("themed section color = %+v", got)
	}
	if got := colors.Lookup("unknown"); got.Background != "#00AA00" {
		t.Fatalf("themed fallback color = %+v", got)
	}

	if _, err := sections.ThemeOptions(theme.Selector{Registry: registry}, "nope", ""); err == nil {
		t.Fatalf("expected unknown theme to fail")
	}
}

func TestLoadThemeManifest(t *testing.T) {
	dir := t.TempDir()
	body := "name: acme\nversion: 1.0.0\ntokens:\n  section.0.background: \"#111111\"\n"
	if err := os.WriteFile(filepath.Join(dir, "theme.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	for _, p := range []string{dir, filepath.Join(dir, "theme.yaml")} {
		manifest, err := sections.LoadThemeManifest(p)
		if err != nil {
			t.Fatalf("load %s: %v", p, err)
		}
		if manifest.Name != "acme" || manifest.Tokens["section.0.background"] != "#111111" {
			t.Fatalf("unexpected manifest from %s: %+v", p, manifest)
		}
	}

	if _, err := sections.LoadThemeManifest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing manifest to fail")
	}
}

func TestLegend_ListsSectionsAndFields(t *testing.T) {
	out := sections.Legend(sections.Build(sampleSet(), map[string]string{"person": "Person"}))
	for _, want := range []string{"Person", "First name (first)", "street"} {
		if !strings.Contains(out, want) {
			t.Fatalf("legend missing %q:\n%s", want, out)
		}
	}
}
