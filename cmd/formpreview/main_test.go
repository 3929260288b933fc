package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/internal/config"
)

const fieldsYAML = `
first:
  label: First name
  group: person|1
last:
  label: Last name
  group: person|1
dob:
  label: Date of birth
  inputType: date
  dateFormat: d mmmm yyyy
  group: dates|2
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.html", "<p>{{first}} {{last}}, {{dob}}</p>")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)
	values := writeFixture(t, dir, "values.json", `{"first": "Jane", "last": "Doe", "dob": "2000-01-15"}`)

	out, err := execute(t, "render", "-t", tmpl, "-f", fields, "--values", values)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<p>Jane Doe, 15 January 2000</p>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderCommand_PageToFile(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.md", "# {{first}}")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)
	target := filepath.Join(dir, "out.html")

	if _, err := execute(t, "render", "-t", tmpl, "-f", fields, "--active", "first", "--page", "--title", "Form", "-o", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	html := string(data)
	for _, want := range []string{"<title>Form</title>", `fp-field--blank`, `data-field="first"`, "<h1>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in page:\n%s", want, html)
		}
	}
}

func TestRenderCommand_RequiresTemplate(t *testing.T) {
	if _, err := execute(t, "render"); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func TestRenderCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "render", "-t", filepath.Join(t.TempDir(), "nope.html"))
	if err == nil || !strings.Contains(err.Error(), "source:") {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestRenderCommand_ThemeChangesHighlight(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.html", "<p>{{first}}</p>")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)
	values := writeFixture(t, dir, "values.json", `{"first": "Jane"}`)
	base := []string{"render", "-t", tmpl, "-f", fields, "--values", values, "--active", "first"}

	cases := []struct {
		name  string
		flags []string
		want  string
	}{
		{name: "default palette", want: "background-color:#DCFCE7"},
		{name: "contrast", flags: []string{"--theme", "contrast"}, want: "background-color:#FFFF00"},
		{name: "dark variant", flags: []string{"--theme-variant", "dark"}, want: "background-color:#14532D"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, append(tc.flags, base...)...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(out, tc.want) || !strings.Contains(out, ">Jane<") {
				t.Fatalf("expected %q in %q", tc.want, out)
			}
		})
	}
}

func TestRenderCommand_ThemeFallbackColor(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.html", "<p>{{extra}}</p>")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)

	out, err := execute(t, "--theme", "contrast", "render", "-t", tmpl, "-f", fields, "--active", "extra")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "background-color:#FFA500") {
		t.Fatalf("unknown field should use the themed fallback color: %q", out)
	}
}

func TestRenderCommand_ThemeManifest(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.html", "{{first}}")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)
	manifest := writeFixture(t, dir, "acme.yaml", "name: acme\nversion: 1.0.0\ntokens:\n  section.1.background: \"#ABCDEF\"\n")

	out, err := execute(t, "--theme-manifest", manifest, "render", "-t", tmpl, "-f", fields, "--active", "first")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "background-color:#ABCDEF") {
		t.Fatalf("manifest palette not applied: %q", out)
	}

	if _, err := execute(t, "--theme", "nope", "render", "-t", tmpl, "-f", fields); err == nil {
		t.Fatalf("expected unknown theme to fail")
	}
}

func TestSectionsCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.html", "{{first}}")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)
	aliases := writeFixture(t, dir, "aliases.yaml", "person: Applicant\n")

	out, err := execute(t, "sections", "-t", tmpl, "-f", fields, "--aliases", aliases, "--json")
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	var got []struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 2 || got[0].Name != "person" || got[0].Label != "Applicant" || got[1].Name != "dates" {
		t.Fatalf("unexpected sections: %+v", got)
	}
}

func TestSectionsCommand_Legend(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFixture(t, dir, "doc.html", "{{first}}")
	fields := writeFixture(t, dir, "fields.yaml", fieldsYAML)

	out, err := execute(t, "sections", "-t", tmpl, "-f", fields)
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	if !strings.Contains(out, "First name") || !strings.Contains(out, "Date of birth") {
		t.Fatalf("legend missing fields:\n%s", out)
	}
}

func TestRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.Server.BasePath = "/v1"
	a := &app{cfg: cfg, logger: zap.NewNop()}

	handler, svc, err := a.routes()
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/api/locations?q=bangkok")
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	var locs struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&locs); err != nil {
		t.Fatalf("decode locations: %v", err)
	}
	resp.Body.Close()
	if len(locs.Data) == 0 {
		t.Fatalf("expected bangkok in location results")
	}

	resp, err = http.Post(srv.URL+"/v1/api/previews", "application/json", strings.NewReader(`{"template": "<b>{{a}}</b>", "values": {"a": "x"}}`))
	if err != nil {
		t.Fatalf("create preview: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if svc.Store().Len() != 1 {
		t.Fatalf("expected one session")
	}
}
