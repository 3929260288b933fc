package previews_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/components/previews"
	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type state struct {
	ID         string `json:"id"`
	HTML       string `json:"html"`
	HasPreview bool   `json:"hasPreview"`
}

const createBody = `{
  "title": "Application",
  "template": "<p>{{first}} {{last}}</p>",
  "fields": {
    "first": {"label": "First name", "group": "person|1"},
    "last": {"label": "Last name", "group": "person|1"}
  },
  "values": {"first": "Jane"}
}`

var plainEngine = preview.NewEngine(preview.WithMarkers(preview.Markers{
	Blank: func(key string, _ sections.Color) string { return "[" + key + "]" },
	Highlight: func(key, value string, _ sections.Color) string {
		return "<" + key + ":" + value + ">"
	},
}))

func newServer(t *testing.T, fns ...previews.OptionFn) (*previews.Service, http.Handler) {
	t.Helper()
	fns = append([]previews.OptionFn{previews.WithEngine(plainEngine)}, fns...)
	svc := previews.NewService(fns...)
	return svc, svc.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) state {
	t.Helper()
	var out state
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func create(t *testing.T, h http.Handler, body string) state {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/previews", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeState(t, rec)
}

func TestCreate_RendersInitialState(t *testing.T) {
	_, h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/previews", createBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeState(t, rec)
	if got.ID == "" {
		t.Fatalf("expected session id")
	}
	if loc := rec.Header().Get("Location"); loc != "/api/previews/"+got.ID {
		t.Fatalf("unexpected location header %q", loc)
	}
	if !got.HasPreview || got.HTML != "<p>Jane </p>" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestCreate_MarkdownTemplate(t *testing.T) {
	_, h := newServer(t)
	got := create(t, h, `{"template": "# {{title}}", "format": "markdown", "values": {"title": "Hi"}}`)
	if strings.TrimSpace(got.HTML) != "<h1>Hi</h1>" {
		t.Fatalf("unexpected markdown render: %q", got.HTML)
	}
}

func TestCreate_BlankTemplateHasNoPreview(t *testing.T) {
	_, h := newServer(t)
	got := create(t, h, `{"template": "   "}`)
	if got.HasPreview || got.HTML != "" {
		t.Fatalf("expected empty preview, got %+v", got)
	}
}

func TestCreate_Sanitize(t *testing.T) {
	_, h := newServer(t, previews.WithSanitize(true))
	got := create(t, h, `{"template": "<p>{{a}}</p><script>alert(1)</script>", "values": {"a": "ok"}}`)
	if strings.Contains(got.HTML, "script") || !strings.Contains(got.HTML, "<p>ok</p>") {
		t.Fatalf("expected sanitized render, got %q", got.HTML)
	}
}

func TestCreate_BadRequests(t *testing.T) {
	_, h := newServer(t, previews.WithMaxBodyBytes(64))

	cases := map[string]string{
		"invalid json":   `{"template":`,
		"unknown field":  `{"template": "x", "bogus": 1}`,
		"bad format":     `{"template": "x", "format": "pdf"}`,
		"bad fields":     `{"template": "x", "fields": "nope"}`,
		"body too large": `{"template": "` + strings.Repeat("x", 128) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/previews", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("expected error payload, got %s", rec.Body.String())
			}
		})
	}
}

func TestUpdate_ReplacesValuesAndActiveField(t *testing.T) {
	_, h := newServer(t)
	created := create(t, h, createBody)

	rec := do(t, h, http.MethodPut, "/api/previews/"+created.ID+"/values",
		`{"values": {"first": "John", "last": "Smith"}, "activeField": "last"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeState(t, rec); got.HTML != "<p>John <last:Smith></p>" {
		t.Fatalf("unexpected render: %q", got.HTML)
	}

	rec = do(t, h, http.MethodPut, "/api/previews/"+created.ID+"/values", `{"values": {}}`)
	if got := decodeState(t, rec); got.HTML != "<p> [last]</p>" {
		t.Fatalf("expected active field kept and values replaced, got %q", got.HTML)
	}

	rec = do(t, h, http.MethodPut, "/api/previews/"+created.ID+"/values", `{"activeField": ""}`)
	if got := decodeState(t, rec); got.HTML != "<p> </p>" {
		t.Fatalf("expected active field cleared, got %q", got.HTML)
	}

	rec = do(t, h, http.MethodGet, "/api/previews/"+created.ID, "")
	if got := decodeState(t, rec); got.HTML != "<p> </p>" {
		t.Fatalf("get should return the last render, got %q", got.HTML)
	}
}

func TestSections(t *testing.T) {
	_, h := newServer(t)
	created := create(t, h, createBody)

	rec := do(t, h, http.MethodGet, "/api/previews/"+created.ID+"/sections", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Data []struct {
			Name   string `json:"name"`
			Fields []struct {
				Key   string `json:"key"`
				Label string `json:"label"`
			} `json:"fields"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Name != "person" {
		t.Fatalf("unexpected sections: %s", rec.Body.String())
	}
	var keys []string
	for _, f := range payload.Data[0].Fields {
		keys = append(keys, f.Key)
	}
	if diff := cmp.Diff([]string{"first", "last"}, keys); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_SectionOptionsColorHighlights(t *testing.T) {
	palette := sections.Palette{{Background: "#p0"}, {Background: "#p1"}}
	fallback := sections.Color{Background: "#fb"}
	colorEngine := preview.NewEngine(preview.WithMarkers(preview.Markers{
		Blank:     func(key string, c sections.Color) string { return "[" + key + c.Background + "]" },
		Highlight: func(key, value string, c sections.Color) string { return "<" + value + c.Background + ">" },
	}))
	_, h := newServer(t,
		previews.WithEngine(colorEngine),
		previews.WithSectionOptions(sections.WithPalette(palette), sections.WithFallbackColor(fallback)),
	)

	got := create(t, h, `{
  "template": "{{first}} {{other}}",
  "fields": {"first": {"group": "person|1"}},
  "values": {"first": "Jane"},
  "activeField": "first"
}`)
	if got.HTML != "<Jane#p1> " {
		t.Fatalf("unexpected themed highlight: %q", got.HTML)
	}

	got = create(t, h, `{"template": "{{other}}", "fields": {"first": {"group": "person|1"}}, "activeField": "other"}`)
	if got.HTML != "[other#fb]" {
		t.Fatalf("unexpected themed fallback: %q", got.HTML)
	}
}

func TestPage(t *testing.T) {
	_, h := newServer(t, previews.WithPage(page.New(page.WithLegendTitle("Fields"))))
	created := create(t, h, createBody)

	rec := do(t, h, http.MethodGet, "/api/previews/"+created.ID+"/page", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Application</title>", "<p>Jane </p>", "Fields", `data-field="first"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in page:\n%s", want, body)
		}
	}
}

func TestDelete(t *testing.T) {
	svc, h := newServer(t)
	created := create(t, h, createBody)

	if rec := do(t, h, http.MethodDelete, "/api/previews/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.Store().Len() != 0 {
		t.Fatalf("expected empty store")
	}
	if rec := do(t, h, http.MethodDelete, "/api/previews/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	_, h := newServer(t)
	for _, path := range []string{"/api/previews/nope", "/api/previews/nope/sections", "/api/previews/nope/page"} {
		if rec := do(t, h, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodPut, "/api/previews/nope/values", `{}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSessionTTL_SlidingExpiry(t *testing.T) {
	clock := newFakeClock()
	_, h := newServer(t, previews.WithSessionTTL(time.Minute), previews.WithClock(clock.Now))
	created := create(t, h, createBody)

	clock.Advance(50 * time.Second)
	if rec := do(t, h, http.MethodGet, "/api/previews/"+created.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected live session, got %d", rec.Code)
	}
	clock.Advance(50 * time.Second)
	if rec := do(t, h, http.MethodGet, "/api/previews/"+created.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected access to extend lifetime, got %d", rec.Code)
	}
	clock.Advance(time.Minute)
	if rec := do(t, h, http.MethodGet, "/api/previews/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected expired session, got %d", rec.Code)
	}
}

func TestMaxSessions(t *testing.T) {
	clock := newFakeClock()
	svc, h := newServer(t,
		previews.WithMaxSessions(1),
		previews.WithSessionTTL(time.Minute),
		previews.WithClock(clock.Now),
	)
	create(t, h, createBody)

	rec := do(t, h, http.MethodPost, "/api/previews", createBody)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	clock.Advance(2 * time.Minute)
	create(t, h, createBody)
	if svc.Store().Len() != 1 {
		t.Fatalf("expected the expired session to be swept, got %d", svc.Store().Len())
	}
}

type denied struct{}

func (denied) Error() string   { return "denied" }
func (denied) StatusCode() int { return http.StatusUnauthorized }

func TestGuard(t *testing.T) {
	_, h := newServer(t, previews.WithGuard(func(r *http.Request) error {
		if r.Header.Get("X-Token") == "secret" {
			return nil
		}
		if r.Header.Get("X-Token") == "" {
			return denied{}
		}
		return errors.New("forbidden")
	}))

	rec := do(t, h, http.MethodPost, "/api/previews", createBody)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/previews", strings.NewReader(createBody))
	req.Header.Set("X-Token", "wrong")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", out.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/previews", bytes.NewBufferString(createBody))
	req.Header.Set("X-Token", "secret")
	out = httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", out.Code)
	}
}

func TestRegisterRoutes_BasePath(t *testing.T) {
	svc := previews.NewService(previews.WithEngine(plainEngine))
	mux := http.NewServeMux()
	mounted, err := svc.RegisterRoutes(mux, "/v1/")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if mounted != "/v1/api/previews" {
		t.Fatalf("unexpected mount path %q", mounted)
	}
	rec := do(t, mux, http.MethodPost, "/v1/api/previews", createBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodGet, "/v1/api/previews", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on collection, got %d", rec.Code)
	}

	if _, err := svc.RegisterRoutes(nil, ""); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
