package previews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
	"github.com/goliatone/go-formpreview/pkg/source"
)

// Mux is satisfied by *http.ServeMux (Go 1.22 patterns).
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Service owns the session store and the HTTP handlers.
type Service struct {
	opts  Options
	store *Store
}

// NewService constructs a service with default options plus any overrides.
func NewService(fns ...OptionFn) *Service {
	opts := NewOptions(fns...)
	return &Service{
		opts:  opts,
		store: NewStore(opts.SessionTTL, opts.MaxSessions, opts.Clock),
	}
}

// Store exposes the session store.
func (s *Service) Store() *Store { return s.store }

// Handler returns a handler serving the routes at the configured route path.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	_, _ = s.RegisterRoutes(mux, "")
	return mux
}

// RegisterRoutes registers every route under basePath and returns the mount
// path.
func (s *Service) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("previews: missing mux")
	}
	root := joinPath(basePath, s.opts.RoutePath)
	routes := []struct {
		method string
		suffix string
		fn     http.HandlerFunc
	}{
		{http.MethodPost, "", s.create},
		{http.MethodGet, "/{id}", s.get},
		{http.MethodPut, "/{id}/values", s.update},
		{http.MethodGet, "/{id}/sections", s.sections},
		{http.MethodGet, "/{id}/page", s.page},
		{http.MethodDelete, "/{id}", s.delete},
	}
	for _, route := range routes {
		mux.Handle(route.method+" "+root+route.suffix, s.guard(route.fn))
	}
	return root, nil
}

// Run sweeps expired sessions until ctx is done and returns ctx.Err().
func (s *Service) Run(ctx context.Context) error {
	interval := s.opts.SessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.opts.Logger.Debug("expired preview sessions", zap.Int("count", n))
			}
		}
	}
}

type createRequest struct {
	Title       string            `json:"title"`
	Template    string            `json:"template"`
	Format      string            `json:"format"`
	Fields      json.RawMessage   `json:"fields"`
	Aliases     map[string]string `json:"aliases"`
	Values      map[string]string `json:"values"`
	ActiveField string            `json:"activeField"`
}

type updateRequest struct {
	Values      map[string]string `json:"values"`
	ActiveField *string           `json:"activeField"`
}

type stateResponse struct {
	ID         string `json:"id"`
	HTML       string `json:"html"`
	HasPreview bool   `json:"hasPreview"`
}

type sectionsResponse struct {
	Data []sections.Section `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ext := ".html"
	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "", "html":
	case "markdown", "md":
		ext = ".md"
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("previews: unsupported format %q", req.Format))
		return
	}
	tmpl, err := source.Template([]byte(req.Template), ext, s.opts.Sanitize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	defs := field.NewSet()
	if raw := strings.TrimSpace(string(req.Fields)); raw != "" && raw != "null" {
		defs, err = field.DecodeJSON(req.Fields)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	built := sections.Build(defs, req.Aliases, s.opts.SectionOptions...)
	coord := preview.NewCoordinator(s.opts.Engine, preview.WithLogger(s.opts.Logger))
	coord.SetDefinitions(defs)
	coord.SetColors(sections.BuildFieldColorMap(built, s.opts.SectionOptions...))
	coord.UpdateValues(req.Values)
	coord.SetActiveField(req.ActiveField)
	coord.SetTemplate(tmpl)

	session := &Session{Title: req.Title, Coord: coord, Defs: defs, Sections: built}
	if err := s.store.Add(session); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.opts.Logger.Info("preview session created",
		zap.String("id", session.ID),
		zap.Int("fields", defs.Len()),
		zap.Int("sections", len(built)),
	)

	w.Header().Set("Location", r.URL.Path+"/"+session.ID)
	writeJSON(w, http.StatusCreated, state(session))
}

func (s *Service) get(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, state(session))
}

func (s *Service) update(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Values != nil {
		session.Coord.UpdateValues(req.Values)
	}
	if req.ActiveField != nil {
		session.Coord.SetActiveField(*req.ActiveField)
	}
	session.Coord.Flush()
	writeJSON(w, http.StatusOK, state(session))
}

func (s *Service) sections(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data := session.Sections
	if data == nil {
		data = []sections.Section{}
	}
	writeJSON(w, http.StatusOK, sectionsResponse{Data: data})
}

func (s *Service) page(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}
	current := session.Coord.State()
	html, err := s.opts.Page.Render(page.Page{
		Title:      session.Title,
		Body:       current.HTML,
		HasPreview: current.HasPreview,
		Sections:   session.Sections,
	})
	if err != nil {
		s.opts.Logger.Error("render preview page", zap.String("id", session.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Service) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.opts.Logger.Info("preview session deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return session, true
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, out any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("previews: decode request: %w", err)
	}
	return nil
}

func (s *Service) guard(next http.HandlerFunc) http.Handler {
	if s.opts.Guard == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.opts.Guard(r); err != nil {
			code := http.StatusForbidden
			var status interface{ StatusCode() int }
			if errors.As(err, &status) && status.StatusCode() > 0 {
				code = status.StatusCode()
			}
			writeError(w, code, errors.New(http.StatusText(code)))
			return
		}
		next(w, r)
	})
}

func state(session *Session) stateResponse {
	current := session.Coord.State()
	return stateResponse{ID: session.ID, HTML: current.HTML, HasPreview: current.HasPreview}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func joinPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = "/" + strings.Trim(strings.TrimSpace(routePath), "/")
	if basePath == "" || basePath == "/" {
		return routePath
	}
	return "/" + strings.Trim(basePath, "/") + routePath
}
