package source

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a document lives.
type Source interface {
	Kind() Kind
	Location() string
}

// Kind enumerates the supported transports.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
)

type fileSource struct{ path string }

func (s fileSource) Kind() Kind       { return KindFile }
func (s fileSource) Location() string { return s.path }

// FromFile returns a Source for an on-disk path.
func FromFile(p string) Source {
	return fileSource{path: filepath.Clean(p)}
}

type fsSource struct{ name string }

func (s fsSource) Kind() Kind       { return KindFS }
func (s fsSource) Location() string { return s.name }

// FromFS returns a Source for an entry of the Loader's fs.FS.
func FromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct{ raw string }

func (s urlSource) Kind() Kind       { return KindURL }
func (s urlSource) Location() string { return s.raw }

// FromURL returns a Source for an HTTP(S) URL. It panics on an invalid URL so
// configuration mistakes surface at startup.
func FromURL(raw string) Source {
	if raw == "" {
		panic("source: empty URL")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("source: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

// Parse picks a Source for a command line style reference: http(s) URLs
// become URL sources, everything else a file source. An empty reference
// yields nil.
func Parse(ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if _, err := url.ParseRequestURI(ref); err != nil {
			return nil, fmt.Errorf("source: invalid URL %q: %w", ref, err)
		}
		return urlSource{raw: ref}, nil
	}
	return FromFile(ref), nil
}

// Ext returns the lower-cased extension of a source location, ignoring any
// URL query string.
func Ext(src Source) string {
	if src == nil {
		return ""
	}
	loc := src.Location()
	if src.Kind() == KindURL {
		if u, err := url.Parse(loc); err == nil {
			loc = u.Path
		}
		return strings.ToLower(path.Ext(loc))
	}
	return strings.ToLower(filepath.Ext(loc))
}
