package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// FileSystem serves KindFS sources.
	FileSystem fs.FS
	// HTTPClient serves KindURL sources. When nil and AllowHTTP is set a
	// client with RequestTimeout is created.
	HTTPClient *http.Client
	// AllowHTTP enables KindURL sources.
	AllowHTTP bool
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration
	// MaxBytes caps how much is read from any source. Zero means
	// DefaultMaxBytes.
	MaxBytes int64
}

// DefaultMaxBytes is the read cap applied when LoaderOptions.MaxBytes is zero.
const DefaultMaxBytes int64 = 8 << 20

// Loader reads raw documents from files, an fs.FS or HTTP.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
}

// NewLoader constructs a Loader.
func NewLoader(options LoaderOptions) *Loader {
	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		client = &clone
	case options.AllowHTTP:
		client = &http.Client{Timeout: options.RequestTimeout}
	}

	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		fs:       options.FileSystem,
		http:     client,
		timeout:  options.RequestTimeout,
		maxBytes: maxBytes,
	}
}

// Load reads the document behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("source: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case KindFile:
		data, err = l.loadFile(src.Location())
	case KindFS:
		data, err = l.loadFS(src.Location())
	case KindURL:
		data, err = l.loadHTTP(ctx, src.Location())
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("source: load %s %q: %w", src.Kind(), src.Location(), err)
	}
	return data, nil
}

func (l *Loader) loadFile(p string) ([]byte, error) {
	if p == "" || p == "." {
		return nil, errors.New("file path is required")
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readAll(f)
}

func (l *Loader) loadFS(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("fs path is required")
	}
	if l.fs == nil {
		return nil, errors.New("no file system configured")
	}
	f, err := l.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readAll(f)
}

func (l *Loader) loadHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("http support disabled")
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return l.readAll(resp.Body)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}
