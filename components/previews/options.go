package previews

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	SessionTTL   time.Duration
	MaxSessions  int
	MaxBodyBytes int64
	Sanitize     bool
	Guard        GuardFunc

	Engine         *preview.Engine
	Page           *page.Renderer
	SectionOptions []sections.Option
	Logger         *zap.Logger
	Clock          func() time.Time
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    "/api/previews",
		SessionTTL:   30 * time.Minute,
		MaxSessions:  1000,
		MaxBodyBytes: 4 << 20,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/previews"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 4 << 20
	}
	if opts.Engine == nil {
		opts.Engine = preview.NewEngine()
	}
	if opts.Page == nil {
		opts.Page = page.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

func WithSessionTTL(ttl time.Duration) OptionFn {
	return func(o *Options) { o.SessionTTL = ttl }
}

// WithMaxSessions caps concurrent sessions; zero means unlimited.
func WithMaxSessions(n int) OptionFn {
	return func(o *Options) { o.MaxSessions = n }
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) { o.MaxBodyBytes = n }
}

// WithSanitize runs every submitted template through the sanitizer.
func WithSanitize(enabled bool) OptionFn {
	return func(o *Options) { o.Sanitize = enabled }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

func WithEngine(engine *preview.Engine) OptionFn {
	return func(o *Options) { o.Engine = engine }
}

func WithPage(renderer *page.Renderer) OptionFn {
	return func(o *Options) { o.Page = renderer }
}

func WithSectionOptions(opts ...sections.Option) OptionFn {
	return func(o *Options) { o.SectionOptions = append(o.SectionOptions, opts...) }
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}

func WithClock(clock func() time.Time) OptionFn {
	return func(o *Options) { o.Clock = clock }
}
