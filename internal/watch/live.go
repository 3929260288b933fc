package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
	"github.com/goliatone/go-formpreview/pkg/source"
)

// Inputs are the files behind a live preview. Template is required.
type Inputs struct {
	Template    string
	Definitions string
	Aliases     string
	DataTypes   string
	Values      string
	Sanitize    bool
}

// Live keeps a coordinator in sync with its input files.
type Live struct {
	loader      *source.Loader
	inputs      Inputs
	coord       *preview.Coordinator
	logger      *zap.Logger
	sectionOpts []sections.Option
	watchOpts   []Option

	mu       sync.Mutex
	sections []sections.Section
}

// LiveOption configures a Live binding.
type LiveOption func(*Live)

// WithSectionOptions forwards options to sections.Build.
func WithSectionOptions(opts ...sections.Option) LiveOption {
	return func(l *Live) {
		l.sectionOpts = append(l.sectionOpts, opts...)
	}
}

// WithWatchOptions forwards options to the file Watcher.
func WithWatchOptions(opts ...Option) LiveOption {
	return func(l *Live) {
		l.watchOpts = append(l.watchOpts, opts...)
	}
}

// WithLiveLogger attaches a logger.
func WithLiveLogger(logger *zap.Logger) LiveOption {
	return func(l *Live) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLive binds inputs to coord.
func NewLive(loader *source.Loader, inputs Inputs, coord *preview.Coordinator, opts ...LiveOption) *Live {
	l := &Live{
		loader: loader,
		inputs: inputs,
		coord:  coord,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Sections returns the sections of the last loaded definitions.
func (l *Live) Sections() []sections.Section {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sections.Section(nil), l.sections...)
}

// Reload loads every input and pushes it into the coordinator. Values are
// flushed so the preview is current when Reload returns.
func (l *Live) Reload(ctx context.Context) error {
	if err := l.reloadBundle(ctx); err != nil {
		return err
	}
	if err := l.reloadValues(ctx); err != nil {
		return err
	}
	l.coord.Flush()
	return nil
}

// Run reloads everything, then follows file changes until ctx is done. It
// returns ctx.Err() on cancellation or the first load error at startup.
func (l *Live) Run(ctx context.Context) error {
	if err := l.Reload(ctx); err != nil {
		return err
	}

	w, err := New(l.paths(), append([]Option{WithLogger(l.logger)}, l.watchOpts...)...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.coord.Run(gctx)
	})
	g.Go(func() error {
		return w.Run(gctx, func(changed []string) {
			l.handle(gctx, changed)
		})
	})
	return g.Wait()
}

func (l *Live) paths() []string {
	return []string{l.inputs.Template, l.inputs.Definitions, l.inputs.Aliases, l.inputs.DataTypes, l.inputs.Values}
}

func (l *Live) handle(ctx context.Context, changed []string) {
	valuesOnly := true
	for _, p := range changed {
		if !samePath(p, l.inputs.Values) {
			valuesOnly = false
		}
	}

	if !valuesOnly {
		if err := l.reloadBundle(ctx); err != nil {
			// keep the previous preview on a broken edit
			l.logger.Warn("reload failed", zap.Error(err))
			return
		}
	}
	for _, p := range changed {
		if samePath(p, l.inputs.Values) {
			if err := l.reloadValues(ctx); err != nil {
				l.logger.Warn("reload values failed", zap.Error(err))
			}
		}
	}
}

func (l *Live) reloadBundle(ctx context.Context) error {
	req := source.BundleRequest{
		Template: source.FromFile(l.inputs.Template),
		Sanitize: l.inputs.Sanitize,
	}
	if l.inputs.Definitions != "" {
		req.Definitions = source.FromFile(l.inputs.Definitions)
	}
	if l.inputs.Aliases != "" {
		req.Aliases = source.FromFile(l.inputs.Aliases)
	}
	if l.inputs.DataTypes != "" {
		req.DataTypes = source.FromFile(l.inputs.DataTypes)
	}

	bundle, err := source.LoadBundle(ctx, l.loader, req)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	built := sections.Build(bundle.Definitions, bundle.Aliases, l.sectionOpts...)
	l.mu.Lock()
	l.sections = built
	l.mu.Unlock()

	l.coord.SetDefinitions(bundle.Definitions)
	l.coord.SetColors(sections.BuildFieldColorMap(built, l.sectionOpts...))
	l.coord.SetTemplate(bundle.HTML)
	l.logger.Debug("bundle reloaded",
		zap.String("template", l.inputs.Template),
		zap.Int("fields", bundle.Definitions.Len()),
		zap.Int("sections", len(built)),
	)
	return nil
}

func (l *Live) reloadValues(ctx context.Context) error {
	if l.inputs.Values == "" {
		return nil
	}
	data, err := l.loader.Load(ctx, source.FromFile(l.inputs.Values))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	values, err := source.ParseFormData(data)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	l.coord.UpdateValues(values)
	return nil
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
