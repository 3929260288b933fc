package preview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithDeferral sets the window Run waits after a value update before
// rendering, coalescing every update that arrives inside it. Zero renders on
// the next scheduler tick.
func WithDeferral(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d >= 0 {
			c.deferral = d
		}
	}
}

// WithLogger attaches a logger for render diagnostics.
func WithLogger(logger *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnPublish registers a subscriber at construction time.
func WithOnPublish(fn func(PreviewState)) CoordinatorOption {
	return func(c *Coordinator) {
		if fn != nil {
			c.subs[c.nextSub] = fn
			c.nextSub++
		}
	}
}

// Coordinator owns when the engine runs. Template, definitions, colors and the
// active field re-render immediately; value updates are deferred and
// coalesced so only the latest snapshot of a burst renders. Publications are
// strictly ordered: a render never publishes after a newer one.
type Coordinator struct {
	engine   *Engine
	logger   *zap.Logger
	deferral time.Duration

	mu        sync.Mutex
	template  string
	defs      field.Set
	colors    sections.ColorMap
	active    string
	values    FormData
	gen       uint64
	published uint64
	pending   bool
	state     PreviewState
	subs      map[int]func(PreviewState)
	nextSub   int

	renderMu sync.Mutex
	wake     chan struct{}
}

// NewCoordinator constructs a Coordinator around engine (a default Engine when
// nil).
func NewCoordinator(engine *Engine, options ...CoordinatorOption) *Coordinator {
	if engine == nil {
		engine = NewEngine()
	}
	c := &Coordinator{
		engine: engine,
		logger: zap.NewNop(),
		values: FormData{},
		subs:   make(map[int]func(PreviewState)),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// SetTemplate replaces the raw template and re-renders.
func (c *Coordinator) SetTemplate(template string) {
	c.mutate(func() { c.template = template })
}

// SetDefinitions replaces the field definitions and re-renders.
func (c *Coordinator) SetDefinitions(defs field.Set) {
	c.mutate(func() { c.defs = defs })
}

// SetColors replaces the field color map and re-renders.
func (c *Coordinator) SetColors(colors sections.ColorMap) {
	c.mutate(func() { c.colors = colors })
}

// SetActiveField changes the focused field and re-renders.
func (c *Coordinator) SetActiveField(key string) {
	c.mutate(func() { c.active = key })
}

// UpdateValues records a new form-data snapshot for deferred rendering. The
// snapshot is copied; callers may keep mutating their map.
func (c *Coordinator) UpdateValues(values FormData) {
	c.mu.Lock()
	c.values = values.Clone()
	c.gen++
	c.pending = true
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run renders deferred value updates until ctx is done. It returns ctx.Err().
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
		}

		if c.deferral > 0 {
			timer := time.NewTimer(c.deferral)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		c.Flush()
	}
}

// Flush synchronously renders a pending value snapshot, if any.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if pending {
		c.render()
	}
}

// State returns the most recent publication.
func (c *Coordinator) State() PreviewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every publication and returns a cancel func.
// Subscribers run synchronously in publication order and must not call the
// Set methods of the same Coordinator.
func (c *Coordinator) Subscribe(fn func(PreviewState)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.gen++
	c.mu.Unlock()
	c.render()
}

func (c *Coordinator) render() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	gen := c.gen
	template := c.template
	values := c.values
	defs := c.defs
	colors := c.colors
	active := c.active
	c.pending = false
	c.mu.Unlock()

	started := time.Now()
	state := PreviewState{HasPreview: HasPreview(template)}
	if state.HasPreview {
		state.HTML = c.engine.Render(template, values, defs, colors, active)
	}

	c.mu.Lock()
	if gen <= c.published {
		c.mu.Unlock()
		return
	}
	c.published = gen
	c.state = state
	subs := make([]func(PreviewState), 0, len(c.subs))
	for id := 0; id < c.nextSub; id++ {
		if fn, ok := c.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	c.mu.Unlock()

	c.logger.Debug("preview rendered",
		zap.Uint64("generation", gen),
		zap.Bool("has_preview", state.HasPreview),
		zap.Int("bytes", len(state.HTML)),
		zap.Duration("elapsed", time.Since(started)),
	)

	for _, fn := range subs {
		fn(state)
	}
}
