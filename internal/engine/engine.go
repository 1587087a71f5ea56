// Package engine runs the per-frame loop that coordinates progressive
// loading, physics relaxation, and frame production over one shared node
// store. All component mutation happens on the loop goroutine; external
// callers enqueue commands that are drained at the start of the next tick,
// keeping the single-writer discipline of the underlying packages intact.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"taxograph/internal/domain"
	"taxograph/internal/interact"
	"taxograph/internal/loader"
	"taxograph/internal/physics"
	"taxograph/internal/render"
	"taxograph/internal/store"
	"taxograph/internal/viewport"
)

// Options aggregates component tuning for one engine instance
type Options struct {
	Width     float64
	Height    float64
	FrameRate int // ticks per second for Run; default 30

	Viewport viewport.Options
	Loader   loader.Options
	Physics  physics.Options
	Render   render.Options
	Interact interact.Options
}

// DefaultOptions returns the standard engine tuning
func DefaultOptions() Options {
	return Options{
		Width:     1280,
		Height:    720,
		FrameRate: 30,
		Viewport:  viewport.DefaultOptions(),
		Loader:    loader.DefaultOptions(),
		Physics:   physics.DefaultOptions(),
		Render:    render.DefaultOptions(),
		Interact:  interact.DefaultOptions(),
	}
}

// Engine owns the session state for one dataset. It is safe for concurrent
// use: mutating calls are queued onto the loop, snapshot reads are served
// from copies refreshed at the end of every tick.
type Engine struct {
	opts Options

	store *store.Store
	vp    *viewport.Controller
	load  *loader.Loader
	sim   *physics.Simulator
	rend  *render.Renderer
	ctrl  *interact.Controller

	mu       sync.Mutex
	queue    []func()
	frame    *render.Frame
	progress domain.Progress
	warnings []domain.Warning

	onFrame    []func(*render.Frame)
	onProgress []func(domain.Progress)
	onViewport []func(domain.Viewport)
	onHover    []func(*domain.Node)
	onClick    []func(*domain.Node)
	onSelect   []func([]*domain.Node)
}

// New creates an engine and primes it with a dataset
func New(ds *domain.Dataset, opts Options) *Engine {
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultOptions().FrameRate
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions().Width, DefaultOptions().Height
	}
	e := &Engine{opts: opts}
	e.install(ds)
	return e
}

// install rebuilds every component around a fresh store. Runs on the loop
// goroutine (or before the loop starts).
func (e *Engine) install(ds *domain.Dataset) {
	s := store.Build(ds)
	vp := viewport.New(e.opts.Width, e.opts.Height, e.opts.Viewport)
	ld := loader.New(s, e.opts.Loader)
	sim := physics.New(s, e.opts.Physics)
	rend := render.New(s, e.opts.Render)
	ctrl := interact.New(s, rend, vp, sim, e.opts.Interact)

	vp.OnRecompute(func(v domain.Viewport) {
		ld.ViewportChanged(v)
	})
	ld.OnLoad(func(added []*domain.Node) {
		sim.Reheat()
	})

	// subscriptions survive dataset swaps; the fresh components forward into
	// the engine-held lists
	vp.OnChange(func(v domain.Viewport) {
		for _, fn := range e.onViewport {
			fn(v)
		}
	})
	ctrl.OnHover(func(n *domain.Node) {
		for _, fn := range e.onHover {
			fn(n)
		}
	})
	ctrl.OnClick(func(n *domain.Node) {
		for _, fn := range e.onClick {
			fn(n)
		}
	})
	ctrl.OnSelectionChange(func(ns []*domain.Node) {
		for _, fn := range e.onSelect {
			fn(ns)
		}
	})

	e.store = s
	e.vp = vp
	e.load = ld
	e.sim = sim
	e.rend = rend
	e.ctrl = ctrl

	e.mu.Lock()
	e.warnings = s.Warnings()
	e.mu.Unlock()

	for _, w := range s.Warnings() {
		log.Printf("dataset warning: %s: %s", w.Kind, w.Detail)
	}
	log.Printf("engine: dataset installed, %d nodes, %d edges, %d warnings",
		s.NodeCount(), s.EdgeCount(), len(s.Warnings()))

	// initial viewport publication starts the core-level stream
	vp.SetTransform(0, 0, 1)
}

// OnFrame subscribes to the frame produced at the end of every tick.
// Subscribe before Run; callbacks fire on the loop goroutine.
func (e *Engine) OnFrame(fn func(*render.Frame)) {
	e.onFrame = append(e.onFrame, fn)
}

// OnProgress subscribes to the loading snapshot refreshed every tick
func (e *Engine) OnProgress(fn func(domain.Progress)) {
	e.onProgress = append(e.onProgress, fn)
}

// OnViewportChange subscribes to transform updates, for external zoom
// controls and breadcrumbs
func (e *Engine) OnViewportChange(fn func(domain.Viewport)) {
	e.onViewport = append(e.onViewport, fn)
}

// OnHover subscribes to hover changes; the callback receives the full node
// record, or nil on hover exit
func (e *Engine) OnHover(fn func(*domain.Node)) {
	e.onHover = append(e.onHover, fn)
}

// OnClick subscribes to node clicks
func (e *Engine) OnClick(fn func(*domain.Node)) {
	e.onClick = append(e.onClick, fn)
}

// OnSelectionChange subscribes to selection updates
func (e *Engine) OnSelectionChange(fn func([]*domain.Node)) {
	e.onSelect = append(e.onSelect, fn)
}

// Do queues a command for the next tick
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
}

// Tick advances the session by one frame: queued commands, zoom animation,
// one load batch, one physics step, then frame production.
func (e *Engine) Tick() {
	e.mu.Lock()
	cmds := e.queue
	e.queue = nil
	e.mu.Unlock()
	for _, fn := range cmds {
		fn()
	}

	e.ctrl.Tick()
	e.load.Tick()
	e.sim.Step()

	frame := e.rend.Render(e.vp.View(), e.ctrl.HoverID(), e.ctrl.Selected())
	progress := e.load.Progress()

	e.mu.Lock()
	e.frame = frame
	e.progress = progress
	e.mu.Unlock()

	for _, fn := range e.onFrame {
		fn(frame)
	}
	for _, fn := range e.onProgress {
		fn(progress)
	}
}

// Run ticks the engine at the configured frame rate until the context is
// cancelled
func (e *Engine) Run(ctx context.Context) {
	interval := time.Second / time.Duration(e.opts.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("engine: loop started at %d fps", e.opts.FrameRate)
	for {
		select {
		case <-ctx.Done():
			log.Printf("engine: loop stopped")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Frame returns the most recent draw list. The returned frame is read-only.
func (e *Engine) Frame() *render.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Progress returns the most recent loading snapshot
func (e *Engine) Progress() domain.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Warnings returns the advisory construction warnings for the current dataset
func (e *Engine) Warnings() []domain.Warning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warnings
}

// LoadDataset replaces the session with a new dataset. The previous store and
// all session state are discarded wholesale.
func (e *Engine) LoadDataset(ds *domain.Dataset) {
	e.Do(func() {
		e.install(ds)
	})
}

// ResetSession clears loaded/position state for the current dataset without
// replacing it
func (e *Engine) ResetSession() {
	e.Do(func() {
		e.store.ResetSession()
		e.load.Reset()
		e.sim.Reheat()
		e.vp.Reset()
	})
}

// SetSize updates the display extent
func (e *Engine) SetSize(width, height float64) {
	e.Do(func() { e.vp.SetSize(width, height) })
}

// ZoomIn zooms one step about the viewport center
func (e *Engine) ZoomIn() {
	e.Do(func() { e.vp.ZoomStep(1.2) })
}

// ZoomOut zooms one step about the viewport center
func (e *Engine) ZoomOut() {
	e.Do(func() { e.vp.ZoomStep(1 / 1.2) })
}

// ResetView restores the identity transform
func (e *Engine) ResetView() {
	e.Do(func() { e.vp.Reset() })
}

// FitToView computes and applies the transform that fits all currently
// loaded nodes
func (e *Engine) FitToView() {
	e.Do(func() {
		rect, ok := e.rend.Bounds()
		if !ok {
			return
		}
		e.vp.FitTo(rect, 40)
	})
}

// ForceLoad loads the given ids regardless of level predicates and caps
func (e *Engine) ForceLoad(ids []string) {
	e.Do(func() { e.load.ForceInclude(ids) })
}

// ZoomToNode starts an animated zoom centering the node
func (e *Engine) ZoomToNode(id string) {
	e.Do(func() {
		if !e.ctrl.ZoomToNode(id) {
			log.Printf("engine: zoom-to-node ignored, %q not loaded", id)
		}
	})
}

// PointerDown injects a press event
func (e *Engine) PointerDown(sx, sy float64) {
	e.Do(func() { e.ctrl.PointerDown(sx, sy) })
}

// PointerMove injects a move event
func (e *Engine) PointerMove(sx, sy float64) {
	e.Do(func() { e.ctrl.PointerMove(sx, sy) })
}

// PointerUp injects a release event
func (e *Engine) PointerUp(sx, sy float64, additive bool) {
	e.Do(func() { e.ctrl.PointerUp(sx, sy, additive) })
}

// Wheel injects a scroll-zoom event about a screen anchor
func (e *Engine) Wheel(sx, sy, factor float64) {
	e.Do(func() { e.ctrl.Wheel(sx, sy, factor) })
}
