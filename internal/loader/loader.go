// Package loader implements progressive, frame-budgeted streaming of taxonomy
// nodes into the active set. The zoom scale selects a loading level; each
// viewport change recomputes the level's candidate set, diffs it against the
// loaded set, and streams only the additions in fixed-size batches. A
// generation counter invalidates in-flight streams when the viewport changes
// or the session resets.
package loader

import (
	"math/rand"
	"sort"
	"time"

	"taxograph/internal/domain"
	"taxograph/internal/store"
)

// Options tunes the progressive loader
type Options struct {
	Thresholds   []Threshold
	CoreCap      int
	ViewportCap  int
	ConnectedCap int
	BatchSize    int
	MinFPS       float64 // below this implied frame rate, streaming backs off
	MarginPx     float64 // viewport predicate margin, screen pixels
	SeedJitter   float64 // world-unit jitter around the seed anchor
	Radius       domain.RadiusScale
	Seed         int64 // rng seed for reproducible jitter
}

// DefaultOptions returns the standard loader tuning
func DefaultOptions() Options {
	return Options{
		Thresholds:   DefaultThresholds(),
		CoreCap:      100,
		ViewportCap:  500,
		ConnectedCap: 2000,
		BatchSize:    50,
		MinFPS:       20,
		MarginPx:     100,
		SeedJitter:   10,
		Radius:       domain.DefaultRadiusScale(),
		Seed:         1,
	}
}

// LoadFunc receives each applied batch of newly loaded nodes
type LoadFunc func(added []*domain.Node)

// ProgressFunc receives a progress snapshot after loader state changes
type ProgressFunc func(domain.Progress)

// Loader streams nodes into the loaded set. It is the single writer of the
// Loaded flag and runs entirely on the engine loop; it is not safe for
// concurrent use.
type Loader struct {
	store *store.Store
	opts  Options

	view    domain.Viewport
	hasView bool

	generation uint64
	pending    []string
	pendingGen uint64

	forcedSet map[string]struct{}
	forced    []string

	throttled bool
	lastBatch time.Time

	onLoad     []LoadFunc
	onProgress []ProgressFunc

	rng *rand.Rand
	now func() time.Time
}

// New creates a loader over a built store
func New(s *store.Store, opts Options) *Loader {
	def := DefaultOptions()
	if len(opts.Thresholds) == 0 {
		opts.Thresholds = def.Thresholds
	}
	if opts.CoreCap <= 0 {
		opts.CoreCap = def.CoreCap
	}
	if opts.ViewportCap <= 0 {
		opts.ViewportCap = def.ViewportCap
	}
	if opts.ConnectedCap <= 0 {
		opts.ConnectedCap = def.ConnectedCap
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.MinFPS <= 0 {
		opts.MinFPS = def.MinFPS
	}
	if opts.MarginPx <= 0 {
		opts.MarginPx = def.MarginPx
	}
	if opts.SeedJitter <= 0 {
		opts.SeedJitter = def.SeedJitter
	}
	if opts.Radius == (domain.RadiusScale{}) {
		opts.Radius = def.Radius
	}
	return &Loader{
		store:     s,
		opts:      opts,
		forcedSet: make(map[string]struct{}),
		rng:       rand.New(rand.NewSource(opts.Seed)),
		now:       time.Now,
	}
}

// OnLoad subscribes to applied batches
func (l *Loader) OnLoad(fn LoadFunc) {
	l.onLoad = append(l.onLoad, fn)
}

// OnProgress subscribes to progress snapshots
func (l *Loader) OnProgress(fn ProgressFunc) {
	l.onProgress = append(l.onProgress, fn)
}

// Generation returns the current generation counter
func (l *Loader) Generation() uint64 {
	return l.generation
}

// CurrentLevel returns the active level for the last seen viewport
func (l *Loader) CurrentLevel() Level {
	if !l.hasView {
		return LevelCore
	}
	return LevelForScale(l.opts.Thresholds, l.view.Scale)
}

// ViewportChanged recomputes the candidate set for the new transform. Any
// in-flight stream from the prior generation is invalidated.
func (l *Loader) ViewportChanged(v domain.Viewport) {
	l.view = v
	l.hasView = true
	l.generation++
	l.recompute()
}

// ForceInclude marks ids to load regardless of level predicates and caps
// (e.g. externally matched search results)
func (l *Loader) ForceInclude(ids []string) {
	added := false
	for _, id := range ids {
		if _, ok := l.store.Node(id); !ok {
			continue
		}
		if _, dup := l.forcedSet[id]; dup {
			continue
		}
		l.forcedSet[id] = struct{}{}
		l.forced = append(l.forced, id)
		added = true
	}
	if added && l.hasView {
		l.recompute()
	}
}

// Reset clears all loaded state and invalidates in-flight streams
func (l *Loader) Reset() {
	l.generation++
	l.pending = nil
	l.forcedSet = make(map[string]struct{})
	l.forced = nil
	l.throttled = false
	l.lastBatch = time.Time{}
	for _, n := range l.store.Nodes() {
		n.Loaded = false
	}
	l.notifyProgress()
}

// Progress returns a loading snapshot
func (l *Loader) Progress() domain.Progress {
	return domain.Progress{
		LoadedCount:  l.store.LoadedCount(),
		PendingCount: len(l.pending),
		TotalCount:   l.store.NodeCount(),
		CurrentLevel: l.CurrentLevel().String(),
		Throttled:    l.throttled,
	}
}

// Tick applies at most one batch from the pending stream. Called once per
// scheduling opportunity by the engine loop. If the elapsed time since the
// previous batch implies a frame rate below MinFPS, the tick backs off
// instead of streaming; this is throttling, not an error.
func (l *Loader) Tick() {
	if len(l.pending) == 0 {
		return
	}
	// Stale streams from a prior generation are discarded, never applied.
	if l.pendingGen != l.generation {
		l.pending = nil
		return
	}
	if !l.lastBatch.IsZero() {
		if elapsed := l.now().Sub(l.lastBatch); elapsed > l.frameBudget() {
			l.throttled = true
			l.lastBatch = time.Time{} // consume the signal, resume next tick
			l.notifyProgress()
			return
		}
	}
	l.applyBatch()
}

func (l *Loader) frameBudget() time.Duration {
	return time.Duration(float64(time.Second) / l.opts.MinFPS)
}

// recompute rebuilds the pending stream from the current level's candidates,
// in sorted candidate order, minus the already-loaded set
func (l *Loader) recompute() {
	level := LevelForScale(l.opts.Thresholds, l.view.Scale)
	candidates := l.candidates(level)

	// A fresh stream after an idle gap starts with a clean throttle clock;
	// elapsed idle time says nothing about frame cost.
	if len(l.pending) == 0 {
		l.lastBatch = time.Time{}
	}

	pending := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if n, ok := l.store.Node(id); ok && !n.Loaded {
			pending = append(pending, id)
		}
	}
	l.pending = pending
	l.pendingGen = l.generation
	l.notifyProgress()
}

// candidates resolves the candidate id list for a level. Levels are applied
// in order with first-match-wins: a node admitted by an earlier level is not
// re-evaluated by a later one, and each cap bounds only its own level's
// admissions. Forced includes come first and bypass both predicates and caps.
func (l *Loader) candidates(level Level) []string {
	admitted := make(map[string]struct{}, l.store.NodeCount())
	out := make([]string, 0, l.store.NodeCount())
	admit := func(id string) {
		if _, dup := admitted[id]; dup {
			return
		}
		admitted[id] = struct{}{}
		out = append(out, id)
	}

	for _, id := range l.forced {
		admit(id)
	}

	ranked := l.priorityOrder()

	// Core: top-priority nodes regardless of viewport.
	count := 0
	for _, n := range ranked {
		if count >= l.opts.CoreCap {
			break
		}
		if _, dup := admitted[n.ID]; dup {
			continue
		}
		admit(n.ID)
		count++
	}

	if level >= LevelViewport {
		rect := l.view.VisibleRect(l.opts.MarginPx / l.view.Scale)
		count = 0
		for _, n := range ranked {
			if count >= l.opts.ViewportCap {
				break
			}
			if _, dup := admitted[n.ID]; dup {
				continue
			}
			if !rect.IntersectsCircle(n.X, n.Y, l.opts.Radius.Radius(n.Weight)) {
				continue
			}
			admit(n.ID)
			count++
		}
	}

	if level >= LevelConnected {
		count = 0
		for _, n := range ranked {
			if count >= l.opts.ConnectedCap {
				break
			}
			if _, dup := admitted[n.ID]; dup {
				continue
			}
			if !l.touchesActive(n.ID, admitted) {
				continue
			}
			admit(n.ID)
			count++
		}
	}

	if level >= LevelAll {
		for _, n := range ranked {
			admit(n.ID)
		}
	}

	return out
}

// touchesActive reports whether any neighbor is loaded or already admitted
func (l *Loader) touchesActive(id string, admitted map[string]struct{}) bool {
	for _, neighbor := range l.store.Neighbors(id) {
		if _, ok := admitted[neighbor]; ok {
			return true
		}
		if n, ok := l.store.Node(neighbor); ok && n.Loaded {
			return true
		}
	}
	return false
}

// priorityOrder returns all nodes sorted by (depth asc, score desc,
// weight desc), with id as the final tiebreak for determinism
func (l *Loader) priorityOrder() []*domain.Node {
	nodes := l.store.Nodes()
	ranked := make([]*domain.Node, len(nodes))
	copy(ranked, nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return a.ID < b.ID
	})
	return ranked
}

func (l *Loader) applyBatch() {
	size := l.opts.BatchSize
	if size > len(l.pending) {
		size = len(l.pending)
	}
	batch := l.pending[:size]
	l.pending = l.pending[size:]

	added := make([]*domain.Node, 0, size)
	for _, id := range batch {
		n, ok := l.store.Node(id)
		if !ok || n.Loaded {
			continue
		}
		l.seed(n)
		n.Loaded = true
		added = append(added, n)
	}
	l.lastBatch = l.now()
	l.throttled = false

	if len(added) > 0 {
		for _, fn := range l.onLoad {
			fn(added)
		}
	}
	l.notifyProgress()
}

// seed places a newly streamed node near its parent's current position with
// small jitter, falling back to the centroid of loaded nodes, so it does not
// pop in at the origin. Nodes that already carry a position (from the dataset
// or a prior load cycle) keep it.
func (l *Loader) seed(n *domain.Node) {
	n.VX, n.VY = 0, 0
	if n.X != 0 || n.Y != 0 {
		return
	}
	var ax, ay float64
	anchored := false
	if n.ParentID != "" {
		if p, ok := l.store.Node(n.ParentID); ok && p.Loaded {
			ax, ay = p.X, p.Y
			anchored = true
		}
	}
	if !anchored {
		// Origin remains the anchor for the very first batch.
		ax, ay, _ = l.loadedCentroid()
	}
	n.X = ax + (l.rng.Float64()*2-1)*l.opts.SeedJitter
	n.Y = ay + (l.rng.Float64()*2-1)*l.opts.SeedJitter
}

func (l *Loader) loadedCentroid() (float64, float64, bool) {
	var sx, sy float64
	count := 0
	for _, n := range l.store.Nodes() {
		if !n.Loaded {
			continue
		}
		sx += n.X
		sy += n.Y
		count++
	}
	if count == 0 {
		return 0, 0, false
	}
	return sx / float64(count), sy / float64(count), true
}

func (l *Loader) notifyProgress() {
	if len(l.onProgress) == 0 {
		return
	}
	p := l.Progress()
	for _, fn := range l.onProgress {
		fn(p)
	}
}
