// Package physics relaxes the loaded node subset toward a stable layout with
// an iterative force simulation: pairwise repulsion, edge attraction,
// collision avoidance, and a weak centering pull. A decaying alpha governs
// step magnitude; once alpha drops below its floor the simulation is settled
// and stops stepping until nodes are added, removed, or released from a drag.
package physics

import (
	"math"

	"taxograph/internal/domain"
	"taxograph/internal/store"
)

// Options tunes the force simulation
type Options struct {
	Repulsion       float64 // base repulsion strength, scaled by node radii
	MinDistance     float64 // repulsion distance floor (softening)
	MaxDistance     float64 // repulsion cutoff
	SpringStiffness float64
	SpringLength    float64 // base edge target distance
	DepthFactor     float64 // target distance grows by this per depth difference
	CollisionMargin float64 // required clearance beyond summed radii
	Gravity         float64 // centering pull toward the loaded centroid
	Damping         float64
	Alpha           float64 // starting temperature of a relaxation run
	AlphaDecay      float64
	AlphaMin        float64 // below this the simulation is settled
	MaxIterations   int     // hard bound on a single relaxation run
	Radius          domain.RadiusScale
}

// DefaultOptions returns the standard physics tuning
func DefaultOptions() Options {
	return Options{
		Repulsion:       300,
		MinDistance:     2,
		MaxDistance:     600,
		SpringStiffness: 0.05,
		SpringLength:    80,
		DepthFactor:     0.5,
		CollisionMargin: 4,
		Gravity:         0.02,
		Damping:         0.85,
		Alpha:           1.0,
		AlphaDecay:      0.0228,
		AlphaMin:        0.001,
		MaxIterations:   300,
		Radius:          domain.DefaultRadiusScale(),
	}
}

// Simulator steps the force layout over the currently loaded nodes. It is the
// single writer of position and velocity, except for nodes flagged Fixed,
// whose position belongs to the interaction controller for the duration of
// the drag.
type Simulator struct {
	store *store.Store
	opts  Options

	alpha      float64
	iterations int
}

// New creates a simulator over a built store
func New(s *store.Store, opts Options) *Simulator {
	def := DefaultOptions()
	if opts.Alpha <= 0 {
		opts.Alpha = def.Alpha
	}
	if opts.AlphaDecay <= 0 {
		opts.AlphaDecay = def.AlphaDecay
	}
	if opts.AlphaMin <= 0 {
		opts.AlphaMin = def.AlphaMin
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Damping <= 0 {
		opts.Damping = def.Damping
	}
	if opts.Radius == (domain.RadiusScale{}) {
		opts.Radius = def.Radius
	}
	return &Simulator{store: s, opts: opts, alpha: opts.Alpha}
}

// Alpha returns the current temperature
func (s *Simulator) Alpha() float64 {
	return s.alpha
}

// Settled reports whether the simulation has cooled below its floor or
// exhausted the relaxation run's iteration bound
func (s *Simulator) Settled() bool {
	return s.alpha < s.opts.AlphaMin || s.iterations >= s.opts.MaxIterations
}

// Reheat restarts the relaxation run, resuming stepping. Called when nodes
// are added or removed, or when a dragged node is released.
func (s *Simulator) Reheat() {
	s.alpha = s.opts.Alpha
	s.iterations = 0
}

// Step advances the simulation by one tick over the loaded subset. It returns
// false without touching any node when the simulation is settled or nothing
// is loaded.
func (s *Simulator) Step() bool {
	if s.Settled() {
		return false
	}

	var loaded []*domain.Node
	for _, n := range s.store.Nodes() {
		if n.Loaded {
			loaded = append(loaded, n)
		}
	}
	if len(loaded) == 0 {
		return false
	}

	cx, cy := centroid(loaded)

	s.applyRepulsion(loaded)
	s.applySprings()
	s.applyGravity(loaded, cx, cy)
	s.resolveCollisions(loaded)
	s.integrate(loaded, cx, cy)

	s.alpha *= 1 - s.opts.AlphaDecay
	s.iterations++
	return true
}

// applyRepulsion accumulates pairwise repulsion into node velocities.
// Strength scales with the pair's radii and falls off with squared distance,
// bounded to the [MinDistance, MaxDistance] interaction range.
func (s *Simulator) applyRepulsion(loaded []*domain.Node) {
	for i := range loaded {
		for j := i + 1; j < len(loaded); j++ {
			a, b := loaded[i], loaded[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > s.opts.MaxDistance {
				continue
			}
			if dist < s.opts.MinDistance {
				dist = s.opts.MinDistance
			}
			ra := s.opts.Radius.Radius(a.Weight)
			rb := s.opts.Radius.Radius(b.Weight)
			force := s.opts.Repulsion * (ra + rb) / (dist * dist)
			// Unit direction; dx/dy may both be zero for coincident nodes.
			ux, uy := 1.0, 0.0
			if dx != 0 || dy != 0 {
				ux, uy = dx/dist, dy/dist
			}
			a.VX -= force * ux
			a.VY -= force * uy
			b.VX += force * ux
			b.VY += force * uy
		}
	}
}

// applySprings pulls edge endpoints toward a target distance that grows with
// the hierarchy depth difference between them
func (s *Simulator) applySprings() {
	for _, e := range s.store.Edges() {
		a, ok := s.store.Node(e.SourceID)
		if !ok || !a.Loaded {
			continue
		}
		b, ok := s.store.Node(e.TargetID)
		if !ok || !b.Loaded {
			continue
		}
		dx := b.X - a.X
		dy := b.Y - a.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist == 0 {
			continue
		}
		depthDiff := a.Depth - b.Depth
		if depthDiff < 0 {
			depthDiff = -depthDiff
		}
		target := s.opts.SpringLength * (1 + s.opts.DepthFactor*float64(depthDiff))
		f := s.opts.SpringStiffness * (dist - target)
		fx := f * dx / dist
		fy := f * dy / dist
		a.VX += fx
		a.VY += fy
		b.VX -= fx
		b.VY -= fy
	}
}

// applyGravity pulls every loaded node weakly toward the loaded centroid
func (s *Simulator) applyGravity(loaded []*domain.Node, cx, cy float64) {
	if s.opts.Gravity <= 0 {
		return
	}
	for _, n := range loaded {
		n.VX -= (n.X - cx) * s.opts.Gravity
		n.VY -= (n.Y - cy) * s.opts.Gravity
	}
}

// resolveCollisions separates overlapping pairs positionally so that node
// radii plus margin do not overlap. Fixed nodes take no displacement; their
// counterpart absorbs the full separation.
func (s *Simulator) resolveCollisions(loaded []*domain.Node) {
	for i := range loaded {
		for j := i + 1; j < len(loaded); j++ {
			a, b := loaded[i], loaded[j]
			ra := s.opts.Radius.Radius(a.Weight)
			rb := s.opts.Radius.Radius(b.Weight)
			minDist := ra + rb + s.opts.CollisionMargin
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= minDist {
				continue
			}
			ux, uy := 1.0, 0.0
			if dist > 0 {
				ux, uy = dx/dist, dy/dist
			}
			overlap := (minDist - dist) * s.alpha
			switch {
			case a.Fixed && b.Fixed:
				// Both pinned by the user; leave them.
			case a.Fixed:
				b.X += overlap * ux
				b.Y += overlap * uy
			case b.Fixed:
				a.X -= overlap * ux
				a.Y -= overlap * uy
			default:
				half := overlap / 2
				a.X -= half * ux
				a.Y -= half * uy
				b.X += half * ux
				b.Y += half * uy
			}
		}
	}
}

// integrate applies damped velocities scaled by alpha. Fixed nodes are
// excluded from force integration; any non-finite position is recovered to
// the parent's position, or the centroid when no parent is available.
func (s *Simulator) integrate(loaded []*domain.Node, cx, cy float64) {
	for _, n := range loaded {
		if n.Fixed {
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= s.opts.Damping
		n.VY *= s.opts.Damping
		n.X += n.VX * s.alpha
		n.Y += n.VY * s.alpha

		if !finite(n.X) || !finite(n.Y) {
			s.recover(n, cx, cy)
		}
	}
}

// recover resets a diverged node to its fallback anchor instead of letting
// the corruption propagate
func (s *Simulator) recover(n *domain.Node, cx, cy float64) {
	ax, ay := cx, cy
	if n.ParentID != "" {
		if p, ok := s.store.Node(n.ParentID); ok && finite(p.X) && finite(p.Y) {
			ax, ay = p.X, p.Y
		}
	}
	if !finite(ax) || !finite(ay) {
		ax, ay = 0, 0
	}
	n.X, n.Y = ax, ay
	n.VX, n.VY = 0, 0
}

func centroid(nodes []*domain.Node) (float64, float64) {
	var sx, sy float64
	for _, n := range nodes {
		sx += n.X
		sy += n.Y
	}
	count := float64(len(nodes))
	return sx / count, sy / count
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
