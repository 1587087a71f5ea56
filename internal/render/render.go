// Package render derives the per-frame draw list from the loaded, simulated
// node set: viewport-culled node sprites and edge segments with the status
// palette applied. The frame is a host-agnostic view consumed by the display
// layer; this package never mutates node state.
package render

import (
	"math"

	"taxograph/internal/domain"
	"taxograph/internal/store"
)

// NodeSprite is one drawable node in world coordinates
type NodeSprite struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Fill   string  `json:"fill"`
	Border string  `json:"border,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// EdgeSegment is one drawable edge in world coordinates
type EdgeSegment struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
}

// Frame is the complete draw list for one display refresh. Coordinates are
// world-space; the embedded viewport supplies the transform to apply.
type Frame struct {
	Viewport domain.Viewport `json:"viewport"`
	Nodes    []NodeSprite    `json:"nodes"`
	Edges    []EdgeSegment   `json:"edges"`
}

// Options tunes the renderer
type Options struct {
	CullMarginPx  float64 // screen-pixel margin for partial visibility
	LabelMinScale float64 // labels drawn only at or above this zoom scale
	HoverBorder   string
	SelectBorder  string
	Radius        domain.RadiusScale
}

// DefaultOptions returns the standard renderer tuning
func DefaultOptions() Options {
	return Options{
		CullMarginPx:  50,
		LabelMinScale: 0.8,
		HoverBorder:   "#9ad0ff",
		SelectBorder:  "#ffcf33",
		Radius:        domain.DefaultRadiusScale(),
	}
}

// Renderer culls and encodes the loaded node set into frames
type Renderer struct {
	store *store.Store
	opts  Options
}

// New creates a renderer over a built store
func New(s *store.Store, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Radius == (domain.RadiusScale{}) {
		opts.Radius = def.Radius
	}
	if opts.LabelMinScale <= 0 {
		opts.LabelMinScale = def.LabelMinScale
	}
	if opts.HoverBorder == "" {
		opts.HoverBorder = def.HoverBorder
	}
	if opts.SelectBorder == "" {
		opts.SelectBorder = def.SelectBorder
	}
	return &Renderer{store: s, opts: opts}
}

// Render builds the draw list for the current transform. A node is drawn only
// if it is loaded, its position is finite, and its bounding circle plus
// margin intersects the visible rectangle. An edge is drawn only when both
// endpoints are loaded and at least one endpoint's bounds are visible.
func (r *Renderer) Render(view domain.Viewport, hoverID string, selected map[string]struct{}) *Frame {
	frame := &Frame{Viewport: view}
	rect := view.VisibleRect(r.opts.CullMarginPx / view.Scale)
	withLabels := view.Scale >= r.opts.LabelMinScale

	visible := make(map[string]bool)
	for _, n := range r.store.Nodes() {
		if !n.Loaded || !finite(n.X) || !finite(n.Y) {
			continue
		}
		radius := r.opts.Radius.Radius(n.Weight)
		if !rect.IntersectsCircle(n.X, n.Y, radius) {
			continue
		}
		visible[n.ID] = true

		sprite := NodeSprite{
			ID:     n.ID,
			X:      n.X,
			Y:      n.Y,
			Radius: radius,
			Fill:   n.Status.Color(),
		}
		if _, ok := selected[n.ID]; ok {
			sprite.Border = r.opts.SelectBorder
		} else if n.ID == hoverID {
			sprite.Border = r.opts.HoverBorder
		}
		if withLabels {
			sprite.Label = n.ID
		}
		frame.Nodes = append(frame.Nodes, sprite)
	}

	for _, e := range r.store.Edges() {
		a, ok := r.store.Node(e.SourceID)
		if !ok || !a.Loaded {
			continue
		}
		b, ok := r.store.Node(e.TargetID)
		if !ok || !b.Loaded {
			continue
		}
		if !visible[a.ID] && !visible[b.ID] {
			continue
		}
		if !finite(a.X) || !finite(a.Y) || !finite(b.X) || !finite(b.Y) {
			continue
		}
		frame.Edges = append(frame.Edges, EdgeSegment{
			SourceID: e.SourceID,
			TargetID: e.TargetID,
			X1:       a.X,
			Y1:       a.Y,
			X2:       b.X,
			Y2:       b.Y,
		})
	}

	return frame
}

// VisibleNodes returns the drawable node records for hit testing, in draw
// order
func (r *Renderer) VisibleNodes(view domain.Viewport) []*domain.Node {
	rect := view.VisibleRect(r.opts.CullMarginPx / view.Scale)
	var out []*domain.Node
	for _, n := range r.store.Nodes() {
		if !n.Loaded || !finite(n.X) || !finite(n.Y) {
			continue
		}
		if rect.IntersectsCircle(n.X, n.Y, r.opts.Radius.Radius(n.Weight)) {
			out = append(out, n)
		}
	}
	return out
}

// Bounds returns the world rectangle enclosing all loaded nodes, including
// their radii, for fit-to-view. ok is false when nothing is loaded.
func (r *Renderer) Bounds() (rect domain.Rect, ok bool) {
	first := true
	for _, n := range r.store.Nodes() {
		if !n.Loaded || !finite(n.X) || !finite(n.Y) {
			continue
		}
		radius := r.opts.Radius.Radius(n.Weight)
		if first {
			rect = domain.Rect{MinX: n.X - radius, MinY: n.Y - radius, MaxX: n.X + radius, MaxY: n.Y + radius}
			first = false
			continue
		}
		rect.MinX = math.Min(rect.MinX, n.X-radius)
		rect.MinY = math.Min(rect.MinY, n.Y-radius)
		rect.MaxX = math.Max(rect.MaxX, n.X+radius)
		rect.MaxY = math.Max(rect.MaxY, n.Y+radius)
	}
	return rect, !first
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
