// Package viewport owns the authoritative pan/zoom transform. Every update
// clamps scale, notifies change listeners, and forwards rate-limited
// recompute requests to the progressive loader during continuous gestures.
package viewport

import (
	"time"

	"taxograph/internal/domain"
)

// Listener receives the viewport after a transform update
type Listener func(domain.Viewport)

// Controller holds the transform and its subscribers. All methods are called
// from the engine loop; the controller is not safe for concurrent use.
type Controller struct {
	view     domain.Viewport
	minScale float64
	maxScale float64

	onChange    []Listener // every update (renderer, UI events)
	onRecompute []Listener // loader recompute, rate-limited during gestures

	inGesture     bool
	pendingNotify bool
	lastRecompute time.Time
	interval      time.Duration

	now func() time.Time
}

// Options tunes the controller
type Options struct {
	MinScale          float64
	MaxScale          float64
	RecomputeInterval time.Duration // min spacing of loader recomputes mid-gesture
}

// DefaultOptions returns the standard viewport tuning
func DefaultOptions() Options {
	return Options{MinScale: 0.1, MaxScale: 5.0, RecomputeInterval: 100 * time.Millisecond}
}

// New creates a controller for a display of the given size
func New(width, height float64, opts Options) *Controller {
	if opts.MinScale <= 0 {
		opts.MinScale = DefaultOptions().MinScale
	}
	if opts.MaxScale < opts.MinScale {
		// keep the clamp range ordered even when MinScale alone exceeds
		// the default maximum
		opts.MaxScale = DefaultOptions().MaxScale
		if opts.MaxScale < opts.MinScale {
			opts.MaxScale = opts.MinScale
		}
	}
	if opts.RecomputeInterval <= 0 {
		opts.RecomputeInterval = DefaultOptions().RecomputeInterval
	}
	return &Controller{
		view:     domain.Viewport{Scale: 1, Width: width, Height: height},
		minScale: opts.MinScale,
		maxScale: opts.MaxScale,
		interval: opts.RecomputeInterval,
		now:      time.Now,
	}
}

// View returns the current transform
func (c *Controller) View() domain.Viewport {
	return c.view
}

// OnChange subscribes to every transform update
func (c *Controller) OnChange(fn Listener) {
	c.onChange = append(c.onChange, fn)
}

// OnRecompute subscribes to loader recompute requests. Mid-gesture these are
// coalesced to at most one per interval; gesture release forces a final one.
func (c *Controller) OnRecompute(fn Listener) {
	c.onRecompute = append(c.onRecompute, fn)
}

// SetSize updates the visible extent
func (c *Controller) SetSize(width, height float64) {
	if width == c.view.Width && height == c.view.Height {
		return
	}
	c.view.Width = width
	c.view.Height = height
	c.notify()
}

// SetTransform replaces offset and scale wholesale
func (c *Controller) SetTransform(offsetX, offsetY, scale float64) {
	c.view.OffsetX = offsetX
	c.view.OffsetY = offsetY
	c.view.Scale = c.clampScale(scale)
	c.notify()
}

// Pan shifts the view by a screen-space delta
func (c *Controller) Pan(dx, dy float64) {
	c.view.OffsetX += dx
	c.view.OffsetY += dy
	c.notify()
}

// ZoomAt scales the view by factor, keeping the world point under the given
// screen anchor stationary
func (c *Controller) ZoomAt(sx, sy, factor float64) {
	wx, wy := c.view.ScreenToWorld(sx, sy)
	scale := c.clampScale(c.view.Scale * factor)
	c.view.Scale = scale
	c.view.OffsetX = sx - wx*scale
	c.view.OffsetY = sy - wy*scale
	c.notify()
}

// ZoomStep zooms by factor about the viewport center
func (c *Controller) ZoomStep(factor float64) {
	c.ZoomAt(c.view.Width/2, c.view.Height/2, factor)
}

// Reset restores the identity transform
func (c *Controller) Reset() {
	c.SetTransform(0, 0, 1)
}

// FitTo computes and applies the transform that fits a world rectangle into
// the viewport with the given screen padding
func (c *Controller) FitTo(r domain.Rect, padding float64) {
	w := r.MaxX - r.MinX
	if w <= 0 {
		w = 1
	}
	h := r.MaxY - r.MinY
	if h <= 0 {
		h = 1
	}
	sx := (c.view.Width - 2*padding) / w
	sy := (c.view.Height - 2*padding) / h
	scale := sx
	if sy < scale {
		scale = sy
	}
	scale = c.clampScale(scale)
	c.view.Scale = scale
	c.view.OffsetX = c.view.Width/2 - (r.MinX+w/2)*scale
	c.view.OffsetY = c.view.Height/2 - (r.MinY+h/2)*scale
	c.notify()
}

// BeginGesture marks the start of a continuous pan/drag, enabling recompute
// rate limiting
func (c *Controller) BeginGesture() {
	c.inGesture = true
}

// EndGesture marks gesture release, forcing a final recompute if any update
// was coalesced away during the gesture
func (c *Controller) EndGesture() {
	c.inGesture = false
	if c.pendingNotify {
		c.pendingNotify = false
		c.fireRecompute()
	}
}

func (c *Controller) clampScale(s float64) float64 {
	if s < c.minScale {
		return c.minScale
	}
	if s > c.maxScale {
		return c.maxScale
	}
	return s
}

func (c *Controller) notify() {
	for _, fn := range c.onChange {
		fn(c.view)
	}
	if !c.inGesture {
		c.fireRecompute()
		return
	}
	if c.now().Sub(c.lastRecompute) >= c.interval {
		c.fireRecompute()
		return
	}
	c.pendingNotify = true
}

func (c *Controller) fireRecompute() {
	c.lastRecompute = c.now()
	for _, fn := range c.onRecompute {
		fn(c.view)
	}
}
