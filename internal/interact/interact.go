// Package interact translates pointer input into hover, selection, drag, and
// zoom-to-node behavior. Pointer coordinates arrive in screen space and are
// converted through the inverse viewport transform before hit testing.
package interact

import (
	"math"
	"time"

	"taxograph/internal/domain"
	"taxograph/internal/physics"
	"taxograph/internal/render"
	"taxograph/internal/store"
	"taxograph/internal/viewport"
)

// Options tunes pointer handling
type Options struct {
	ClickSlopPx       float64       // movement beyond this is a drag, not a click
	DoubleClickWindow time.Duration // max gap between clicks on the same node
	ZoomToScale       float64       // target scale for zoom-to-node
	ZoomDuration      time.Duration // zoom-to-node animation length
	Radius            domain.RadiusScale
}

// DefaultOptions returns the standard interaction tuning
func DefaultOptions() Options {
	return Options{
		ClickSlopPx:       3,
		DoubleClickWindow: 400 * time.Millisecond,
		ZoomToScale:       1.5,
		ZoomDuration:      400 * time.Millisecond,
		Radius:            domain.DefaultRadiusScale(),
	}
}

type zoomAnimation struct {
	from    domain.Viewport
	toX     float64
	toY     float64
	toScale float64
	started time.Time
}

// Controller owns hover and selection state and is the sole writer of node
// positions while a node is dragged. All methods run on the engine loop; the
// controller is not safe for concurrent use.
type Controller struct {
	store *store.Store
	rend  *render.Renderer
	vp    *viewport.Controller
	sim   *physics.Simulator
	opts  Options

	hoverID  string
	selected map[string]struct{}

	pressed    bool
	pressX     float64
	pressY     float64
	dragID     string // node under the press, "" for empty space
	dragging   bool
	grabDX     float64 // world offset from cursor to node center at grab
	grabDY     float64
	lastMoveX  float64
	lastMoveY  float64
	lastClick  string
	lastClickT time.Time

	anim *zoomAnimation

	onHover  []func(*domain.Node) // nil on hover exit
	onClick  []func(*domain.Node)
	onSelect []func([]*domain.Node)

	now func() time.Time
}

// New creates a controller over the shared node store
func New(s *store.Store, r *render.Renderer, vp *viewport.Controller, sim *physics.Simulator, opts Options) *Controller {
	def := DefaultOptions()
	if opts.ClickSlopPx <= 0 {
		opts.ClickSlopPx = def.ClickSlopPx
	}
	if opts.DoubleClickWindow <= 0 {
		opts.DoubleClickWindow = def.DoubleClickWindow
	}
	if opts.ZoomToScale <= 0 {
		opts.ZoomToScale = def.ZoomToScale
	}
	if opts.ZoomDuration <= 0 {
		opts.ZoomDuration = def.ZoomDuration
	}
	if opts.Radius == (domain.RadiusScale{}) {
		opts.Radius = def.Radius
	}
	return &Controller{
		store:    s,
		rend:     r,
		vp:       vp,
		sim:      sim,
		opts:     opts,
		selected: make(map[string]struct{}),
		now:      time.Now,
	}
}

// OnHover subscribes to hover changes. The callback receives nil when the
// pointer leaves all nodes.
func (c *Controller) OnHover(fn func(*domain.Node)) {
	c.onHover = append(c.onHover, fn)
}

// OnClick subscribes to single clicks on a node
func (c *Controller) OnClick(fn func(*domain.Node)) {
	c.onClick = append(c.onClick, fn)
}

// OnSelectionChange subscribes to selection updates, receiving the full
// records of the selected set
func (c *Controller) OnSelectionChange(fn func([]*domain.Node)) {
	c.onSelect = append(c.onSelect, fn)
}

// HoverID returns the id of the hovered node, or ""
func (c *Controller) HoverID() string {
	return c.hoverID
}

// Selected returns the selection set keyed by node id. Callers must not
// mutate the map.
func (c *Controller) Selected() map[string]struct{} {
	return c.selected
}

// HitTest returns the topmost rendered node whose radius contains the screen
// point. Draw order puts later nodes on top, so the scan runs back to front.
func (c *Controller) HitTest(sx, sy float64) *domain.Node {
	view := c.vp.View()
	wx, wy := view.ScreenToWorld(sx, sy)
	nodes := c.rend.VisibleNodes(view)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		radius := c.opts.Radius.Radius(n.Weight)
		if math.Hypot(n.X-wx, n.Y-wy) <= radius {
			return n
		}
	}
	return nil
}

// PointerDown begins a press. Any running zoom animation is cancelled so the
// user immediately regains control of the transform.
func (c *Controller) PointerDown(sx, sy float64) {
	c.anim = nil
	c.pressed = true
	c.dragging = false
	c.pressX, c.pressY = sx, sy
	c.lastMoveX, c.lastMoveY = sx, sy
	c.vp.BeginGesture()

	if n := c.HitTest(sx, sy); n != nil {
		c.dragID = n.ID
		wx, wy := c.vp.View().ScreenToWorld(sx, sy)
		c.grabDX = n.X - wx
		c.grabDY = n.Y - wy
	} else {
		c.dragID = ""
	}
}

// PointerMove updates hover while idle, and drives node drag or viewport pan
// while pressed
func (c *Controller) PointerMove(sx, sy float64) {
	if !c.pressed {
		c.updateHover(sx, sy)
		return
	}

	if !c.dragging && math.Hypot(sx-c.pressX, sy-c.pressY) > c.opts.ClickSlopPx {
		c.dragging = true
		if n := c.dragNode(); n != nil {
			n.Fixed = true
			n.VX, n.VY = 0, 0
		}
	}
	if !c.dragging {
		return
	}

	if n := c.dragNode(); n != nil {
		wx, wy := c.vp.View().ScreenToWorld(sx, sy)
		n.X = wx + c.grabDX
		n.Y = wy + c.grabDY
		n.VX, n.VY = 0, 0
		c.sim.Reheat()
	} else {
		c.vp.Pan(sx-c.lastMoveX, sy-c.lastMoveY)
	}
	c.lastMoveX, c.lastMoveY = sx, sy
}

// PointerUp ends a press. A release within the click slop is a click:
// selection is updated (additive toggles membership, plain replaces the set,
// empty space clears it) and a second click on the same node within the
// double-click window starts an animated zoom to it. Releasing a drag clears
// the node's fixed flag, returning it to physics control.
func (c *Controller) PointerUp(sx, sy float64, additive bool) {
	if !c.pressed {
		return
	}
	c.pressed = false
	wasDragging := c.dragging
	c.dragging = false
	c.vp.EndGesture()

	if wasDragging {
		if n := c.dragNode(); n != nil {
			n.Fixed = false
			c.sim.Reheat()
		}
		return
	}

	n := c.HitTest(sx, sy)
	if n == nil {
		c.clearSelection()
		return
	}

	c.applyClickSelection(n, additive)
	for _, fn := range c.onClick {
		fn(n)
	}

	now := c.now()
	if n.ID == c.lastClick && now.Sub(c.lastClickT) <= c.opts.DoubleClickWindow {
		c.startZoomTo(n)
		c.lastClick = ""
		return
	}
	c.lastClick = n.ID
	c.lastClickT = now
}

// Wheel zooms about the pointer position
func (c *Controller) Wheel(sx, sy, factor float64) {
	c.anim = nil
	c.vp.ZoomAt(sx, sy, factor)
}

// ZoomToNode starts an animated zoom centering the given node
func (c *Controller) ZoomToNode(id string) bool {
	n, ok := c.store.Node(id)
	if !ok || !n.Loaded {
		return false
	}
	c.startZoomTo(n)
	return true
}

// Animating reports whether a zoom animation is in flight
func (c *Controller) Animating() bool {
	return c.anim != nil
}

// Tick advances the zoom animation by one frame. Offset and scale are
// interpolated with ease-in-out cubic timing over the configured duration.
func (c *Controller) Tick() {
	if c.anim == nil {
		return
	}
	t := float64(c.now().Sub(c.anim.started)) / float64(c.opts.ZoomDuration)
	if t >= 1 {
		c.vp.SetTransform(c.anim.toX, c.anim.toY, c.anim.toScale)
		c.anim = nil
		return
	}
	e := easeInOutCubic(t)
	c.vp.SetTransform(
		c.anim.from.OffsetX+(c.anim.toX-c.anim.from.OffsetX)*e,
		c.anim.from.OffsetY+(c.anim.toY-c.anim.from.OffsetY)*e,
		c.anim.from.Scale+(c.anim.toScale-c.anim.from.Scale)*e,
	)
}

func (c *Controller) startZoomTo(n *domain.Node) {
	view := c.vp.View()
	scale := c.opts.ZoomToScale
	c.anim = &zoomAnimation{
		from:    view,
		toX:     view.Width/2 - n.X*scale,
		toY:     view.Height/2 - n.Y*scale,
		toScale: scale,
		started: c.now(),
	}
}

func (c *Controller) dragNode() *domain.Node {
	if c.dragID == "" {
		return nil
	}
	n, ok := c.store.Node(c.dragID)
	if !ok {
		return nil
	}
	return n
}

func (c *Controller) updateHover(sx, sy float64) {
	var id string
	n := c.HitTest(sx, sy)
	if n != nil {
		id = n.ID
	}
	if id == c.hoverID {
		return
	}
	c.hoverID = id
	for _, fn := range c.onHover {
		fn(n)
	}
}

func (c *Controller) applyClickSelection(n *domain.Node, additive bool) {
	if additive {
		if _, ok := c.selected[n.ID]; ok {
			delete(c.selected, n.ID)
		} else {
			c.selected[n.ID] = struct{}{}
		}
	} else {
		c.selected = map[string]struct{}{n.ID: {}}
	}
	c.notifySelection()
}

func (c *Controller) clearSelection() {
	if len(c.selected) == 0 {
		return
	}
	c.selected = make(map[string]struct{})
	c.notifySelection()
}

func (c *Controller) notifySelection() {
	records := make([]*domain.Node, 0, len(c.selected))
	for _, n := range c.store.Nodes() {
		if _, ok := c.selected[n.ID]; ok {
			records = append(records, n)
		}
	}
	for _, fn := range c.onSelect {
		fn(records)
	}
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	d := -2*t + 2
	return 1 - d*d*d/2
}
