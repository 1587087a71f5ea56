package domain

// Viewport holds the pan/zoom transform and visible extent of the display.
// Screen coordinates relate to world coordinates by
// screen = world*Scale + Offset.
type Viewport struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Scale   float64 `json:"scale"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// ScreenToWorld converts a point from screen space to world space
func (v Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// WorldToScreen converts a point from world space to screen space
func (v Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx*v.Scale + v.OffsetX, wy*v.Scale + v.OffsetY
}

// VisibleRect returns the world-space rectangle covered by the viewport,
// expanded by margin world units on every side
func (v Viewport) VisibleRect(margin float64) Rect {
	minX, minY := v.ScreenToWorld(0, 0)
	maxX, maxY := v.ScreenToWorld(v.Width, v.Height)
	return Rect{
		MinX: minX - margin,
		MinY: minY - margin,
		MaxX: maxX + margin,
		MaxY: maxY + margin,
	}
}

// Rect is an axis-aligned rectangle in world coordinates
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// ContainsPoint reports whether the point lies inside the rectangle
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// IntersectsCircle reports whether a circle overlaps the rectangle
func (r Rect) IntersectsCircle(cx, cy, radius float64) bool {
	nx := clampf(cx, r.MinX, r.MaxX)
	ny := clampf(cy, r.MinY, r.MaxY)
	dx := cx - nx
	dy := cy - ny
	return dx*dx+dy*dy <= radius*radius
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
