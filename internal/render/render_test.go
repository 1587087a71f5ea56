package render

import (
	"math"
	"testing"

	"taxograph/internal/domain"
	"taxograph/internal/store"
)

func buildStore(nodes []domain.Node, edges []domain.Edge) *store.Store {
	return store.Build(&domain.Dataset{Nodes: nodes, Edges: edges})
}

func loadAll(s *store.Store) {
	for _, n := range s.Nodes() {
		n.Loaded = true
	}
}

func view(w, h, scale float64) domain.Viewport {
	return domain.Viewport{Width: w, Height: h, Scale: scale}
}

func TestRenderCullsOffscreenNodes(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "inside", Weight: 10, X: 100, Y: 100},
		{ID: "outside", Weight: 10, X: 100000, Y: 100000},
	}, nil)
	loadAll(s)
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "", nil)

	if len(frame.Nodes) != 1 {
		t.Fatalf("got %d sprites, want 1", len(frame.Nodes))
	}
	if frame.Nodes[0].ID != "inside" {
		t.Errorf("rendered %q, want inside", frame.Nodes[0].ID)
	}
	// culling must not unload the node
	outside, _ := s.Node("outside")
	if !outside.Loaded {
		t.Error("culled node lost its loaded state")
	}
}

func TestRenderSkipsUnloadedNodes(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 10, Y: 10},
		{ID: "b", Weight: 10, X: 20, Y: 20},
	}, nil)
	a, _ := s.Node("a")
	a.Loaded = true
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "", nil)
	if len(frame.Nodes) != 1 || frame.Nodes[0].ID != "a" {
		t.Fatalf("expected only loaded node a, got %+v", frame.Nodes)
	}
}

func TestRenderEdgeNeedsBothEndpointsLoaded(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 10, Y: 10},
		{ID: "b", ParentID: "a", Depth: 1, Weight: 10, X: 30, Y: 30},
		{ID: "c", ParentID: "a", Depth: 1, Weight: 10, X: 50, Y: 50},
	}, []domain.Edge{
		{SourceID: "a", TargetID: "b"},
		{SourceID: "a", TargetID: "c"},
	})
	a, _ := s.Node("a")
	c, _ := s.Node("c")
	a.Loaded, c.Loaded = true, true
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "", nil)
	if len(frame.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(frame.Edges))
	}
	if frame.Edges[0].SourceID != "a" || frame.Edges[0].TargetID != "c" {
		t.Errorf("drew edge %s-%s, want a-c", frame.Edges[0].SourceID, frame.Edges[0].TargetID)
	}
}

func TestRenderPaletteAndRadius(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "n", Weight: 1000, Status: domain.StatusMissing},
	}, nil)
	loadAll(s)
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "", nil)
	if len(frame.Nodes) != 1 {
		t.Fatalf("got %d sprites, want 1", len(frame.Nodes))
	}
	if frame.Nodes[0].Fill != domain.StatusMissing.Color() {
		t.Errorf("fill = %s, want %s", frame.Nodes[0].Fill, domain.StatusMissing.Color())
	}
	want := domain.DefaultRadiusScale().Radius(1000)
	if math.Abs(frame.Nodes[0].Radius-want) > 1e-9 {
		t.Errorf("radius = %v, want %v", frame.Nodes[0].Radius, want)
	}
}

func TestRenderLabelZoomThreshold(t *testing.T) {
	s := buildStore([]domain.Node{{ID: "home", Weight: 10}}, nil)
	loadAll(s)
	r := New(s, DefaultOptions())

	low := r.Render(view(800, 600, 0.5), "", nil)
	if low.Nodes[0].Label != "" {
		t.Errorf("label drawn at scale 0.5: %q", low.Nodes[0].Label)
	}
	high := r.Render(view(800, 600, 1.5), "", nil)
	if high.Nodes[0].Label != "home" {
		t.Errorf("label at scale 1.5 = %q, want home", high.Nodes[0].Label)
	}
}

func TestRenderHoverAndSelectionBorders(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 0, Y: 0},
		{ID: "b", Weight: 10, X: 40, Y: 0},
	}, nil)
	loadAll(s)
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "b", map[string]struct{}{"a": {}})

	borders := map[string]string{}
	for _, sp := range frame.Nodes {
		borders[sp.ID] = sp.Border
	}
	if borders["a"] != DefaultOptions().SelectBorder {
		t.Errorf("selected border = %q", borders["a"])
	}
	if borders["b"] != DefaultOptions().HoverBorder {
		t.Errorf("hover border = %q", borders["b"])
	}
}

func TestRenderSelectionWinsOverHover(t *testing.T) {
	s := buildStore([]domain.Node{{ID: "a", Weight: 10}}, nil)
	loadAll(s)
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "a", map[string]struct{}{"a": {}})
	if frame.Nodes[0].Border != DefaultOptions().SelectBorder {
		t.Errorf("border = %q, want selection border", frame.Nodes[0].Border)
	}
}

func TestRenderSkipsNonFinitePositions(t *testing.T) {
	s := buildStore([]domain.Node{{ID: "n", Weight: 10}}, nil)
	n, _ := s.Node("n")
	n.Loaded = true
	n.X = math.NaN()
	r := New(s, DefaultOptions())

	frame := r.Render(view(800, 600, 1.0), "", nil)
	if len(frame.Nodes) != 0 {
		t.Fatal("rendered node with NaN position")
	}
}

func TestBoundsEnclosesLoadedNodes(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: -100, Y: -50},
		{ID: "b", Weight: 10, X: 200, Y: 150},
		{ID: "c", Weight: 10, X: 9000, Y: 9000},
	}, nil)
	a, _ := s.Node("a")
	b, _ := s.Node("b")
	a.Loaded, b.Loaded = true, true
	r := New(s, DefaultOptions())

	rect, ok := r.Bounds()
	if !ok {
		t.Fatal("Bounds reported empty")
	}
	radius := domain.DefaultRadiusScale().Radius(10)
	if rect.MinX != -100-radius || rect.MaxX != 200+radius {
		t.Errorf("x bounds [%v, %v]", rect.MinX, rect.MaxX)
	}
	if rect.MaxX >= 9000 {
		t.Error("unloaded node widened bounds")
	}
}

func TestBoundsEmptyWhenNothingLoaded(t *testing.T) {
	s := buildStore([]domain.Node{{ID: "n", Weight: 10}}, nil)
	r := New(s, DefaultOptions())
	if _, ok := r.Bounds(); ok {
		t.Error("Bounds reported non-empty for unloaded dataset")
	}
}
