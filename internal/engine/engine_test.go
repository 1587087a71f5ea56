package engine

import (
	"fmt"
	"testing"

	"taxograph/internal/domain"
	"taxograph/internal/loader"
)

// small hierarchical dataset: one root, branches, leaves
func buildDataset(branches, leavesPer int) *domain.Dataset {
	ds := &domain.Dataset{}
	ds.Nodes = append(ds.Nodes, domain.Node{
		ID: "root", Depth: 0, Weight: 1000, Score: 1, Status: domain.StatusOptimized,
	})
	for b := 0; b < branches; b++ {
		bid := fmt.Sprintf("branch-%02d", b)
		ds.Nodes = append(ds.Nodes, domain.Node{
			ID: bid, ParentID: "root", Depth: 1, Weight: 100, Score: 0.8,
			Status: domain.StatusOpportunity,
		})
		ds.Edges = append(ds.Edges, domain.Edge{SourceID: "root", TargetID: bid})
		for l := 0; l < leavesPer; l++ {
			lid := fmt.Sprintf("leaf-%02d-%02d", b, l)
			ds.Nodes = append(ds.Nodes, domain.Node{
				ID: lid, ParentID: bid, Depth: 2, Weight: 10, Score: 0.3,
				Status: domain.StatusUnderperforming,
			})
			ds.Edges = append(ds.Edges, domain.Edge{SourceID: bid, TargetID: lid})
		}
	}
	return ds
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Width, opts.Height = 800, 600
	return opts
}

func drain(e *Engine, ticks int) {
	for i := 0; i < ticks; i++ {
		e.Tick()
	}
}

func TestTickStreamsCoreAndProducesFrames(t *testing.T) {
	e := New(buildDataset(5, 10), testOptions())
	drain(e, 10)

	p := e.Progress()
	if p.LoadedCount == 0 {
		t.Fatal("nothing loaded after ticking")
	}
	if p.CurrentLevel != "viewport" {
		t.Errorf("level at scale 1.0 = %s, want viewport", p.CurrentLevel)
	}

	frame := e.Frame()
	if frame == nil || len(frame.Nodes) == 0 {
		t.Fatal("no frame produced")
	}
	for _, edge := range frame.Edges {
		for _, id := range []string{edge.SourceID, edge.TargetID} {
			n, ok := e.store.Node(id)
			if !ok || !n.Loaded {
				t.Fatalf("frame drew edge with unloaded endpoint %q", id)
			}
		}
	}
}

func TestCommandsApplyOnNextTick(t *testing.T) {
	e := New(buildDataset(3, 5), testOptions())
	drain(e, 5)

	before := e.Frame().Viewport.Scale
	e.ZoomIn()
	if got := e.Frame().Viewport.Scale; got != before {
		t.Errorf("zoom applied before tick: %v", got)
	}

	e.Tick()
	if got := e.Frame().Viewport.Scale; got <= before {
		t.Errorf("scale = %v after ZoomIn, want > %v", got, before)
	}
}

func TestZoomInReachesAllLevel(t *testing.T) {
	e := New(buildDataset(10, 30), testOptions())
	// zoom far in: scale 1.2^8 > 2.5 puts the loader at level all
	for i := 0; i < 8; i++ {
		e.ZoomIn()
		e.Tick()
	}
	drain(e, 20)

	p := e.Progress()
	if p.CurrentLevel != "all" {
		t.Fatalf("level = %s, want all", p.CurrentLevel)
	}
	if p.LoadedCount != p.TotalCount {
		t.Errorf("loaded %d of %d after level all streamed", p.LoadedCount, p.TotalCount)
	}
}

func TestResetViewRestoresIdentity(t *testing.T) {
	e := New(buildDataset(3, 5), testOptions())
	e.ZoomIn()
	e.Tick()
	e.ResetView()
	e.Tick()

	v := e.Frame().Viewport
	if v.Scale != 1 || v.OffsetX != 0 || v.OffsetY != 0 {
		t.Errorf("view = %+v after reset", v)
	}
}

func TestFitToViewCoversLoadedNodes(t *testing.T) {
	e := New(buildDataset(3, 5), testOptions())
	drain(e, 10)
	e.FitToView()
	e.Tick()

	rect, ok := e.rend.Bounds()
	if !ok {
		t.Fatal("no loaded bounds")
	}
	v := e.Frame().Viewport
	for _, corner := range [][2]float64{
		{rect.MinX, rect.MinY}, {rect.MaxX, rect.MaxY},
	} {
		sx, sy := v.WorldToScreen(corner[0], corner[1])
		if sx < 0 || sx > v.Width || sy < 0 || sy > v.Height {
			t.Errorf("corner (%v,%v) maps offscreen to (%v,%v)", corner[0], corner[1], sx, sy)
		}
	}
}

func TestForceLoadBypassesCaps(t *testing.T) {
	opts := testOptions()
	opts.Loader.CoreCap = 1
	opts.Loader.ViewportCap = 1
	e := New(buildDataset(10, 30), opts)
	drain(e, 5)

	target := "leaf-09-29"
	if n, _ := e.store.Node(target); n.Loaded {
		t.Fatal("target loaded before force")
	}
	e.ForceLoad([]string{target})
	drain(e, 5)

	if n, _ := e.store.Node(target); !n.Loaded {
		t.Error("force-load did not load the target")
	}
}

func TestLoadDatasetReplacesSession(t *testing.T) {
	e := New(buildDataset(3, 5), testOptions())
	drain(e, 10)

	e.LoadDataset(buildDataset(1, 2))
	e.Tick()

	p := e.Progress()
	if p.TotalCount != 4 {
		t.Errorf("total = %d after dataset swap, want 4", p.TotalCount)
	}
	if _, ok := e.store.Node("branch-02"); ok {
		t.Error("old dataset node survived the swap")
	}
}

func TestSubscriptionsSurviveDatasetSwap(t *testing.T) {
	e := New(buildDataset(2, 2), testOptions())
	var viewEvents int
	e.OnViewportChange(func(domain.Viewport) { viewEvents++ })

	e.LoadDataset(buildDataset(1, 1))
	e.Tick()

	before := viewEvents
	e.ZoomIn()
	e.Tick()
	if viewEvents <= before {
		t.Error("viewport subscription lost after dataset swap")
	}
}

func TestResetSessionClearsLoadedState(t *testing.T) {
	e := New(buildDataset(3, 5), testOptions())
	drain(e, 10)
	if e.Progress().LoadedCount == 0 {
		t.Fatal("nothing loaded before reset")
	}

	e.ResetSession()
	e.Tick()

	// reset clears everything; the viewport reset then restarts streaming,
	// so only freshly streamed batches may be present
	p := e.Progress()
	if p.LoadedCount > e.opts.Loader.BatchSize {
		t.Errorf("loaded = %d right after reset, want at most one batch", p.LoadedCount)
	}
}

func TestPointerEventsDriveSelection(t *testing.T) {
	e := New(buildDataset(2, 2), testOptions())
	drain(e, 10)

	frame := e.Frame()
	if len(frame.Nodes) == 0 {
		t.Fatal("no rendered nodes")
	}
	sprite := frame.Nodes[0]
	sx, sy := frame.Viewport.WorldToScreen(sprite.X, sprite.Y)

	var selected []string
	e.OnSelectionChange(func(ns []*domain.Node) {
		selected = selected[:0]
		for _, n := range ns {
			selected = append(selected, n.ID)
		}
	})

	e.PointerDown(sx, sy)
	e.PointerUp(sx, sy, false)
	e.Tick()

	if len(selected) != 1 || selected[0] != sprite.ID {
		t.Errorf("selection = %v, want [%s]", selected, sprite.ID)
	}
}

func TestProgressSnapshotShape(t *testing.T) {
	e := New(buildDataset(3, 5), testOptions())
	e.Tick()

	p := e.Progress()
	if p.TotalCount != 19 {
		t.Errorf("total = %d, want 19", p.TotalCount)
	}
	if p.CurrentLevel != loader.LevelViewport.String() {
		t.Errorf("level = %s", p.CurrentLevel)
	}
	if p.LoadedCount+p.PendingCount > p.TotalCount {
		t.Errorf("loaded %d + pending %d exceeds total %d",
			p.LoadedCount, p.PendingCount, p.TotalCount)
	}
}
