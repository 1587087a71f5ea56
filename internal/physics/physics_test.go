package physics

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

func TestRepulsionSeparatesOverlappingNodes(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 0, Y: 0},
		{ID: "b", Weight: 10, X: 1, Y: 0},
	}, nil)
	loadAll(s)
	sim := New(s, DefaultOptions())

	for i := 0; i < 50; i++ {
		sim.Step()
	}

	a, _ := s.Node("a")
	b, _ := s.Node("b")
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if dist <= 1 {
		t.Errorf("expected nodes to separate, distance is %f", dist)
	}
}

func TestSpringPullsConnectedNodesTogether(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 0, Y: 0},
		{ID: "b", Weight: 10, X: 2000, Y: 0},
	}, []domain.Edge{{SourceID: "a", TargetID: "b"}})
	loadAll(s)
	opts := DefaultOptions()
	opts.Gravity = 0
	sim := New(s, opts)

	for i := 0; i < 100; i++ {
		sim.Step()
	}

	a, _ := s.Node("a")
	b, _ := s.Node("b")
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if dist >= 2000 {
		t.Errorf("expected spring to pull nodes closer, distance is %f", dist)
	}
}

func TestDepthDifferenceLengthensSpringTarget(t *testing.T) {
	opts := DefaultOptions()
	same := opts.SpringLength * (1 + opts.DepthFactor*0)
	far := opts.SpringLength * (1 + opts.DepthFactor*3)
	if far <= same {
		t.Errorf("expected larger target for larger depth difference: %f vs %f", far, same)
	}
}

func TestOnlyLoadedNodesMove(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 0, Y: 0},
		{ID: "b", Weight: 10, X: 5, Y: 0},
		{ID: "ghost", Weight: 10, X: 2, Y: 1},
	}, nil)
	a, _ := s.Node("a")
	b, _ := s.Node("b")
	a.Loaded, b.Loaded = true, true

	sim := New(s, DefaultOptions())
	for i := 0; i < 20; i++ {
		sim.Step()
	}

	ghost, _ := s.Node("ghost")
	if ghost.X != 2 || ghost.Y != 1 {
		t.Errorf("unloaded node moved to (%f, %f)", ghost.X, ghost.Y)
	}
}

func TestFixedNodeDoesNotMoveButOthersAvoidIt(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "pinned", Weight: 10, X: 0, Y: 0},
		{ID: "free", Weight: 10, X: 1, Y: 0},
	}, nil)
	loadAll(s)
	pinned, _ := s.Node("pinned")
	pinned.Fixed = true

	sim := New(s, DefaultOptions())
	for i := 0; i < 30; i++ {
		sim.Step()
	}

	if pinned.X != 0 || pinned.Y != 0 {
		t.Errorf("fixed node moved to (%f, %f)", pinned.X, pinned.Y)
	}
	free, _ := s.Node("free")
	dist := math.Hypot(free.X, free.Y)
	opts := DefaultOptions()
	minSeparation := 2*opts.Radius.Radius(10) + opts.CollisionMargin
	if dist < minSeparation*0.5 {
		t.Errorf("free node did not back away from fixed node: distance %f", dist)
	}
}

func TestAlphaDecaysToSettled(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 0, Y: 0},
		{ID: "b", Weight: 10, X: 100, Y: 0},
	}, nil)
	loadAll(s)
	sim := New(s, DefaultOptions())

	steps := 0
	for sim.Step() {
		steps++
		if steps > 10000 {
			t.Fatal("simulation never settled")
		}
	}

	if !sim.Settled() {
		t.Error("expected settled after stepping stopped")
	}
	if steps > DefaultOptions().MaxIterations {
		t.Errorf("relaxation run exceeded iteration bound: %d steps", steps)
	}

	t.Run("settled simulation does not step", func(t *testing.T) {
		a, _ := s.Node("a")
		x := a.X
		if sim.Step() {
			t.Error("expected Step to refuse while settled")
		}
		if a.X != x {
			t.Error("settled step moved a node")
		}
	})

	t.Run("reheat resumes stepping", func(t *testing.T) {
		sim.Reheat()
		if sim.Settled() {
			t.Error("expected unsettled after reheat")
		}
		if !sim.Step() {
			t.Error("expected Step to run after reheat")
		}
	})
}

func TestMaxIterationsBoundsRun(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: 0, Y: 0},
		{ID: "b", Weight: 10, X: 10, Y: 0},
	}, nil)
	loadAll(s)
	opts := DefaultOptions()
	opts.AlphaDecay = 1e-9 // effectively no cooling
	opts.MaxIterations = 25
	sim := New(s, opts)

	steps := 0
	for sim.Step() {
		steps++
		if steps > 1000 {
			break
		}
	}
	if steps != 25 {
		t.Errorf("expected run bounded at 25 iterations, got %d", steps)
	}
}

func TestNonFinitePositionRecovers(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "parent", Weight: 10, X: 50, Y: 60},
		{ID: "child", ParentID: "parent", Depth: 1, Weight: 10, X: 10, Y: 10},
	}, nil)
	loadAll(s)
	sim := New(s, DefaultOptions())

	child, _ := s.Node("child")
	child.X = math.NaN()
	child.VY = math.Inf(1)

	sim.Step()

	if !finite(child.X) || !finite(child.Y) {
		t.Fatalf("divergence not recovered: (%f, %f)", child.X, child.Y)
	}
	parent, _ := s.Node("parent")
	// Recovery anchors to the parent before the step displaces it further.
	if math.Hypot(child.X-parent.X, child.Y-parent.Y) > 200 {
		t.Errorf("child recovered too far from parent: (%f, %f)", child.X, child.Y)
	}
}

func TestGravityPullsTowardCentroid(t *testing.T) {
	s := buildStore([]domain.Node{
		{ID: "a", Weight: 10, X: -1000, Y: 0},
		{ID: "b", Weight: 10, X: 1000, Y: 0},
	}, nil)
	loadAll(s)
	opts := DefaultOptions()
	opts.Repulsion = 0
	opts.Gravity = 0.05
	sim := New(s, opts)

	for i := 0; i < 50; i++ {
		sim.Step()
	}

	a, _ := s.Node("a")
	b, _ := s.Node("b")
	if math.Abs(a.X) >= 1000 || math.Abs(b.X) >= 1000 {
		t.Errorf("expected nodes pulled inward, got %f and %f", a.X, b.X)
	}
}
