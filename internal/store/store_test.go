package store

import (
	"testing"

	"taxograph/internal/domain"
)

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Nodes: []domain.Node{
			{ID: "root", Depth: 0, Weight: 500, Score: 0.9, Status: domain.StatusOptimized},
			{ID: "shoes", ParentID: "root", Depth: 1, Weight: 120, Score: 0.7, Status: domain.StatusOpportunity},
			{ID: "boots", ParentID: "shoes", Depth: 2, Weight: 40, Score: 0.5, Status: domain.StatusMissing},
		},
		Edges: []domain.Edge{
			{SourceID: "root", TargetID: "shoes"},
			{SourceID: "shoes", TargetID: "boots"},
		},
	}
}

func TestBuild(t *testing.T) {
	t.Run("valid dataset builds without warnings", func(t *testing.T) {
		s := Build(testDataset())
		if len(s.Warnings()) != 0 {
			t.Errorf("expected no warnings, got %v", s.Warnings())
		}
		if s.NodeCount() != 3 {
			t.Errorf("expected 3 nodes, got %d", s.NodeCount())
		}
		if s.EdgeCount() != 2 {
			t.Errorf("expected 2 edges, got %d", s.EdgeCount())
		}
	})

	t.Run("duplicate id keeps first occurrence and warns once", func(t *testing.T) {
		ds := &domain.Dataset{
			Nodes: []domain.Node{
				{ID: "a", Weight: 1},
				{ID: "a", Weight: 99},
			},
		}
		s := Build(ds)
		if s.NodeCount() != 1 {
			t.Fatalf("expected 1 node, got %d", s.NodeCount())
		}
		if len(s.Warnings()) != 1 {
			t.Fatalf("expected 1 warning, got %d", len(s.Warnings()))
		}
		if s.Warnings()[0].Kind != domain.WarningMalformedNode {
			t.Errorf("expected malformed_node warning, got %s", s.Warnings()[0].Kind)
		}
		n, _ := s.Node("a")
		if n.Weight != 1 {
			t.Errorf("expected first occurrence to survive, got weight %f", n.Weight)
		}
	})

	t.Run("missing id is rejected with warning", func(t *testing.T) {
		ds := &domain.Dataset{Nodes: []domain.Node{{Weight: 5}}}
		s := Build(ds)
		if s.NodeCount() != 0 {
			t.Errorf("expected 0 nodes, got %d", s.NodeCount())
		}
		if len(s.Warnings()) != 1 || s.Warnings()[0].Kind != domain.WarningMalformedNode {
			t.Errorf("expected one malformed_node warning, got %v", s.Warnings())
		}
	})

	t.Run("dangling edges are dropped with warnings", func(t *testing.T) {
		ds := testDataset()
		ds.Edges = append(ds.Edges,
			domain.Edge{SourceID: "ghost", TargetID: "root"},
			domain.Edge{SourceID: "root", TargetID: "phantom"},
		)
		s := Build(ds)
		if s.EdgeCount() != 2 {
			t.Errorf("expected 2 edges, got %d", s.EdgeCount())
		}
		if len(s.Warnings()) != 2 {
			t.Fatalf("expected 2 warnings, got %d", len(s.Warnings()))
		}
		for _, w := range s.Warnings() {
			if w.Kind != domain.WarningDanglingEdge {
				t.Errorf("expected dangling_edge, got %s", w.Kind)
			}
		}
	})

	t.Run("self loops are dropped", func(t *testing.T) {
		ds := testDataset()
		ds.Edges = append(ds.Edges, domain.Edge{SourceID: "root", TargetID: "root"})
		s := Build(ds)
		if s.EdgeCount() != 2 {
			t.Errorf("expected self loop dropped, got %d edges", s.EdgeCount())
		}
	})

	t.Run("duplicate edges are deduplicated", func(t *testing.T) {
		ds := testDataset()
		ds.Edges = append(ds.Edges,
			domain.Edge{SourceID: "root", TargetID: "shoes"},
			domain.Edge{SourceID: "shoes", TargetID: "root"},
		)
		s := Build(ds)
		if s.EdgeCount() != 2 {
			t.Errorf("expected 2 edges after dedup, got %d", s.EdgeCount())
		}
		if len(s.Neighbors("root")) != 1 {
			t.Errorf("expected 1 neighbor for root, got %v", s.Neighbors("root"))
		}
	})
}

func TestStoreAccess(t *testing.T) {
	s := Build(testDataset())

	t.Run("lookup by id", func(t *testing.T) {
		n, ok := s.Node("shoes")
		if !ok {
			t.Fatal("expected shoes to exist")
		}
		if n.ParentID != "root" {
			t.Errorf("expected parent root, got %s", n.ParentID)
		}
		if _, ok := s.Node("nope"); ok {
			t.Error("expected missing id to report not found")
		}
	})

	t.Run("adjacency is bidirectional", func(t *testing.T) {
		if got := s.Neighbors("shoes"); len(got) != 2 {
			t.Errorf("expected 2 neighbors for shoes, got %v", got)
		}
		if got := s.Neighbors("boots"); len(got) != 1 || got[0] != "shoes" {
			t.Errorf("expected boots adjacent to shoes, got %v", got)
		}
	})

	t.Run("iteration order is stable insertion order", func(t *testing.T) {
		nodes := s.Nodes()
		want := []string{"root", "shoes", "boots"}
		for i, id := range want {
			if nodes[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, nodes[i].ID)
			}
		}
	})

	t.Run("reset session clears mutable state", func(t *testing.T) {
		n, _ := s.Node("root")
		n.X, n.Y, n.VX = 10, 20, 3
		n.Loaded, n.Fixed = true, true
		s.ResetSession()
		if n.X != 0 || n.Y != 0 || n.VX != 0 || n.Loaded || n.Fixed {
			t.Errorf("expected session state cleared, got %+v", n)
		}
		if s.LoadedCount() != 0 {
			t.Errorf("expected loaded count 0, got %d", s.LoadedCount())
		}
	})
}
