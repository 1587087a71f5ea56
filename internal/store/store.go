// Package store builds and serves the immutable taxonomy dataset: O(1) id
// lookup, adjacency, and deterministic iteration order. The store is
// constructed once per dataset import; a new dataset means a new store.
package store

import (
	"taxograph/internal/domain"
)

// Store holds the validated node arena and edge list for one dataset.
// Node identity fields are immutable after construction; the per-session
// fields on each record (position, velocity, loaded, fixed) are mutated in
// place by the loader, physics, and interaction services.
type Store struct {
	nodes     []*domain.Node
	byID      map[string]*domain.Node
	edges     []domain.Edge
	adjacency map[string][]string
	warnings  []domain.Warning
}

// Build validates a raw dataset into a store. Malformed nodes (missing or
// duplicate id) and dangling edges (unresolved endpoint) are collected as
// advisory warnings and excluded; construction never fails.
func Build(ds *domain.Dataset) *Store {
	s := &Store{
		byID:      make(map[string]*domain.Node, len(ds.Nodes)),
		adjacency: make(map[string][]string),
	}

	for i := range ds.Nodes {
		n := ds.Nodes[i] // copy; the store owns its records
		if n.ID == "" {
			s.warnings = append(s.warnings, domain.NewWarning(
				domain.WarningMalformedNode, "node at index %d has no id", i))
			continue
		}
		if _, dup := s.byID[n.ID]; dup {
			s.warnings = append(s.warnings, domain.NewWarning(
				domain.WarningMalformedNode, "duplicate node id %q", n.ID))
			continue
		}
		if n.Status == "" {
			n.Status = domain.StatusUnknown
		}
		rec := &n
		s.nodes = append(s.nodes, rec)
		s.byID[n.ID] = rec
	}

	seen := make(map[string]struct{}, len(ds.Edges))
	for _, e := range ds.Edges {
		if _, ok := s.byID[e.SourceID]; !ok {
			s.warnings = append(s.warnings, domain.NewWarning(
				domain.WarningDanglingEdge, "edge %s->%s: unknown source", e.SourceID, e.TargetID))
			continue
		}
		if _, ok := s.byID[e.TargetID]; !ok {
			s.warnings = append(s.warnings, domain.NewWarning(
				domain.WarningDanglingEdge, "edge %s->%s: unknown target", e.SourceID, e.TargetID))
			continue
		}
		if e.SourceID == e.TargetID {
			s.warnings = append(s.warnings, domain.NewWarning(
				domain.WarningDanglingEdge, "edge %s->%s: self loop", e.SourceID, e.TargetID))
			continue
		}
		key := e.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		s.edges = append(s.edges, e)
		s.adjacency[e.SourceID] = append(s.adjacency[e.SourceID], e.TargetID)
		s.adjacency[e.TargetID] = append(s.adjacency[e.TargetID], e.SourceID)
	}

	return s
}

// Node returns the record for an id
func (s *Store) Node(id string) (*domain.Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Nodes returns all records in stable insertion order. Callers must not
// reorder the slice.
func (s *Store) Nodes() []*domain.Node {
	return s.nodes
}

// Edges returns all valid edges
func (s *Store) Edges() []domain.Edge {
	return s.edges
}

// Neighbors returns the adjacent node ids for an id
func (s *Store) Neighbors(id string) []string {
	return s.adjacency[id]
}

// Warnings returns the advisory construction warnings
func (s *Store) Warnings() []domain.Warning {
	return s.warnings
}

// NodeCount returns the number of valid nodes
func (s *Store) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of valid edges
func (s *Store) EdgeCount() int {
	return len(s.edges)
}

// LoadedCount returns the number of nodes currently flagged loaded
func (s *Store) LoadedCount() int {
	count := 0
	for _, n := range s.nodes {
		if n.Loaded {
			count++
		}
	}
	return count
}

// ResetSession clears the per-session state of every record
func (s *Store) ResetSession() {
	for _, n := range s.nodes {
		n.ResetSession()
	}
}
