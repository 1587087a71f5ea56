package domain

// Edge represents a relationship between two taxonomy nodes.
// Both endpoints are weak references; the edge never owns its nodes and is
// only drawable when both endpoints are loaded.
type Edge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// NewEdge creates an edge between two node ids
func NewEdge(sourceID, targetID string) *Edge {
	return &Edge{SourceID: sourceID, TargetID: targetID}
}

// Key returns a direction-insensitive identity for the edge, used to
// deduplicate adjacency entries
func (e *Edge) Key() string {
	if e.SourceID > e.TargetID {
		return e.TargetID + "\x00" + e.SourceID
	}
	return e.SourceID + "\x00" + e.TargetID
}
