package domain

// Status represents the optimization status category of a taxonomy node
type Status string

const (
	StatusOptimized       Status = "optimized"       // Content exists and performs well
	StatusOpportunity     Status = "opportunity"     // High-value gap worth targeting
	StatusUnderperforming Status = "underperforming" // Content exists but lags its potential
	StatusMissing         Status = "missing"         // No content for this category yet
	StatusExcluded        Status = "excluded"        // Deliberately out of scope (noindex etc.)
	StatusUnknown         Status = "unknown"
)

// Node represents a taxonomy category in the graph.
//
// The identity fields (ID through Status) are immutable after dataset import.
// The remaining fields are per-session state with a single designated writer:
// position/velocity belong to the physics simulator (or the interaction
// controller while Fixed is set), Loaded belongs to the progressive loader,
// and Fixed belongs to the interaction controller.
type Node struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent_id,omitempty"` // empty for roots
	Depth    int     `json:"depth"`
	Weight   float64 `json:"weight"` // e.g. product count; drives radius
	Score    float64 `json:"score"`  // opportunity score; drives core priority
	Status   Status  `json:"status"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"-"`
	VY float64 `json:"-"`

	Loaded bool `json:"loaded"`
	Fixed  bool `json:"fixed"`
}

// NewNode creates a node with identity fields set and session state zeroed
func NewNode(id, parentID string, depth int, weight, score float64, status Status) *Node {
	if status == "" {
		status = StatusUnknown
	}
	return &Node{
		ID:       id,
		ParentID: parentID,
		Depth:    depth,
		Weight:   weight,
		Score:    score,
		Status:   status,
	}
}

// ResetSession clears all per-session state back to the imported baseline
func (n *Node) ResetSession() {
	n.X, n.Y = 0, 0
	n.VX, n.VY = 0, 0
	n.Loaded = false
	n.Fixed = false
}
