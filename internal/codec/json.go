package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"taxograph/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// jsonDataset represents the JSON structure for taxonomy data. Session state
// (position, velocity, flags) is never round-tripped; only identity fields
// travel through files.
type jsonDataset struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent_id,omitempty"`
	Depth    int     `json:"depth,omitempty"`
	Weight   float64 `json:"weight"`
	Score    float64 `json:"score,omitempty"`
	Status   string  `json:"status,omitempty"`
}

type jsonEdge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// Parse imports a dataset from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Dataset, error) {
	var jd jsonDataset
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&jd); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	ds := &domain.Dataset{
		Nodes: make([]domain.Node, 0, len(jd.Nodes)),
		Edges: make([]domain.Edge, 0, len(jd.Edges)),
	}
	for _, jn := range jd.Nodes {
		ds.Nodes = append(ds.Nodes, domain.Node{
			ID:       jn.ID,
			ParentID: jn.ParentID,
			Depth:    jn.Depth,
			Weight:   jn.Weight,
			Score:    jn.Score,
			Status:   domain.Status(jn.Status),
		})
	}
	for _, je := range jd.Edges {
		ds.Edges = append(ds.Edges, domain.Edge{
			SourceID: je.SourceID,
			TargetID: je.TargetID,
		})
	}

	Normalize(ds)
	return ds, nil
}

// Export writes a dataset as JSON
func (c *JSONCodec) Export(ds *domain.Dataset, w io.Writer) error {
	jd := jsonDataset{
		Nodes: make([]jsonNode, 0, len(ds.Nodes)),
		Edges: make([]jsonEdge, 0, len(ds.Edges)),
	}

	for _, n := range ds.Nodes {
		jd.Nodes = append(jd.Nodes, jsonNode{
			ID:       n.ID,
			ParentID: n.ParentID,
			Depth:    n.Depth,
			Weight:   n.Weight,
			Score:    n.Score,
			Status:   string(n.Status),
		})
	}
	for _, e := range ds.Edges {
		jd.Edges = append(jd.Edges, jsonEdge{
			SourceID: e.SourceID,
			TargetID: e.TargetID,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(&jd); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
