package codec

import (
	"fmt"
	"io"

	"taxograph/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlDataset represents the YAML structure for taxonomy data. Session state
// (position, velocity, flags) is never round-tripped; only identity fields
// travel through files.
type yamlDataset struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	ID       string  `yaml:"id"`
	ParentID string  `yaml:"parent_id,omitempty"`
	Depth    int     `yaml:"depth,omitempty"`
	Weight   float64 `yaml:"weight"`
	Score    float64 `yaml:"score,omitempty"`
	Status   string  `yaml:"status,omitempty"`
}

type yamlEdge struct {
	SourceID string `yaml:"source_id"`
	TargetID string `yaml:"target_id"`
}

// Parse imports a dataset from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Dataset, error) {
	var yd yamlDataset
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yd); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ds := &domain.Dataset{
		Nodes: make([]domain.Node, 0, len(yd.Nodes)),
		Edges: make([]domain.Edge, 0, len(yd.Edges)),
	}
	for _, yn := range yd.Nodes {
		ds.Nodes = append(ds.Nodes, domain.Node{
			ID:       yn.ID,
			ParentID: yn.ParentID,
			Depth:    yn.Depth,
			Weight:   yn.Weight,
			Score:    yn.Score,
			Status:   domain.Status(yn.Status),
		})
	}
	for _, ye := range yd.Edges {
		ds.Edges = append(ds.Edges, domain.Edge{
			SourceID: ye.SourceID,
			TargetID: ye.TargetID,
		})
	}

	Normalize(ds)
	return ds, nil
}

// Export writes a dataset as YAML
func (c *YAMLCodec) Export(ds *domain.Dataset, w io.Writer) error {
	yd := yamlDataset{
		Nodes: make([]yamlNode, 0, len(ds.Nodes)),
		Edges: make([]yamlEdge, 0, len(ds.Edges)),
	}

	for _, n := range ds.Nodes {
		yd.Nodes = append(yd.Nodes, yamlNode{
			ID:       n.ID,
			ParentID: n.ParentID,
			Depth:    n.Depth,
			Weight:   n.Weight,
			Score:    n.Score,
			Status:   string(n.Status),
		})
	}
	for _, e := range ds.Edges {
		yd.Edges = append(yd.Edges, yamlEdge{
			SourceID: e.SourceID,
			TargetID: e.TargetID,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yd); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
