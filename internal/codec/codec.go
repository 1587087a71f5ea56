package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"taxograph/internal/domain"
)

// Importer parses a taxonomy dataset from an external format
type Importer interface {
	Parse(r io.Reader) (*domain.Dataset, error)
	Format() string
}

// Exporter writes a taxonomy dataset to an external format
type Exporter interface {
	Export(ds *domain.Dataset, w io.Writer) error
	Format() string
}

// ForPath picks an importer from a file extension
func ForPath(path string) (Importer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONCodec(), nil
	case ".yaml", ".yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", path)
	}
}

// Normalize fills in fields a source may omit: depth is derived by walking
// the parent chain, and an empty status becomes unknown. Unresolvable or
// cyclic parent chains leave depth at zero; the store surfaces those nodes
// through its own validation.
func Normalize(ds *domain.Dataset) {
	byID := make(map[string]int, len(ds.Nodes))
	for i := range ds.Nodes {
		byID[ds.Nodes[i].ID] = i
	}

	var depthOf func(i int, seen map[int]struct{}) int
	depthOf = func(i int, seen map[int]struct{}) int {
		n := &ds.Nodes[i]
		if n.Depth != 0 || n.ParentID == "" {
			return n.Depth
		}
		if _, cycle := seen[i]; cycle {
			return 0
		}
		seen[i] = struct{}{}
		parent, ok := byID[n.ParentID]
		if !ok {
			return 0
		}
		n.Depth = depthOf(parent, seen) + 1
		return n.Depth
	}

	for i := range ds.Nodes {
		if ds.Nodes[i].Depth == 0 && ds.Nodes[i].ParentID != "" {
			depthOf(i, make(map[int]struct{}))
		}
		if ds.Nodes[i].Status == "" {
			ds.Nodes[i].Status = domain.StatusUnknown
		}
	}
}
