package repository

import (
	"context"
	"time"

	"taxograph/internal/domain"
)

// Stats summarizes the cached dataset
type Stats struct {
	NodeCount  int            `json:"node_count"`
	EdgeCount  int            `json:"edge_count"`
	ByStatus   map[string]int `json:"by_status"`
	LastImport *time.Time     `json:"last_import,omitempty"`
}

// Repository defines the interface for taxonomy dataset access
type Repository interface {
	// Read operations
	GetDataset(ctx context.Context) (*domain.Dataset, error)
	GetNode(ctx context.Context, id string) (*domain.Node, error)
	Stats(ctx context.Context) (Stats, error)

	// Write operations
	UpsertNode(ctx context.Context, node *domain.Node) error
	DeleteNode(ctx context.Context, id string) error

	// Bulk operations
	ImportDataset(ctx context.Context, ds *domain.Dataset) error

	// Close releases resources
	Close() error
}
