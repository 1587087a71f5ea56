package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"taxograph/internal/codec"
	"taxograph/internal/domain"
	"taxograph/internal/repository"
)

// Session is the part of the engine the service drives: installing a new
// dataset and resetting the current one
type Session interface {
	LoadDataset(ds *domain.Dataset)
	ResetSession()
}

// DatasetService provides business logic for taxonomy dataset operations:
// parsing imports, caching them in the repository, and pushing them into the
// running session.
type DatasetService struct {
	repo     repository.Repository
	session  Session
	eventBus *EventBus
}

// NewDatasetService creates a new dataset service
func NewDatasetService(repo repository.Repository, session Session, eventBus *EventBus) *DatasetService {
	return &DatasetService{
		repo:     repo,
		session:  session,
		eventBus: eventBus,
	}
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Format    string `json:"format"`
}

// ImportJSON imports a dataset from JSON
func (s *DatasetService) ImportJSON(ctx context.Context, data []byte) (*ImportResult, error) {
	return s.importWith(ctx, codec.NewJSONCodec(), bytes.NewReader(data))
}

// ImportYAML imports a dataset from YAML
func (s *DatasetService) ImportYAML(ctx context.Context, data []byte) (*ImportResult, error) {
	return s.importWith(ctx, codec.NewYAMLCodec(), bytes.NewReader(data))
}

// ImportFile imports a dataset from a file, picking the codec by extension
func (s *DatasetService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	imp, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	return s.importWith(ctx, imp, f)
}

func (s *DatasetService) importWith(ctx context.Context, imp codec.Importer, r io.Reader) (*ImportResult, error) {
	ds, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(ds.Nodes) == 0 {
		return nil, fmt.Errorf("dataset contains no nodes")
	}

	if err := s.repo.ImportDataset(ctx, ds); err != nil {
		return nil, err
	}
	s.session.LoadDataset(ds)

	result := &ImportResult{
		NodeCount: len(ds.Nodes),
		EdgeCount: len(ds.Edges),
		Format:    imp.Format(),
	}
	s.eventBus.Publish(Event{
		Type:    EventDatasetImported,
		Payload: result,
	})
	return result, nil
}

// ReloadFromCache rebuilds the session from the repository's cached dataset
func (s *DatasetService) ReloadFromCache(ctx context.Context) error {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return err
	}
	if len(ds.Nodes) == 0 {
		return fmt.Errorf("no cached dataset to reload")
	}

	s.session.LoadDataset(ds)
	s.eventBus.Publish(Event{
		Type:    EventDatasetReloaded,
		Payload: map[string]int{"node_count": len(ds.Nodes)},
	})
	return nil
}

// GetDataset returns the cached dataset
func (s *DatasetService) GetDataset(ctx context.Context) (*domain.Dataset, error) {
	return s.repo.GetDataset(ctx)
}

// GetNode retrieves a single node by ID
func (s *DatasetService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	node, err := s.repo.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("node %s not found", id)
	}
	return node, nil
}

// UpdateNode upserts a node's identity fields in the cache. The running
// session is not patched; callers reload when they want the change visible.
func (s *DatasetService) UpdateNode(ctx context.Context, node *domain.Node) error {
	if node.ID == "" {
		return fmt.Errorf("node ID required")
	}

	if err := s.repo.UpsertNode(ctx, node); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeUpdated,
		Payload: map[string]string{"node_id": node.ID},
	})
	return nil
}

// DeleteNode removes a node and its edges from the cache
func (s *DatasetService) DeleteNode(ctx context.Context, id string) error {
	if err := s.repo.DeleteNode(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeDeleted,
		Payload: map[string]string{"node_id": id},
	})
	return nil
}

// ResetSession clears all session state while keeping the dataset
func (s *DatasetService) ResetSession() {
	s.session.ResetSession()
	s.eventBus.Publish(Event{Type: EventSessionReset})
}

// Stats summarizes the cached dataset
func (s *DatasetService) Stats(ctx context.Context) (repository.Stats, error) {
	return s.repo.Stats(ctx)
}

// ExportJSON exports the cached dataset as JSON
func (s *DatasetService) ExportJSON(ctx context.Context) ([]byte, error) {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := codec.NewJSONCodec().Export(ds, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportYAML exports the cached dataset as YAML
func (s *DatasetService) ExportYAML(ctx context.Context, w io.Writer) error {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return err
	}
	return codec.NewYAMLCodec().Export(ds, w)
}
