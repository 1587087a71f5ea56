package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taxograph/internal/domain"
	"taxograph/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS taxonomy_nodes (
		id TEXT PRIMARY KEY,
		parent_id TEXT,
		depth INTEGER NOT NULL DEFAULT 0,
		weight REAL NOT NULL DEFAULT 0,
		score REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'unknown',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS taxonomy_edges (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		PRIMARY KEY (source_id, target_id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON taxonomy_nodes(parent_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_status ON taxonomy_nodes(status);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON taxonomy_edges(target_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// GetDataset loads the complete cached dataset. Iteration order is stable
// (insertion order by rowid) so rebuilt stores keep deterministic ordering.
func (r *Repository) GetDataset(ctx context.Context) (*domain.Dataset, error) {
	ds := &domain.Dataset{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM taxonomy_nodes ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		ds.Nodes = append(ds.Nodes, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	edgeRows, err := r.db.QueryContext(ctx, `
		SELECT source_id, target_id FROM taxonomy_edges ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e domain.Edge
		if err := edgeRows.Scan(&e.SourceID, &e.TargetID); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		ds.Edges = append(ds.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return ds, nil
}

// GetNode retrieves a single node by ID. Returns nil without error when the
// id is unknown.
func (r *Repository) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	var row nodeRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+nodeColumns+` FROM taxonomy_nodes WHERE id = ?
	`, id).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}

	n := row.toDomain()
	return &n, nil
}

// Stats summarizes the cached dataset
func (r *Repository) Stats(ctx context.Context) (repository.Stats, error) {
	stats := repository.Stats{ByStatus: make(map[string]int)}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM taxonomy_nodes`).Scan(&stats.NodeCount); err != nil {
		return stats, fmt.Errorf("failed to count nodes: %w", err)
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM taxonomy_edges`).Scan(&stats.EdgeCount); err != nil {
		return stats, fmt.Errorf("failed to count edges: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM taxonomy_nodes GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("failed to count statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("error iterating statuses: %w", err)
	}

	var imported sql.NullString
	err = r.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = 'last_import'`).Scan(&imported)
	if err != nil && err != sql.ErrNoRows {
		return stats, fmt.Errorf("failed to query last import: %w", err)
	}
	if imported.Valid {
		if t, perr := time.Parse(time.RFC3339, imported.String); perr == nil {
			stats.LastImport = &t
		}
	}

	return stats, nil
}

// UpsertNode inserts or updates a node's identity fields
func (r *Repository) UpsertNode(ctx context.Context, node *domain.Node) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO taxonomy_nodes (id, parent_id, depth, weight, score, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			depth = excluded.depth,
			weight = excluded.weight,
			score = excluded.score,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, nodeInsertArgs(node)...)

	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}
	return nil
}

// DeleteNode removes a node and any edges touching it
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM taxonomy_edges WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
		return fmt.Errorf("failed to delete edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM taxonomy_nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ImportDataset replaces all cached data with the provided dataset
func (r *Repository) ImportDataset(ctx context.Context, ds *domain.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear existing data (order matters due to foreign keys)
	if _, err := tx.ExecContext(ctx, `DELETE FROM taxonomy_edges`); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM taxonomy_nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO taxonomy_nodes (id, parent_id, depth, weight, score, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	for i := range ds.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, nodeInsertArgs(&ds.Nodes[i])...); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", ds.Nodes[i].ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO taxonomy_edges (source_id, target_id) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}
	defer edgeStmt.Close()

	for _, e := range ds.Edges {
		if _, err := edgeStmt.ExecContext(ctx, e.SourceID, e.TargetID); err != nil {
			return fmt.Errorf("failed to insert edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES ('last_import', ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to store import timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
