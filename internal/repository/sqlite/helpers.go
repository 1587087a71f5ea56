package sqlite

import (
	"database/sql"
	"time"

	"taxograph/internal/domain"
)

// nodeRow holds all columns from a node query for scanning.
//
// Column order must match between nodeColumns, scanArgs, and every SELECT
// using them; append new columns at the end when the schema grows.
type nodeRow struct {
	ID        string
	ParentID  sql.NullString
	Depth     int
	Weight    float64
	Score     float64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// nodeColumns is the SELECT column list for node queries
const nodeColumns = `id, parent_id, depth, weight, score, status, created_at, updated_at`

// scanArgs returns pointers to all fields for sql.Scan, in nodeColumns order
func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.ParentID,
		&r.Depth,
		&r.Weight,
		&r.Score,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the scanned row to a domain.Node with session state
// zeroed
func (r *nodeRow) toDomain() domain.Node {
	status := domain.Status(r.Status)
	if status == "" {
		status = domain.StatusUnknown
	}
	return domain.Node{
		ID:       r.ID,
		ParentID: nullToString(r.ParentID),
		Depth:    r.Depth,
		Weight:   r.Weight,
		Score:    r.Score,
		Status:   status,
	}
}

// nodeInsertArgs prepares arguments for node INSERT/UPSERT:
// id, parent_id, depth, weight, score, status
func nodeInsertArgs(node *domain.Node) []interface{} {
	return []interface{}{
		node.ID,
		stringToNull(node.ParentID),
		node.Depth,
		node.Weight,
		node.Score,
		string(node.Status),
	}
}

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
