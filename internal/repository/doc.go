// Package repository defines the data access interfaces for the taxonomy
// dataset cache.
//
// The engine itself is in-memory and session-scoped; the repository holds
// the source dataset between imports so a restart can rebuild the session
// without refetching. The actual implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses WAL mode for concurrency and handles:
//
// - CRUD operations for taxonomy nodes
// - Foreign key constraints and cascade deletes on edges
// - Transactional full-dataset imports
//
// # Schema Migration
//
// The sqlite repository creates its schema on startup; tables are additive
// and idempotent.
package repository
