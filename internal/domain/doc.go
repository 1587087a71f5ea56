// Package domain defines the core domain types for the Taxograph taxonomy
// visualization system.
//
// This package contains the plain data records operated on by the rest of the
// system: taxonomy nodes, edges, the viewport transform, and the derived
// progress/warning value objects. All behavior (loading, physics, rendering,
// interaction) lives in services that operate over these records and
// id-indexed maps, never on the records themselves.
//
// # Core Types
//
// Node represents a taxonomy category with hierarchy metadata (parent, depth),
// sizing inputs (weight, score), a status category, and the per-session
// simulation state (position, velocity, loaded/fixed flags).
//
// Edge links two nodes by id. Edges never own nodes; both endpoints are weak
// references resolved against the data store.
//
// Viewport holds the pan/zoom transform and visible extent, with conversions
// between screen space and world space.
//
// # Design Principles
//
//   - Plain records, no inherited behavior
//   - Single writer per mutable field (loader, physics, or interaction)
//   - Construction problems are advisory warnings, never failures
package domain
