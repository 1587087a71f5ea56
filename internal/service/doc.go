// Package service implements business logic for taxonomy dataset management.
//
// This package coordinates between the HTTP handlers, the repository cache,
// and the running engine session, implementing import validation and event
// publishing.
//
// # Services
//
// DatasetService manages dataset operations: parsing imports via codec
// adapters, caching them in the repository, pushing them into the engine
// session, and export functionality.
//
// # Event System
//
// The service publishes events via EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE). Event types cover dataset
// imports and reloads, node edits, and session resets.
//
// # Design Principles
//
// - Services own business logic and validation
// - Repository pattern for data access
// - Event-driven for real-time updates
// - Context-aware for cancellation and timeouts
package service
