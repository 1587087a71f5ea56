// Package handler implements HTTP request handlers for the taxograph API.
//
// This package provides the HTTP layer for the taxograph REST API, handling
// requests for dataset management, engine snapshots, pointer input, and
// viewport operations.
//
// # Handlers
//
// GraphHandler handles dataset operations (import, export, node edits,
// cache stats) and forwards view and pointer commands to the running
// engine loop.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # API Design
//
// All handlers follow REST conventions:
// - GET for retrieval
// - POST for commands and creation
// - PUT for updates
// - DELETE for removal
//
// Errors are returned as JSON with appropriate HTTP status codes.
// Request bodies are validated before processing.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 202).
// Error responses return JSON with {error, details} structure.
//
// # Server-Sent Events
//
// The /events endpoint provides real-time updates via SSE: rendered frames,
// loading progress, and dataset lifecycle events.
package handler
