package domain

import "fmt"

// WarningKind classifies a non-fatal dataset construction problem
type WarningKind string

const (
	WarningMalformedNode WarningKind = "malformed_node" // missing or duplicate id
	WarningDanglingEdge  WarningKind = "dangling_edge"  // endpoint not in dataset
)

// Warning records a dataset entry that was rejected during store construction.
// Warnings are advisory: construction always proceeds with the valid subset.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
}

// NewWarning creates a warning with a formatted detail message
func NewWarning(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
