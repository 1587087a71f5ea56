package domain

// Dataset is the raw node/edge payload supplied by the data collaborator
// (file import or backend fetch). It is validated into a store once per
// import; a new dataset always triggers a full reset, never a patch.
type Dataset struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Progress is a snapshot of progressive-loading state for progress indicators
type Progress struct {
	LoadedCount  int    `json:"loaded_count"`
	PendingCount int    `json:"pending_count"`
	TotalCount   int    `json:"total_count"`
	CurrentLevel string `json:"current_level"`
	Throttled    bool   `json:"throttled"`
}
