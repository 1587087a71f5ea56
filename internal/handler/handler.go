package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"taxograph/internal/domain"
	"taxograph/internal/engine"
	"taxograph/internal/service"
)

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc *service.DatasetService
	eng *engine.Engine
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.DatasetService, eng *engine.Engine) *GraphHandler {
	return &GraphHandler{svc: svc, eng: eng}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetDataset returns the full cached dataset
func (h *GraphHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.GetDataset(r.Context())
	if err != nil {
		log.Printf("Failed to get dataset: %v", err)
		h.writeError(w, "Failed to get dataset", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, ds, http.StatusOK)
}

// GetFrame returns the most recent draw list produced by the engine
func (h *GraphHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	frame := h.eng.Frame()
	if frame == nil {
		h.writeError(w, "No frame yet", "The engine has not produced a frame", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, frame, http.StatusOK)
}

// GetProgress returns the current loading snapshot
func (h *GraphHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.eng.Progress(), http.StatusOK)
}

// GetWarnings returns advisory warnings from dataset construction
func (h *GraphHandler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	warnings := h.eng.Warnings()
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	h.writeJSON(w, warnings, http.StatusOK)
}

// GetStats returns cache statistics
func (h *GraphHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		log.Printf("Failed to get stats: %v", err)
		h.writeError(w, "Failed to get stats", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats, http.StatusOK)
}

// GetNode returns a single node
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/nodes/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	node, err := h.svc.GetNode(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get node: %v", err)
		h.writeError(w, "Failed to get node", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// UpdateNode updates a node in the cache
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/nodes/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	var node domain.Node
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	node.ID = id // Ensure ID matches path

	if err := h.svc.UpdateNode(r.Context(), &node); err != nil {
		log.Printf("Failed to update node: %v", err)
		h.writeError(w, "Failed to update node", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode deletes a node from the cache
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/nodes/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteNode(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to delete node: %v", err)
		h.writeError(w, "Failed to delete node", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportDataset imports a dataset from the request body. The format is
// chosen by Content-Type: application/x-yaml parses as YAML, everything
// else as JSON.
func (h *GraphHandler) ImportDataset(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	ct := r.Header.Get("Content-Type")
	var result *service.ImportResult
	if strings.Contains(ct, "yaml") {
		result, err = h.svc.ImportYAML(r.Context(), data)
	} else {
		result, err = h.svc.ImportJSON(r.Context(), data)
	}
	if err != nil {
		log.Printf("Failed to import dataset: %v", err)
		h.writeError(w, "Failed to import dataset", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// Reload pushes the cached dataset back into the engine session
func (h *GraphHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ReloadFromCache(r.Context()); err != nil {
		log.Printf("Failed to reload: %v", err)
		h.writeError(w, "Failed to reload", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetSession clears loaded and position state without touching the cache
func (h *GraphHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetSession()
	h.writeJSON(w, map[string]string{"status": "reset"}, http.StatusOK)
}

// ExportJSON exports the cached dataset as JSON
func (h *GraphHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportJSON(r.Context())
	if err != nil {
		log.Printf("Failed to export JSON: %v", err)
		h.writeError(w, "Failed to export JSON", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=taxonomy.json")
	w.Write(data)
}

// ExportYAML exports the cached dataset as YAML
func (h *GraphHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=taxonomy.yml")

	if err := h.svc.ExportYAML(r.Context(), w); err != nil {
		log.Printf("Failed to export YAML: %v", err)
		// Can't write error response as we already set headers
		return
	}
}

// ZoomIn steps the viewport scale up about the center
func (h *GraphHandler) ZoomIn(w http.ResponseWriter, r *http.Request) {
	h.eng.ZoomIn()
	h.writeJSON(w, map[string]string{"status": "queued"}, http.StatusAccepted)
}

// ZoomOut steps the viewport scale down about the center
func (h *GraphHandler) ZoomOut(w http.ResponseWriter, r *http.Request) {
	h.eng.ZoomOut()
	h.writeJSON(w, map[string]string{"status": "queued"}, http.StatusAccepted)
}

// ResetView restores the identity transform
func (h *GraphHandler) ResetView(w http.ResponseWriter, r *http.Request) {
	h.eng.ResetView()
	h.writeJSON(w, map[string]string{"status": "queued"}, http.StatusAccepted)
}

// FitToView frames all loaded nodes
func (h *GraphHandler) FitToView(w http.ResponseWriter, r *http.Request) {
	h.eng.FitToView()
	h.writeJSON(w, map[string]string{"status": "queued"}, http.StatusAccepted)
}

// ZoomToNode starts an animated zoom centering the given node
func (h *GraphHandler) ZoomToNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/view/zoom-to/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	h.eng.ZoomToNode(id)
	h.writeJSON(w, map[string]string{"status": "queued", "node_id": id}, http.StatusAccepted)
}

// ResizeRequest sets the display extent
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Resize updates the engine's display dimensions
func (h *GraphHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		h.writeError(w, "Invalid dimensions", "Width and height must be positive", http.StatusBadRequest)
		return
	}

	h.eng.SetSize(req.Width, req.Height)
	h.writeJSON(w, map[string]string{"status": "queued"}, http.StatusAccepted)
}

// ForceLoadRequest names nodes to load regardless of level and caps
type ForceLoadRequest struct {
	NodeIDs []string `json:"node_ids"`
}

// ForceLoad loads the given nodes immediately
func (h *GraphHandler) ForceLoad(w http.ResponseWriter, r *http.Request) {
	var req ForceLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.NodeIDs) == 0 {
		h.writeError(w, "Node IDs required", "Provide at least one node id", http.StatusBadRequest)
		return
	}

	h.eng.ForceLoad(req.NodeIDs)
	h.writeJSON(w, map[string]interface{}{
		"status":   "queued",
		"node_ids": req.NodeIDs,
	}, http.StatusAccepted)
}

// PointerRequest is a pointer event injected from a client
type PointerRequest struct {
	Kind     string  `json:"kind"` // down, move, up, wheel
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Additive bool    `json:"additive,omitempty"` // toggle selection on up
	Factor   float64 `json:"factor,omitempty"`   // wheel zoom factor
}

// Pointer injects a pointer event into the interaction controller
func (h *GraphHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Kind {
	case "down":
		h.eng.PointerDown(req.X, req.Y)
	case "move":
		h.eng.PointerMove(req.X, req.Y)
	case "up":
		h.eng.PointerUp(req.X, req.Y, req.Additive)
	case "wheel":
		if req.Factor <= 0 {
			h.writeError(w, "Invalid wheel factor", "Factor must be positive", http.StatusBadRequest)
			return
		}
		h.eng.Wheel(req.X, req.Y, req.Factor)
	default:
		h.writeError(w, "Unknown pointer kind", "Expected down, move, up or wheel", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]string{"status": "queued"}, http.StatusAccepted)
}

// Helper methods

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

func extractPathParam(path, prefix string) string {
	if strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, prefix)
	}
	return ""
}
