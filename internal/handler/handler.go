package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"switchscope/internal/domain"
)

// TopologyService is the discovery surface the API exposes.
type TopologyService interface {
	DiscoverSwitches(ctx context.Context) ([]domain.Switch, error)
	Interfaces(ctx context.Context) (map[string]domain.Interface, error)
	RefreshSwitches() ([]domain.Switch, bool)
	ClearCache()
}

// UpstreamCache clears cached controller responses.
type UpstreamCache interface {
	ClearCache()
}

// TopologyHandler handles topology API requests.
type TopologyHandler struct {
	svc      TopologyService
	upstream UpstreamCache
}

// NewTopologyHandler creates a topology handler.
func NewTopologyHandler(svc TopologyService) *TopologyHandler {
	return &TopologyHandler{svc: svc}
}

// SetUpstreamCache wires the controller response cache so POST
// /api/cache/clear flushes both layers.
func (h *TopologyHandler) SetUpstreamCache(c UpstreamCache) {
	h.upstream = c
}

// Routes registers the API endpoints on mux. events may be nil when SSE is
// disabled.
func (h *TopologyHandler) Routes(mux *http.ServeMux, events http.Handler) {
	mux.HandleFunc("GET /api/topology", h.GetTopology)
	mux.HandleFunc("GET /api/interfaces", h.GetInterfaces)
	mux.HandleFunc("POST /api/cache/clear", h.ClearCache)
	mux.HandleFunc("POST /api/cache/refresh", h.RefreshTopology)
	mux.HandleFunc("GET /healthz", h.Health)
	if events != nil {
		mux.Handle("GET /api/events", events)
	}
}

// GetTopology returns the assembled switch topology.
func (h *TopologyHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	topology, err := h.svc.DiscoverSwitches(r.Context())
	if err != nil {
		log.Printf("Failed to discover switches: %v", err)
		h.writeError(w, "Failed to discover switches", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, topology, http.StatusOK)
}

// GetInterfaces returns the router interface table keyed by name.
func (h *TopologyHandler) GetInterfaces(w http.ResponseWriter, r *http.Request) {
	ifaces, err := h.svc.Interfaces(r.Context())
	if err != nil {
		log.Printf("Failed to list interfaces: %v", err)
		h.writeError(w, "Failed to list interfaces", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, ifaces, http.StatusOK)
}

// ClearCache flushes the discovery result cache and, when wired, the
// controller response cache.
func (h *TopologyHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCache()
	if h.upstream != nil {
		h.upstream.ClearCache()
	}
	log.Printf("Caches cleared via API")

	h.writeJSON(w, map[string]string{"status": "cleared"}, http.StatusOK)
}

// RefreshTopology serves the stale topology immediately and re-runs
// discovery in the background. 202 when a stale payload exists, 204 when the
// cache was cold and the refresh only warms it.
func (h *TopologyHandler) RefreshTopology(w http.ResponseWriter, r *http.Request) {
	stale, ok := h.svc.RefreshSwitches()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, stale, http.StatusAccepted)
}

// Health is a liveness endpoint.
func (h *TopologyHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *TopologyHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *TopologyHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
