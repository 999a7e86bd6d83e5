package handlers

import (
	"net/http"
	"time"

	"github.com/vyfood/storefront/internal/server/response"
)

// HandleHealth reports that the process is serving.
// @Summary Liveness probe
// @Description Always 200 while the server accepts requests
// @Tags probes
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "vyfood-storefront",
		"api":     "v1",
	})
}

// HandleReady reports whether a catalog is loaded, with runtime counters.
// @Summary Readiness probe
// @Description 200 once a catalog has been fetched, 503 before that
// @Tags probes
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	cat, err := h.storefront.Catalog()
	if err != nil {
		response.ServiceUnavailable(w, "No catalog loaded yet")
		return
	}

	response.OK(w, map[string]any{
		"status": "ready",
		"catalog": map[string]any{
			"source":     cat.Source(),
			"products":   cat.Len(),
			"fetched_at": cat.FetchedAt().Format(time.RFC3339),
		},
		"backend": h.backend != nil,
		"cache":   h.cache.Stats(),
		"events":  h.broker.Stats(),
		"realtime": map[string]int{
			"websocket_clients":  h.wsHub.ClientCount(),
			"websocket_sessions": h.wsHub.SessionCount(),
			"sse_clients":        h.sseBroadcaster.ClientCount(),
		},
	})
}
