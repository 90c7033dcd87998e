package handler

import (
	"net/http"

	"github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/api/response"
	"github.com/nvoss/agent-chat/internal/service"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns the caller's usage summary. Any store failure fails the
// whole request; partial aggregates are never served.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	stats, err := h.dashboardService.Stats(r.Context(), identity.UserID)
	if err != nil {
		response.InternalError(w, "failed to load dashboard stats")
		return
	}

	response.OK(w, stats)
}
