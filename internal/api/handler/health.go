package handler

import (
	"net/http"

	"github.com/nvoss/agent-chat/internal/agent"
	"github.com/nvoss/agent-chat/internal/api/response"
	"github.com/nvoss/agent-chat/internal/config"
	"github.com/nvoss/agent-chat/internal/repository/mongo"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database connectivity.
// Agent state is reported but never fails readiness; chat degrades to
// store-only when the agent is down.
func ReadyCheck(db *mongo.DB, bridge *agent.Bridge) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
			"agent":  bridge.State().String(),
		})
	}
}

// ListAgents returns the assistant personas the agent service exposes
func ListAgents(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := []struct {
			id          string
			name        string
			description string
		}{
			{"general", "General Assistant", "Clear, professional answers to everyday questions"},
			{"research", "Research Analyst", "Detailed, evidence-based answers"},
			{"code", "Code Assistant", "Clean, efficient code solutions"},
			{"travel", "Travel Planner", "Practical travel advice and tips"},
			{"tutor", "Learning Tutor", "Concept explanations with examples"},
		}

		agents := make([]map[string]any, 0, len(catalog))
		for _, a := range catalog {
			agents = append(agents, map[string]any{
				"id":          a.id,
				"name":        a.name,
				"description": a.description,
				"default":     cfg.Agent.DefaultID == a.id,
			})
		}

		response.OK(w, map[string]any{
			"agents":       agents,
			"defaultAgent": cfg.Agent.DefaultID,
		})
	}
}
