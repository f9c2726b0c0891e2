package handlers

import (
	"net/http"

	"github.com/kozaktomas/staff-clock/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse is what a kiosk needs to know before capturing faces
type ConfigResponse struct {
	MatchThreshold     float64 `json:"match_threshold"`
	EmbeddingDim       int     `json:"embedding_dim"`
	HNSWMinEnrollments int     `json:"hnsw_min_enrollments"`
	ImageClockEnabled  bool    `json:"image_clock_enabled"`
	RosterSyncEnabled  bool    `json:"roster_sync_enabled"`
}

// Get returns the non-secret configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		MatchThreshold:     h.config.Match.Threshold,
		EmbeddingDim:       h.config.Match.EmbeddingDim,
		HNSWMinEnrollments: h.config.Database.HNSWMinEnrollments,
		ImageClockEnabled:  h.config.Embedding.URL != "",
		RosterSyncEnabled:  h.config.Roster.DatabaseURL != "",
	})
}
