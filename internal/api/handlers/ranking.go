package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	gocache "github.com/patrickmn/go-cache"

	"github.com/wrenn/capitolwatch/internal/analysis"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

const rankingsCacheKey = "rankings"

// RankingHandler serves the Sharpe ranking endpoints. The full-table
// ranking response is memoized briefly since it backs the landing view
// and only changes when an analysis run completes.
type RankingHandler struct {
	service *analysis.Service
	cache   *gocache.Cache
	logger  *logger.Logger
}

// NewRankingHandler creates the ranking handler.
func NewRankingHandler(service *analysis.Service, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		cache:   gocache.New(60*time.Second, 5*time.Minute),
		logger:  log,
	}
}

// GetRankings returns the latest cross-section of member statistics,
// best 30-day Sharpe first.
func (h *RankingHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(rankingsCacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snapshots, err := h.service.Rankings(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load rankings")
		respondError(w, http.StatusInternalServerError, "failed to load rankings")
		return
	}

	response := map[string]interface{}{
		"rankings": snapshots,
		"count":    len(snapshots),
	}
	h.cache.Set(rankingsCacheKey, response, gocache.DefaultExpiration)

	respondJSON(w, http.StatusOK, response)
}

// GetMemberHistory returns a member's snapshot history, newest first.
// The member name is matched exactly first, then as a substring.
func (h *RankingHandler) GetMemberHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit := 90
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	member, history, err := h.service.MemberHistory(r.Context(), name, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load member history")
		respondError(w, http.StatusInternalServerError, "failed to load member history")
		return
	}
	if member == nil {
		respondError(w, http.StatusNotFound, "member not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"member": map[string]interface{}{
			"id":      member.ID,
			"name":    member.Name,
			"chamber": member.Chamber,
			"party":   member.Party,
		},
		"history": history,
	})
}

// RunAnalysis triggers a full analysis run and returns its summary.
// The rankings cache is invalidated so the new snapshots show up
// immediately.
func (h *RankingHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")
		respondError(w, http.StatusInternalServerError, "analysis run failed")
		return
	}

	h.cache.Delete(rankingsCacheKey)

	respondJSON(w, http.StatusOK, summary)
}
