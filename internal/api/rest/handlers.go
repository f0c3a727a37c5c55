package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/service"
	"github.com/fortuna/apollo/internal/store/repository"
)

// TrendRequester answers prop-trend questions.
type TrendRequester interface {
	RequestStats(ctx context.Context, req service.TrendRequest) (model.TrendReport, error)
}

// PlayerResolver turns a display name into the upstream player ID.
type PlayerResolver interface {
	Resolve(ctx context.Context, name, teamHint string) (int64, error)
}

// SnapshotReader lists stored trend snapshots for a player.
type SnapshotReader interface {
	Recent(ctx context.Context, playerID int64, limit int) ([]repository.Snapshot, error)
}

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	trends    TrendRequester
	players   PlayerResolver
	snapshots SnapshotReader
	checks    map[string]func() error
}

// NewHandler creates a new handler. The snapshot reader is optional; health
// checks are keyed by dependency name.
func NewHandler(trends TrendRequester, players PlayerResolver, snapshots SnapshotReader, checks map[string]func() error) *Handler {
	return &Handler{
		trends:    trends,
		players:   players,
		snapshots: snapshots,
		checks:    checks,
	}
}

// HealthCheck reports service liveness and per-dependency status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string, len(h.checks))
	status := "healthy"
	for name, check := range h.checks {
		if err := check(); err != nil {
			deps[name] = err.Error()
			status = "degraded"
		} else {
			deps[name] = "ok"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"service":      "apollo",
		"dependencies": deps,
	})
}

// GetTrend computes a trend report for ?player=&stat=&opponent=&team=&line=.
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	player := q.Get("player")
	if player == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'player'", nil)
		return
	}
	stat := q.Get("stat")
	if stat == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'stat'", nil)
		return
	}

	req := service.TrendRequest{
		Player:   player,
		Stat:     model.StatType(stat),
		Opponent: q.Get("opponent"),
		TeamHint: q.Get("team"),
	}
	if lineStr := q.Get("line"); lineStr != "" {
		line, err := strconv.ParseFloat(lineStr, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid line value", err)
			return
		}
		req.Line = &line
	}

	report, err := h.trends.RequestStats(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid trend request", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// SearchPlayers resolves ?q=&team= to the upstream player ID.
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("q")
	if name == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'", nil)
		return
	}

	id, err := h.players.Resolve(r.Context(), name, r.URL.Query().Get("team"))
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		respondError(w, http.StatusNotFound, "Player not found", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": id,
		"name":      name,
	})
}

// GetPlayerSnapshots returns stored reports for a player, newest first.
func (h *Handler) GetPlayerSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		respondError(w, http.StatusNotFound, "Snapshot storage not configured", nil)
		return
	}

	playerID, err := strconv.ParseInt(mux.Vars(r)["playerID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	snapshots, err := h.snapshots.Recent(r.Context(), playerID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch snapshots", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
