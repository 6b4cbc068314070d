package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/joshuakim/sharpline/internal/metrics"
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/projection"
	"github.com/joshuakim/sharpline/internal/service"
	"github.com/joshuakim/sharpline/internal/teams"
	"github.com/sirupsen/logrus"
)

// Handler holds HTTP handlers
type Handler struct {
	svc     *service.Service
	metrics *metrics.Metrics
	table   *teams.Table
	logger  *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(svc *service.Service, m *metrics.Metrics, table *teams.Table, logger *logrus.Logger) *Handler {
	return &Handler{
		svc:     svc,
		metrics: m,
		table:   table,
		logger:  logger,
	}
}

// RegisterRoutes mounts the API under /api. The websocket route is mounted
// separately so it is not subject to request timeouts.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/refresh", h.handleRefresh)
		r.Get("/games", h.handleGames)
		r.Get("/games/{gameID}", h.handleGame)
		r.Get("/props", h.handleProps)
		r.Get("/snapshot", h.handleSnapshot)
		r.Delete("/snapshot", h.handleReset)
		r.Get("/teams", h.handleTeams)
		r.Get("/players/{name}/recent", h.handlePlayerRecent)
	})
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.metrics.GetHealth())
}

// handleRefresh runs one refresh cycle and returns its result
// POST /api/refresh
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Refresh(r.Context())
	h.jsonResponse(w, http.StatusOK, result)
}

// handleGames returns the game projections from the latest refresh
// GET /api/games?recommendation=over
func (h *Handler) handleGames(w http.ResponseWriter, r *http.Request) {
	latest, ok := h.svc.Latest()
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "no data yet: POST /api/refresh first")
		return
	}

	want := models.Recommendation(strings.ToLower(r.URL.Query().Get("recommendation")))
	games := make([]projection.GameAnalysis, 0, len(latest.Report.Games))
	for _, g := range latest.Report.Games {
		if want == "" || g.Result.Recommendation == want {
			games = append(games, g)
		}
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"snapshot_id":  latest.Report.SnapshotID,
		"generated_at": latest.Report.GeneratedAt,
		"count":        len(games),
		"games":        games,
	})
}

// handleGame returns one game projection
// GET /api/games/{gameID}
func (h *Handler) handleGame(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.svc.Latest(); !ok {
		h.errorResponse(w, http.StatusNotFound, "no data yet: POST /api/refresh first")
		return
	}

	game, ok := h.svc.Game(chi.URLParam(r, "gameID"))
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "game not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, game)
}

// handleProps returns the prop evaluations from the latest refresh
// GET /api/props?recommendation=value_over
func (h *Handler) handleProps(w http.ResponseWriter, r *http.Request) {
	latest, ok := h.svc.Latest()
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "no data yet: POST /api/refresh first")
		return
	}

	want := models.PropRecommendation(strings.ToLower(r.URL.Query().Get("recommendation")))
	props := make([]projection.PropAnalysis, 0, len(latest.Report.Props))
	for _, p := range latest.Report.Props {
		if want == "" || p.Result.Recommendation == want {
			props = append(props, p)
		}
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": latest.Report.SnapshotID,
		"count":       len(props),
		"excluded":    latest.Report.ExcludedProps,
		"props":       props,
	})
}

// handleSnapshot returns what the latest refresh fetched
// GET /api/snapshot
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	latest, ok := h.svc.Latest()
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "no data yet: POST /api/refresh first")
		return
	}
	w.Header().Set("Last-Modified", h.svc.LastUpdated().UTC().Format(http.TimeFormat))
	h.jsonResponse(w, http.StatusOK, latest.Snapshot)
}

// handleReset drops the latest result
// DELETE /api/snapshot
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// handleTeams returns the static reference table
// GET /api/teams
func (h *Handler) handleTeams(w http.ResponseWriter, r *http.Request) {
	all := h.table.All()
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count": len(all),
		"teams": all,
	})
}

// handlePlayerRecent returns a player's recent averages and game log
// GET /api/players/{name}/recent
func (h *Handler) handlePlayerRecent(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		h.errorResponse(w, http.StatusBadRequest, "player name required")
		return
	}

	recent, ok, err := h.svc.PlayerRecent(r.Context(), name)
	switch {
	case errors.Is(err, service.ErrNoGameLogs):
		h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		h.errorResponse(w, http.StatusBadGateway, "failed to fetch game log: "+err.Error())
		return
	case !ok:
		h.errorResponse(w, http.StatusNotFound, "player not found")
		return
	}

	if recent.GamesPlayed == 0 {
		h.jsonResponse(w, http.StatusOK, map[string]interface{}{
			"player":  recent,
			"message": "no games found this season",
		})
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"player": recent,
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
