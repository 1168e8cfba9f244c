package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/classify"
	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/lifecycle"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/panel"
	"github.com/kjstillabower/weatherify/internal/search"
	"github.com/kjstillabower/weatherify/internal/validation"
)

// SearchController is the search box as seen by the HTTP layer.
type SearchController interface {
	Input(text string) models.SearchQueryState
	Select(id string) error
	State() models.SearchQueryState
}

// HealthConfig holds optional health checks.
type HealthConfig struct {
	StartTime time.Time
	// CachePing, when set, is called to check cache reachability. Used when the backend is remote.
	CachePing func(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	board         *panel.Board
	search        SearchController
	healthConfig  *HealthConfig
	logger        *zap.Logger
	maxTextLength int

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. maxTextLength bounds search input in runes; 0 disables it.
func NewHandler(board *panel.Board, search SearchController, healthConfig *HealthConfig, logger *zap.Logger, maxTextLength int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		board:         board,
		search:        search,
		healthConfig:  healthConfig,
		logger:        logger,
		maxTextLength: maxTextLength,
	}
}

// GetPanels handles GET /panels.
func (h *Handler) GetPanels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"panels": []panel.View{h.board.Current.View(), h.board.Searched.View()},
	})
}

// GetPanel handles GET /panels/{name}.
func (h *Handler) GetPanel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	p, ok := h.board.Get(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "PANEL_NOT_FOUND", "unknown panel: "+name)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// GetSearch handles GET /search.
func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.search.State())
}

type searchInputRequest struct {
	Text *string `json:"text"`
}

// PutSearchInput handles PUT /search/input. Each call is one keystroke; the
// response is the state right after the keystroke, before any suggestions arrive.
func (h *Handler) PutSearchInput(w http.ResponseWriter, r *http.Request) {
	var body searchInputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST_BODY", `body must be {"text": "..."}`)
		return
	}
	text, err := validation.ValidateSearchText(*body.Text, h.maxTextLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_SEARCH_TEXT", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.search.Input(text))
}

type searchSelectRequest struct {
	ID string `json:"id"`
}

// PostSearchSelect handles POST /search/select. 202 means the weather fetch
// for the searched panel was dispatched; its outcome shows up on /panels/searched.
func (h *Handler) PostSearchSelect(w http.ResponseWriter, r *http.Request) {
	var body searchSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST_BODY", `body must be {"id": "..."}`)
		return
	}
	id, err := validation.ValidateSuggestionID(body.ID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_SUGGESTION_ID", err.Error())
		return
	}

	err = h.search.Select(id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "dispatched",
			"panel":  panel.Searched,
		})
	case errors.Is(err, search.ErrSuggestionNotFound):
		writeError(w, r, http.StatusNotFound, "SUGGESTION_NOT_FOUND", "no suggestion with that id in the current list")
	case errors.Is(err, client.ErrInvalidGeometry):
		writeError(w, r, http.StatusUnprocessableEntity, "INVALID_GEOMETRY", "suggestion has no coordinates")
	default:
		loggerFrom(r, h.logger).Error("select failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "selection failed")
	}
}

// GetClassifyTemperature handles GET /classify/temperature/{celsius}.
func (h *Handler) GetClassifyTemperature(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["celsius"]
	celsius, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(celsius) || math.IsInf(celsius, 0) {
		writeError(w, r, http.StatusBadRequest, "INVALID_TEMPERATURE", "temperature must be a finite number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"celsius": celsius,
		"icon":    classify.ByTemperature(celsius),
	})
}

// GetClassifyCode handles GET /classify/code/{code}.
func (h *Handler) GetClassifyCode(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(mux.Vars(r)["code"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_WEATHER_CODE", "weather code must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"code":  code,
		"label": classify.ByWeatherCode(code),
	})
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	phase := lifecycle.Current()
	status, statusCode := "healthy", http.StatusOK
	if phase == lifecycle.ShuttingDown {
		status, statusCode = "shutting-down", http.StatusServiceUnavailable
	}

	h.healthStatusMu.Lock()
	if prev := h.healthStatusPrev; prev != "" && prev != status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", status))
	}
	h.healthStatusPrev = status
	h.healthStatusMu.Unlock()

	checks := map[string]string{}
	resp := map[string]interface{}{
		"status":    status,
		"phase":     phase.String(),
		"service":   "weatherify",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil {
		if h.healthConfig.CachePing != nil {
			// A cache outage only bypasses the cache, so it does not fail the check.
			if err := h.healthConfig.CachePing(r.Context()); err != nil {
				checks["cache"] = "unhealthy"
			} else {
				checks["cache"] = "healthy"
			}
		}
		if !h.healthConfig.StartTime.IsZero() {
			resp["uptimeSeconds"] = int64(time.Since(h.healthConfig.StartTime).Seconds())
		}
	}
	writeJSON(w, statusCode, resp)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": correlationID(r),
		},
	})
}
