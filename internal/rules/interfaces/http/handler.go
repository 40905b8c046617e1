package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"monitoring-console/internal/audit"
	"monitoring-console/internal/filters"
	ruleapp "monitoring-console/internal/rules/application"
	rules "monitoring-console/internal/rules/domain"
)

const basePath = "/api/v1/rules"

// RTULister lists remote terminal units for the rule editor.
type RTULister interface {
	RTUs(ctx context.Context) ([]rules.RTU, error)
}

// Handler provides rule HTTP endpoints.
type Handler struct {
	service     ruleapp.Slice
	rtus        RTULister
	auditLogger audit.Logger
	logger      zerolog.Logger
}

// NewHandler constructs a handler. rtus and auditLogger may be nil.
func NewHandler(service ruleapp.Slice, rtus RTULister, auditLogger audit.Logger, logger zerolog.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("rules handler: nil service")
	}
	return &Handler{service: service, rtus: rtus, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles /api/v1/rules and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if !strings.HasPrefix(path, basePath+"/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	rest := strings.TrimPrefix(path, basePath+"/")
	switch {
	case rest == "search" && r.Method == http.MethodGet:
		h.handleSearch(w, r)
	case rest == "rtus" && r.Method == http.MethodGet:
		h.handleRTUs(w, r)
	case rest == "filters" && r.Method == http.MethodPut:
		var update filters.RuleUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.service.SetFilters(update))
	case rest == "filters" && r.Method == http.MethodDelete:
		h.service.ClearFilters()
		w.WriteHeader(http.StatusNoContent)
	case rest == "selected" && r.Method == http.MethodDelete:
		h.service.ClearSelected()
		w.WriteHeader(http.StatusNoContent)
	case rest == "flags/clear" && r.Method == http.MethodPost:
		h.service.ClearCreateStatus()
		h.service.ClearUpdateStatus()
		h.service.ClearDeleteStatus()
		writeJSON(w, http.StatusOK, h.service.Snapshot())
	case !strings.Contains(rest, "/"):
		h.handleByID(w, r, rest)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// handleList fetches with the filters in the query string; keys not present
// fall back to the stored filters.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	update := filters.RulesFromQuery(r.URL.Query())
	current := h.service.Snapshot().Filters
	if update.Any() {
		current = h.service.SetFilters(update)
	}
	h.service.FetchFiltered(r.Context(), current)
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	searchType := rules.SearchType(query.Get("type"))
	state, err := h.service.Search(r.Context(), searchType, query.Get("value"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleRTUs(w http.ResponseWriter, r *http.Request) {
	if h.rtus == nil {
		http.Error(w, "rtu listing not configured", http.StatusServiceUnavailable)
		return
	}
	list, err := h.rtus.RTUs(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("list rtus failed")
		http.Error(w, "list rtus failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rule rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	state, err := h.service.Create(r.Context(), rule)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
	if state.Error == "" {
		audit.Record(r, h.auditLogger, h.logger, audit.ActionRuleCreate, strconv.FormatInt(state.Data, 10), map[string]any{
			"name": rule.RuleName,
		})
	}
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, rules.ErrMissingID.Error(), http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		state, err := h.service.View(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	case http.MethodPut:
		var rule rules.Rule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		rule.RuleID = id
		state, err := h.service.Update(r.Context(), rule)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.service.Snapshot())
		if state.Error == "" {
			audit.Record(r, h.auditLogger, h.logger, audit.ActionRuleUpdate, rawID, map[string]any{
				"status":   rule.Status,
				"priority": rule.Priority,
			})
		}
	case http.MethodDelete:
		state, err := h.service.Delete(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.service.Snapshot())
		if state.Error == "" {
			audit.Record(r, h.auditLogger, h.logger, audit.ActionRuleDelete, rawID, nil)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rules.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
