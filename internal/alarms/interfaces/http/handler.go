package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	alarmapp "monitoring-console/internal/alarms/application"
	alarms "monitoring-console/internal/alarms/domain"
	"monitoring-console/internal/audit"
	"monitoring-console/internal/filters"
)

const basePath = "/api/v1/alarms"

// Handler provides alarm HTTP endpoints.
type Handler struct {
	service     alarmapp.Slice
	auditLogger audit.Logger
	logger      zerolog.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(service alarmapp.Slice, auditLogger audit.Logger, logger zerolog.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("alarms handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

type listResponse struct {
	State alarmapp.Snapshot `json:"state"`
	Query string            `json:"query"`
}

// ServeHTTP handles /api/v1/alarms and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == basePath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case path == basePath+"/filters":
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSetFilters(w, r)
	case path == basePath+"/search":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		state := h.service.Search(r.Context(), r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, state)
	case path == basePath+"/flags/clear":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.service.ClearUpdateStatus()
		h.service.ClearErrorStatus()
		writeJSON(w, http.StatusOK, h.service.Snapshot())
	case path == basePath+"/export.csv":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExportCSV(w)
	case strings.HasPrefix(path, basePath+"/"):
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleUpdate(w, r, strings.TrimPrefix(path, basePath+"/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// handleList fetches with the filters persisted in the query string.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	current := filters.AlarmsFromQuery(r.URL.Query())
	if err := filters.ValidateAlarms(current); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.service.Fetch(r.Context(), current)
	writeJSON(w, http.StatusOK, listResponse{State: h.service.Snapshot(), Query: r.URL.Query().Encode()})
}

// handleSetFilters applies a filter change to the request query and fetches
// with the result. The new query is returned so the client can push it.
func (h *Handler) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var update filters.AlarmUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	next := filters.SetAlarms(r.URL.Query(), update)
	current := filters.AlarmsFromQuery(next)
	if err := filters.ValidateAlarms(current); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.service.Fetch(r.Context(), current)
	writeJSON(w, http.StatusOK, listResponse{State: h.service.Snapshot(), Query: next.Encode()})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, alarms.ErrMissingID.Error(), http.StatusBadRequest)
		return
	}
	var patch alarms.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if patch.Empty() {
		http.Error(w, alarms.ErrEmptyPatch.Error(), http.StatusBadRequest)
		return
	}
	meta := map[string]any{}
	if patch.Status != nil {
		if err := h.service.UpdateStatus(r.Context(), id, *patch.Status); err != nil {
			h.logger.Info().Err(err).Int64("alarm_id", id).Msg("alarm update rejected")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if h.service.Snapshot().UpdateError {
			writeJSON(w, http.StatusOK, h.service.Snapshot())
			return
		}
		meta["status"] = *patch.Status
	}
	if patch.Description != nil {
		if err := h.service.UpdateDescription(r.Context(), id, *patch.Description); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		meta["description"] = *patch.Description
	}
	snap := h.service.Snapshot()
	writeJSON(w, http.StatusOK, snap)
	if snap.UpdateSuccess {
		audit.Record(r, h.auditLogger, h.logger, audit.ActionAlarmUpdate, rawID, meta)
	}
}

func (h *Handler) handleExportCSV(w http.ResponseWriter) {
	list := h.service.Snapshot().Alarms.Data
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=alarms.csv")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"alarm_id", "created_at", "name", "severity", "status", "sensor_ids", "acknowledged_by", "acknowledged_at", "description"})
	for _, a := range list {
		_ = writer.Write([]string{
			strconv.FormatInt(a.AlarmID, 10),
			a.CreatedAt,
			a.AlarmName,
			string(a.Severity),
			string(a.Status),
			strings.Join(a.SensorID, ";"),
			a.AcknowledgedBy.String(),
			a.AcknowledgedAt.String(),
			a.Description,
		})
	}
	writer.Flush()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
