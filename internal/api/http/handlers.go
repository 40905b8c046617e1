package apihttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"monitoring-console/internal/auth"
	"monitoring-console/internal/charts"
	dashboardapp "monitoring-console/internal/dashboard/application"
	"monitoring-console/internal/observability/metrics"
	"monitoring-console/internal/viewstate"
)

const maxDeriveBody = 8 << 20

// DashboardHandler serves the dashboard summaries and their charts.
type DashboardHandler struct {
	service dashboardapp.Slice
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(service dashboardapp.Slice) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// ServeHTTP handles GET /api/v1/dashboard[?part=alarms|rules|reports][&refresh=false].
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()
	if refresh, err := strconv.ParseBool(query.Get("refresh")); err == nil && !refresh {
		writeJSON(w, http.StatusOK, h.service.Snapshot())
		return
	}
	switch query.Get("part") {
	case "":
		h.service.FetchAll(r.Context())
	case "alarms":
		h.service.FetchAlarmsSummary(r.Context())
	case "rules":
		h.service.FetchRulesSummary(r.Context())
	case "reports":
		h.service.FetchReportsSummary(r.Context())
	default:
		http.Error(w, "part must be alarms, rules or reports", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

// DeriveHandler turns a raw widget payload into its chart model.
type DeriveHandler struct {
	deriver *charts.Deriver
	logger  zerolog.Logger
}

// NewDeriveHandler constructs a DeriveHandler. A nil deriver uses the defaults.
func NewDeriveHandler(deriver *charts.Deriver, logger zerolog.Logger) *DeriveHandler {
	if deriver == nil {
		deriver = charts.NewDeriver()
	}
	return &DeriveHandler{deriver: deriver, logger: logger}
}

type deriveRequest struct {
	WidgetName string          `json:"widgetName"`
	WidgetType string          `json:"widgetType"`
	Data       json.RawMessage `json:"data"`
}

// ServeHTTP handles POST /api/v1/charts/derive.
func (h *DeriveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req deriveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDeriveBody)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	// Older clients send the widget name in widgetType.
	name := strings.TrimSpace(req.WidgetName)
	if name == "" {
		name = strings.TrimSpace(req.WidgetType)
	}

	result, err := h.deriver.Derive(name, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, charts.ErrUnknownWidget):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, charts.ErrMalformed), errors.Is(err, charts.ErrInvalidWindow):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.logger.Error().Err(err).Str("widget", name).Msg("derive chart failed")
			http.Error(w, "derive error", http.StatusInternalServerError)
		}
		return
	}
	metrics.AddDroppedPoints(name, result.Dropped)
	writeJSON(w, http.StatusOK, result)
}

// ViewStateHandler serves the sidebar state of the calling user.
type ViewStateHandler struct {
	store *viewstate.Store
}

// NewViewStateHandler constructs a ViewStateHandler.
func NewViewStateHandler(store *viewstate.Store) *ViewStateHandler {
	return &ViewStateHandler{store: store}
}

// ServeHTTP handles GET|PUT /api/v1/view-state and POST /api/v1/view-state/toggle.
// A width query parameter updates the small-screen flag.
func (h *ViewStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	key := auth.SubjectFromContext(r.Context())
	if key == "" {
		key = "anonymous"
	}
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "width must be an integer", http.StatusBadRequest)
			return
		}
		h.store.Resize(key, width)
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/toggle"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.store.Toggle(key))
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.Get(key))
	case r.Method == http.MethodPut:
		var req struct {
			IsSidebarOpen bool `json:"isSidebarOpen"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.store.SetOpen(key, req.IsSidebarOpen))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
