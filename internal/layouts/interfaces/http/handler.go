package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"monitoring-console/internal/audit"
	"monitoring-console/internal/filters"
	layoutapp "monitoring-console/internal/layouts/application"
	layouts "monitoring-console/internal/layouts/domain"
	"monitoring-console/internal/store"
)

const basePath = "/api/v1/layouts"

// Handler provides layout HTTP endpoints.
type Handler struct {
	service     layoutapp.Slice
	auditLogger audit.Logger
	logger      zerolog.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(service layoutapp.Slice, auditLogger audit.Logger, logger zerolog.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("layouts handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles /api/v1/layouts and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleSave(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if !strings.HasPrefix(path, basePath+"/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(strings.TrimPrefix(path, basePath+"/"), "/")
	if parts[0] == "search" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.service.Search(r.Context(), r.URL.Query().Get("q")))
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, layouts.ErrMissingID.Error(), http.StatusBadRequest)
		return
	}
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		state, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.handleUpdate(w, r, id, parts[0])
	case len(parts) == 2 && parts[1] == "name" && r.Method == http.MethodPut:
		var req struct {
			LayoutName string `json:"layoutName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		h.editCurrent(w, r, id, func() (layouts.Layout, error) {
			return h.service.SetLayoutName(req.LayoutName)
		})
	case len(parts) == 2 && parts[1] == "widgets" && r.Method == http.MethodPost:
		var widget layouts.Widget
		if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		h.editCurrent(w, r, id, func() (layouts.Layout, error) {
			return h.service.AddWidget(widget)
		})
	case len(parts) == 3 && parts[1] == "widgets" && r.Method == http.MethodDelete:
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			http.Error(w, layouts.ErrWidgetIndex.Error(), http.StatusBadRequest)
			return
		}
		h.editCurrent(w, r, id, func() (layouts.Layout, error) {
			return h.service.RemoveWidget(index)
		})
	case len(parts) <= 3:
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dates := filters.DateRangeFromQuery(query)
	if err := dates.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filter := layouts.Filter{
		LayoutType: strings.TrimSpace(query.Get("layoutType")),
		LayoutName: strings.TrimSpace(query.Get("layoutName")),
		StartDate:  dates.Start,
		EndDate:    dates.End,
	}
	if len(filter.Params()) == 0 {
		h.service.Fetch(r.Context())
	} else {
		h.service.FetchFiltered(r.Context(), filter)
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var layout layouts.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	state, err := h.service.Save(r.Context(), layout)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
	if state.Phase == store.PhaseFulfilled && state.Data != nil {
		audit.Record(r, h.auditLogger, h.logger, audit.ActionLayoutCreate, strconv.FormatInt(state.Data.ID, 10), map[string]any{
			"name":    state.Data.LayoutName,
			"widgets": len(state.Data.Widgets),
		})
	}
}

// handleUpdate saves the request body, or the edited current layout when
// the body is empty.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64, rawID string) {
	var layout layouts.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		current := h.service.Snapshot().Current.Data
		if current == nil || current.ID != id {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		layout = current.Clone()
	}
	state, err := h.service.Update(r.Context(), id, layout)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
	if state.Phase == store.PhaseFulfilled {
		audit.Record(r, h.auditLogger, h.logger, audit.ActionLayoutUpdate, rawID, map[string]any{
			"name":    layout.LayoutName,
			"widgets": len(layout.Widgets),
		})
	}
}

// editCurrent loads layout id when it is not the current one, then applies
// a local edit. Edits are kept until the layout is saved with PUT.
func (h *Handler) editCurrent(w http.ResponseWriter, r *http.Request, id int64, edit func() (layouts.Layout, error)) {
	current := h.service.Snapshot().Current.Data
	if current == nil || current.ID != id {
		state, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		if state.Phase == store.PhaseRejected {
			http.Error(w, state.Error, http.StatusBadGateway)
			return
		}
	}
	layout, err := edit()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, layouts.ErrDuplicateName), errors.Is(err, layouts.ErrNoLayout):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, layouts.ErrNotFound):
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
