package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"monitoring-console/internal/audit"
	"monitoring-console/internal/charts"
	"monitoring-console/internal/filters"
	"monitoring-console/internal/observability/metrics"
	reportapp "monitoring-console/internal/reports/application"
	reports "monitoring-console/internal/reports/domain"
	"monitoring-console/internal/store"
)

const basePath = "/api/v1/reports/"

// ReportHandler serves the manual, automated and scheduled report slices.
type ReportHandler struct {
	manual      reportapp.ManualSlice
	automated   reportapp.AutomatedSlice
	scheduled   reportapp.ScheduledSlice
	deriver     *charts.Deriver
	auditLogger audit.Logger
	logger      zerolog.Logger
}

// NewReportHandler constructs a handler. A nil deriver uses the defaults.
func NewReportHandler(
	manual reportapp.ManualSlice,
	automated reportapp.AutomatedSlice,
	scheduled reportapp.ScheduledSlice,
	deriver *charts.Deriver,
	auditLogger audit.Logger,
	logger zerolog.Logger,
) (*ReportHandler, error) {
	if manual == nil || automated == nil || scheduled == nil {
		return nil, errors.New("report handler: nil service")
	}
	if deriver == nil {
		deriver = charts.NewDeriver()
	}
	return &ReportHandler{
		manual:      manual,
		automated:   automated,
		scheduled:   scheduled,
		deriver:     deriver,
		auditLogger: auditLogger,
		logger:      logger,
	}, nil
}

// ServeHTTP handles /api/v1/reports/*.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, basePath), "/")
	parts := strings.Split(rest, "/")
	switch parts[0] {
	case "manual":
		h.serveManual(w, r, parts[1:])
	case "automated":
		h.serveAutomated(w, r, parts[1:])
	case "scheduled":
		h.serveScheduled(w, r, parts[1:])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ReportHandler) serveManual(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		query := r.URL.Query()
		dates := filters.DateRangeFromQuery(query)
		if err := dates.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter := reports.ManualFilter{
			StartDate:      dates.Start,
			EndDate:        dates.End,
			ReportType:     strings.TrimSpace(query.Get("reportType")),
			ScheduleStatus: strings.TrimSpace(query.Get("scheduleStatus")),
		}
		h.manual.FetchFiltered(r.Context(), filter)
		writeJSON(w, http.StatusOK, h.manual.Snapshot())
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.handleSave(w, r)
	case len(parts) == 1 && parts[0] == "search" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.manual.Search(r.Context(), r.URL.Query().Get("query")))
	case len(parts) <= 1:
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ReportHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req reports.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	state, err := h.manual.Save(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.manual.Snapshot())
	if state.Phase == store.PhaseFulfilled {
		audit.Record(r, h.auditLogger, h.logger, audit.ActionReportCreate, req.LayoutName, map[string]any{
			"report_type": req.ReportType,
		})
	}
}

func (h *ReportHandler) serveAutomated(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch {
	case len(parts) == 0:
		query := r.URL.Query()
		dates := filters.DateRangeFromQuery(query)
		if err := dates.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter := reports.AutomatedFilter{
			Frequency:  strings.TrimSpace(query.Get("frequency")),
			StartDate:  dates.Start,
			EndDate:    dates.End,
			ReportType: strings.TrimSpace(query.Get("reportType")),
		}
		h.automated.FetchFiltered(r.Context(), filter)
		writeJSON(w, http.StatusOK, h.automated.Snapshot())
	case len(parts) == 1 && parts[0] == "search":
		writeJSON(w, http.StatusOK, h.automated.Search(r.Context(), r.URL.Query().Get("q")))
	case len(parts) == 1:
		h.handleDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "export.pdf":
		h.handleExport(w, r, parts[0], "pdf")
	case len(parts) == 2 && parts[1] == "export.xlsx":
		h.handleExport(w, r, parts[0], "xlsx")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type detailResponse struct {
	Detail  store.State[*reports.Detail] `json:"detail"`
	Widgets []charts.Result              `json:"widgets"`
}

func (h *ReportHandler) handleDetail(w http.ResponseWriter, r *http.Request, rawID string) {
	detail, ok := h.loadDetail(w, r, rawID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		Detail:  h.automated.Snapshot().Detail,
		Widgets: h.deriveWidgets(detail),
	})
}

func (h *ReportHandler) handleExport(w http.ResponseWriter, r *http.Request, rawID, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	detail, ok := h.loadDetail(w, r, rawID)
	if !ok {
		result = metrics.ResultError
		return
	}
	sections := BuildSections(h.deriveWidgets(detail))

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "pdf":
		data, err = BuildReportPDF(detail, sections)
		contentType = "application/pdf"
	default:
		data, err = BuildReportXLSX(detail, sections)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		if errors.Is(err, reports.ErrNoWidgets) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error().Err(err).Str("format", format).Str("report_id", rawID).Msg("export report failed")
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=report-"+rawID+"."+format)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	audit.Record(r, h.auditLogger, h.logger, audit.ActionReportExport, rawID, map[string]any{"format": format})
}

// loadDetail views one automated report and writes the error response when
// it cannot be loaded.
func (h *ReportHandler) loadDetail(w http.ResponseWriter, r *http.Request, rawID string) (*reports.Detail, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, reports.ErrMissingID.Error(), http.StatusBadRequest)
		return nil, false
	}
	state, err := h.automated.View(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if state.Phase == store.PhaseRejected {
		http.Error(w, state.Error, http.StatusBadGateway)
		return nil, false
	}
	if state.Data == nil {
		http.Error(w, reports.ErrNotFound.Error(), http.StatusNotFound)
		return nil, false
	}
	return state.Data, true
}

// deriveWidgets derives every widget of detail in layout order. Widgets that
// fail to derive render as no data.
func (h *ReportHandler) deriveWidgets(detail *reports.Detail) []charts.Result {
	out := make([]charts.Result, 0, len(detail.Layout.Widgets))
	for _, widget := range detail.Layout.Widgets {
		res, err := h.deriver.Derive(widget.WidgetName, widget.Data)
		if err != nil {
			h.logger.Warn().Err(err).Str("widget", widget.WidgetName).Int64("report_id", detail.ReportID).Msg("derive widget failed")
			res = charts.Result{Widget: widget.WidgetName, NoData: true}
		}
		metrics.AddDroppedPoints(widget.WidgetName, res.Dropped)
		out = append(out, res)
	}
	return out
}

func (h *ReportHandler) serveScheduled(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.scheduled.Fetch(r.Context())
		writeJSON(w, http.StatusOK, h.scheduled.Snapshot())
	case len(parts) == 2 && parts[0] == "flags" && parts[1] == "clear" && r.Method == http.MethodPost:
		h.scheduled.ClearDeleteStatus()
		writeJSON(w, http.StatusOK, h.scheduled.Snapshot())
	case len(parts) == 1 && r.Method == http.MethodDelete:
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			http.Error(w, reports.ErrMissingID.Error(), http.StatusBadRequest)
			return
		}
		state, err := h.scheduled.Delete(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.scheduled.Snapshot())
		if state.Phase == store.PhaseFulfilled {
			audit.Record(r, h.auditLogger, h.logger, audit.ActionScheduleDelete, parts[0], nil)
		}
	case len(parts) <= 1:
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
