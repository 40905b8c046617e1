package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"monitoring-console/internal/charts"
	reportapp "monitoring-console/internal/reports/application"
	reports "monitoring-console/internal/reports/domain"
	"monitoring-console/internal/store"
)

const lineChartData = `{
	"title": "Boiler",
	"sensors": [{
		"sensorType": "Temperature",
		"sensorId": "s1",
		"color": "#f00",
		"sensorValues": [
			{"timestamp": "2024-01-01T10:00:00Z", "value": 20},
			{"timestamp": "not a time", "value": 99},
			{"timestamp": "2024-01-01T11:00:00Z", "value": 22}
		]
	}],
	"date": {"startDate": "2024-01-01T00:00:00Z", "endDate": "2024-01-02T00:00:00Z"},
	"showValues": {"showMax": true, "showMin": true}
}`

type stubBackend struct {
	manualFilters []reports.ManualFilter
	saved         []reports.SaveRequest
	deleted       []int64
	detail        reports.Detail
	detailErr     error
}

func (s *stubBackend) ManualReports(_ context.Context, filter reports.ManualFilter) ([]reports.ManualReport, error) {
	s.manualFilters = append(s.manualFilters, filter)
	return []reports.ManualReport{{ReportID: 1, ReportType: "Daily"}}, nil
}

func (s *stubBackend) SearchManualReports(context.Context, string) ([]reports.ManualReport, error) {
	return []reports.ManualReport{}, nil
}

func (s *stubBackend) SaveManualReport(_ context.Context, req reports.SaveRequest) (json.RawMessage, error) {
	s.saved = append(s.saved, req)
	return json.RawMessage(`{"ok":true}`), nil
}

func (s *stubBackend) AutomatedReports(context.Context, reports.AutomatedFilter) ([]reports.AutomatedReport, error) {
	return []reports.AutomatedReport{{ID: 1, ReportID: 5}}, nil
}

func (s *stubBackend) SearchAutomatedReports(context.Context, string) ([]reports.AutomatedReport, error) {
	return []reports.AutomatedReport{}, nil
}

func (s *stubBackend) AutomatedReport(context.Context, int64) (reports.Detail, error) {
	return s.detail, s.detailErr
}

func (s *stubBackend) ScheduledReports(context.Context) ([]reports.ScheduledReport, error) {
	return []reports.ScheduledReport{{ReportID: 3, IsActive: true}, {ReportID: 4}}, nil
}

func (s *stubBackend) DeleteSchedule(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newHandler(t *testing.T, backend *stubBackend) *ReportHandler {
	t.Helper()
	hub := store.NewHub()
	manual, err := reportapp.NewManualService(backend, hub)
	if err != nil {
		t.Fatalf("manual: %v", err)
	}
	automated, err := reportapp.NewAutomatedService(backend, hub)
	if err != nil {
		t.Fatalf("automated: %v", err)
	}
	scheduled, err := reportapp.NewScheduledService(backend, hub)
	if err != nil {
		t.Fatalf("scheduled: %v", err)
	}
	h, err := NewReportHandler(manual, automated, scheduled, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h
}

func sampleDetail() reports.Detail {
	return reports.Detail{
		ReportID:   5,
		ReportType: "Weekly",
		Layout: reports.DetailLayout{
			LayoutName: "Plant A",
			Widgets: []reports.Widget{
				{WidgetName: "Line Chart", WidgetType: "Chart", Data: json.RawMessage(lineChartData)},
				{WidgetName: "Value Card", WidgetType: "Card", Data: json.RawMessage(`{}`)},
				{WidgetName: "Gauge", WidgetType: "Chart", Data: json.RawMessage(`{"x":1}`)},
			},
		},
	}
}

func TestManualListValidatesDates(t *testing.T) {
	backend := &stubBackend{}
	h := newHandler(t, backend)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/manual?startDate=2024-02-01&endDate=2024-01-01", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/manual?startDate=2024-01-01&reportType=Daily", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(backend.manualFilters) != 1 || backend.manualFilters[0].ReportType != "Daily" || backend.manualFilters[0].StartDate != "2024-01-01" {
		t.Fatalf("unexpected filters %+v", backend.manualFilters)
	}
}

func TestManualSaveRefetches(t *testing.T) {
	backend := &stubBackend{}
	h := newHandler(t, backend)

	body := `{"reportType":"Daily","layoutName":"Plant A"}`
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/reports/manual", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var snap reportapp.ManualSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(backend.saved) != 1 || len(backend.manualFilters) != 1 || len(snap.Reports.Data) != 1 {
		t.Fatalf("expected save and refetch, saved=%d fetches=%d", len(backend.saved), len(backend.manualFilters))
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/reports/manual", strings.NewReader(`{"reportType":"Daily"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without layout, got %d", resp.Code)
	}
}

func TestAutomatedDetailDerivesWidgets(t *testing.T) {
	backend := &stubBackend{detail: sampleDetail()}
	h := newHandler(t, backend)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/automated/5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out struct {
		Detail  store.State[*reports.Detail] `json:"detail"`
		Widgets []charts.Result              `json:"widgets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Detail.Data == nil || out.Detail.Data.ReportID != 5 {
		t.Fatalf("unexpected detail %+v", out.Detail)
	}
	if len(out.Widgets) != 3 {
		t.Fatalf("expected 3 widgets, got %d", len(out.Widgets))
	}
	if out.Widgets[0].NoData || out.Widgets[0].Dropped != 1 {
		t.Fatalf("unexpected line chart result %+v", out.Widgets[0])
	}
	if !out.Widgets[1].NoData || !out.Widgets[2].NoData {
		t.Fatalf("expected empty and unknown widgets as no data")
	}
}

func TestAutomatedDetailBackendFailure(t *testing.T) {
	backend := &stubBackend{detailErr: errors.New("boom")}
	h := newHandler(t, backend)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/automated/5/export.pdf", nil))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestExportFormats(t *testing.T) {
	backend := &stubBackend{detail: sampleDetail()}
	h := newHandler(t, backend)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/automated/5/export.pdf", nil))
	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected pdf response %d %q", resp.Code, resp.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf body")
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/automated/5/export.xlsx", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected xlsx zip body")
	}
}

func TestExportWithoutWidgets(t *testing.T) {
	detail := sampleDetail()
	detail.Layout.Widgets = nil
	h := newHandler(t, &stubBackend{detail: detail})
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/automated/5/export.xlsx", nil))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestBuildSections(t *testing.T) {
	deriver := charts.NewDeriver()
	line, err := deriver.Derive("Line Chart", json.RawMessage(lineChartData))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	sections := BuildSections([]charts.Result{line, {Widget: "Value Card", NoData: true}})
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	row := sections[0].Rows[0]
	if row[1] != "2" || row[2] != "20.00" || row[3] != "22.00" || row[4] != "22.00" {
		t.Fatalf("unexpected chart row %v", row)
	}
	if sections[1].Rows[0][0] != "No data" {
		t.Fatalf("unexpected no data section %+v", sections[1])
	}
}

func TestScheduledDeleteAndClear(t *testing.T) {
	backend := &stubBackend{}
	h := newHandler(t, backend)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reports/scheduled", nil))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/reports/scheduled/3", nil))
	var snap reportapp.ScheduledSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.DeleteSuccess || len(snap.Schedules.Data) != 1 || len(backend.deleted) != 1 {
		t.Fatalf("unexpected delete snapshot %+v", snap)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/reports/scheduled/flags/clear", nil))
	snap = reportapp.ScheduledSnapshot{}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil || snap.DeleteSuccess {
		t.Fatalf("expected flag cleared, err=%v", err)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports/unknown", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
