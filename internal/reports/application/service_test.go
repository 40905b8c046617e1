package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	reports "monitoring-console/internal/reports/domain"
	"monitoring-console/internal/store"
)

type stubBackend struct {
	manual      []reports.ManualReport
	manualCalls []reports.ManualFilter
	saved       []reports.SaveRequest
	saveErr     error

	automated []reports.AutomatedReport
	detail    reports.Detail
	detailErr error

	schedules []reports.ScheduledReport
	deleteErr error
}

func (s *stubBackend) ManualReports(_ context.Context, f reports.ManualFilter) ([]reports.ManualReport, error) {
	s.manualCalls = append(s.manualCalls, f)
	return append([]reports.ManualReport(nil), s.manual...), nil
}

func (s *stubBackend) SearchManualReports(context.Context, string) ([]reports.ManualReport, error) {
	return s.manual[:1], nil
}

func (s *stubBackend) SaveManualReport(_ context.Context, req reports.SaveRequest) (json.RawMessage, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saved = append(s.saved, req)
	s.manual = append(s.manual, reports.ManualReport{ReportID: int64(len(s.manual) + 1), ReportType: req.ReportType})
	return json.RawMessage(`{"ok":true}`), nil
}

func (s *stubBackend) AutomatedReports(context.Context, reports.AutomatedFilter) ([]reports.AutomatedReport, error) {
	return s.automated, nil
}

func (s *stubBackend) SearchAutomatedReports(context.Context, string) ([]reports.AutomatedReport, error) {
	return []reports.AutomatedReport{}, nil
}

func (s *stubBackend) AutomatedReport(context.Context, int64) (reports.Detail, error) {
	return s.detail, s.detailErr
}

func (s *stubBackend) ScheduledReports(context.Context) ([]reports.ScheduledReport, error) {
	return append([]reports.ScheduledReport(nil), s.schedules...), nil
}

func (s *stubBackend) DeleteSchedule(context.Context, int64) error {
	return s.deleteErr
}

func TestScheduledDeleteFlagStaysUntilCleared(t *testing.T) {
	backend := &stubBackend{schedules: []reports.ScheduledReport{{ReportID: 4, IsActive: true}, {ReportID: 5}}}
	svc, err := NewScheduledService(backend, store.NewHub())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Fetch(context.Background())

	state, err := svc.Delete(context.Background(), 4)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if state.Loading || state.Data != 4 {
		t.Fatalf("unexpected delete state %+v", state)
	}
	for i := 0; i < 3; i++ {
		if !svc.Snapshot().DeleteSuccess {
			t.Fatalf("expected delete flag to stay raised")
		}
	}
	if got := svc.Snapshot().Schedules.Data; len(got) != 1 || got[0].ReportID != 5 {
		t.Fatalf("expected schedule removed, got %+v", got)
	}
	svc.ClearDeleteStatus()
	if svc.Snapshot().DeleteSuccess {
		t.Fatalf("expected delete flag cleared")
	}
}

func TestScheduledFetchResetsDeleteFlag(t *testing.T) {
	backend := &stubBackend{schedules: []reports.ScheduledReport{{ReportID: 4}}}
	svc, _ := NewScheduledService(backend, nil)
	if _, err := svc.Delete(context.Background(), 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	svc.Fetch(context.Background())
	if svc.Snapshot().DeleteSuccess {
		t.Fatalf("expected fetch to reset delete flag")
	}
}

func TestScheduledRefreshKeepsDeleteFlag(t *testing.T) {
	backend := &stubBackend{schedules: []reports.ScheduledReport{{ReportID: 4}, {ReportID: 5}}}
	svc, _ := NewScheduledService(backend, nil)
	if _, err := svc.Delete(context.Background(), 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	backend.schedules = backend.schedules[1:]
	state := svc.Refresh(context.Background())
	if len(state.Data) != 1 {
		t.Fatalf("expected refreshed schedules, got %+v", state.Data)
	}
	if !svc.Snapshot().DeleteSuccess {
		t.Fatalf("background refresh must leave the delete flag raised")
	}
}

func TestScheduledDeleteFailure(t *testing.T) {
	backend := &stubBackend{deleteErr: errors.New("gone")}
	svc, _ := NewScheduledService(backend, nil)
	if _, err := svc.Delete(context.Background(), 0); !errors.Is(err, reports.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	state, err := svc.Delete(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Error != "gone" || state.Loading || svc.Snapshot().DeleteSuccess {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestManualSaveRefetchesWithCurrentFilter(t *testing.T) {
	backend := &stubBackend{manual: []reports.ManualReport{{ReportID: 1, ReportType: "Daily"}}}
	svc, err := NewManualService(backend, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	filter := reports.ManualFilter{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	svc.FetchFiltered(context.Background(), filter)

	state, err := svc.Save(context.Background(), reports.SaveRequest{ReportType: "Weekly", LayoutName: "Boiler"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.Phase != store.PhaseFulfilled {
		t.Fatalf("unexpected save state %+v", state)
	}
	if len(backend.manualCalls) != 2 || backend.manualCalls[1] != filter {
		t.Fatalf("expected refetch with filter, got %+v", backend.manualCalls)
	}
	if got := svc.Snapshot().Reports.Data; len(got) != 2 {
		t.Fatalf("expected refreshed list, got %+v", got)
	}
}

func TestManualSaveValidationAndFailure(t *testing.T) {
	backend := &stubBackend{manual: []reports.ManualReport{{ReportID: 1}}}
	svc, _ := NewManualService(backend, nil)

	if _, err := svc.Save(context.Background(), reports.SaveRequest{ReportType: "Daily"}); !errors.Is(err, reports.ErrMissingLayout) {
		t.Fatalf("expected ErrMissingLayout, got %v", err)
	}
	backend.saveErr = errors.New("rejected")
	state, err := svc.Save(context.Background(), reports.SaveRequest{CustomReportType: "Audit", LayoutName: "Boiler"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Error != "rejected" || state.Loading {
		t.Fatalf("unexpected state %+v", state)
	}
	if len(backend.manualCalls) != 0 {
		t.Fatalf("failed save must not refetch")
	}
}

func TestManualSearchKeptApart(t *testing.T) {
	backend := &stubBackend{manual: []reports.ManualReport{{ReportID: 1}, {ReportID: 2}}}
	svc, _ := NewManualService(backend, nil)
	svc.Fetch(context.Background())
	svc.Search(context.Background(), "  daily ")
	snap := svc.Snapshot()
	if len(snap.Reports.Data) != 2 || len(snap.Search.Data) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestAutomatedView(t *testing.T) {
	backend := &stubBackend{detail: reports.Detail{ReportID: 7, Layout: reports.DetailLayout{LayoutName: "Boiler"}}}
	svc, err := NewAutomatedService(backend, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.View(context.Background(), -1); !errors.Is(err, reports.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	state, err := svc.View(context.Background(), 7)
	if err != nil || state.Data == nil || state.Data.Layout.LayoutName != "Boiler" {
		t.Fatalf("unexpected detail %+v err=%v", state, err)
	}

	backend.detailErr = errors.New("not found")
	state, _ = svc.View(context.Background(), 8)
	if state.Phase != store.PhaseRejected || state.Loading {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.Data == nil || state.Data.ReportID != 7 {
		t.Fatalf("failed view must keep the previous detail")
	}
}
