package application

import (
	"context"
	"errors"
	"testing"

	layouts "monitoring-console/internal/layouts/domain"
	"monitoring-console/internal/store"
)

type stubBackend struct {
	rows      []layouts.Summary
	layout    layouts.Layout
	names     []string
	createErr error
	created   []layouts.Layout
	filter    layouts.Filter
}

func (s *stubBackend) Layouts(context.Context) ([]layouts.Summary, error) {
	return append([]layouts.Summary(nil), s.rows...), nil
}

func (s *stubBackend) FilterLayouts(_ context.Context, f layouts.Filter) ([]layouts.Summary, error) {
	s.filter = f
	return s.rows[:1], nil
}

func (s *stubBackend) SearchLayouts(context.Context, string) ([]layouts.Summary, error) {
	return []layouts.Summary{}, nil
}

func (s *stubBackend) Layout(_ context.Context, id int64) (layouts.Layout, error) {
	if id != s.layout.ID {
		return layouts.Layout{}, layouts.ErrNotFound
	}
	return s.layout.Clone(), nil
}

func (s *stubBackend) CreateLayout(_ context.Context, l layouts.Layout) (layouts.Layout, error) {
	if s.createErr != nil {
		return layouts.Layout{}, s.createErr
	}
	s.created = append(s.created, l)
	l.ID = 50
	l.CreatedAt = "2024-02-01"
	return l, nil
}

func (s *stubBackend) UpdateLayout(_ context.Context, id int64, l layouts.Layout) (layouts.Layout, error) {
	l.ID = id
	return l, nil
}

func (s *stubBackend) LayoutNames(context.Context) ([]string, error) {
	return s.names, nil
}

func seeded() *stubBackend {
	return &stubBackend{
		rows: []layouts.Summary{
			{ID: 1, LayoutName: "Boiler", LayoutType: "Daily", CreatedAt: "2024-01-01"},
			{ID: 2, LayoutName: "Chiller", LayoutType: "Weekly", CreatedAt: "2024-01-02"},
		},
		layout: layouts.Layout{ID: 1, LayoutName: "Boiler", LayoutType: "Daily", Widgets: []layouts.Widget{
			{WidgetType: layouts.WidgetTypeChart, WidgetName: layouts.WidgetLineChart},
			{WidgetType: layouts.WidgetTypeTable, WidgetName: layouts.WidgetAlarmTable},
		}},
		names: []string{"Boiler", "Chiller"},
	}
}

func newService(t *testing.T, backend Backend) *Service {
	t.Helper()
	svc, err := NewService(backend, store.NewHub())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSaveAppendsRow(t *testing.T) {
	svc := newService(t, seeded())
	svc.Fetch(context.Background())

	state, err := svc.Save(context.Background(), layouts.Layout{LayoutName: " Press ", LayoutType: "Daily"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.Loading || state.Data == nil || state.Data.ID != 50 {
		t.Fatalf("unexpected state %+v", state)
	}
	rows := svc.Snapshot().Layouts.Data
	if len(rows) != 3 || rows[2].LayoutName != "Press" || rows[2].ID != 50 {
		t.Fatalf("expected row appended, got %+v", rows)
	}
}

func TestSaveRejectsDuplicateName(t *testing.T) {
	backend := seeded()
	svc := newService(t, backend)
	if _, err := svc.Save(context.Background(), layouts.Layout{LayoutName: "boiler"}); !errors.Is(err, layouts.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := svc.Save(context.Background(), layouts.Layout{LayoutName: ""}); !errors.Is(err, layouts.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if len(backend.created) != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestSaveFailureKeepsList(t *testing.T) {
	backend := seeded()
	backend.createErr = errors.New("conflict")
	svc := newService(t, backend)
	svc.Fetch(context.Background())

	state, err := svc.Save(context.Background(), layouts.Layout{LayoutName: "Press"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Error != "conflict" || state.Loading {
		t.Fatalf("unexpected state %+v", state)
	}
	if len(svc.Snapshot().Layouts.Data) != 2 {
		t.Fatalf("failed save must not append")
	}
}

func TestWidgetEditingWithoutCurrentLayoutIsNoop(t *testing.T) {
	svc := newService(t, seeded())
	if _, err := svc.AddWidget(layouts.Widget{WidgetType: layouts.WidgetTypeCard, WidgetName: layouts.WidgetValueCard}); !errors.Is(err, layouts.ErrNoLayout) {
		t.Fatalf("expected ErrNoLayout, got %v", err)
	}
	if _, err := svc.SetLayoutName("x"); !errors.Is(err, layouts.ErrNoLayout) {
		t.Fatalf("expected ErrNoLayout, got %v", err)
	}
	if svc.Snapshot().Current.Data != nil {
		t.Fatalf("current layout must stay empty")
	}
}

func TestWidgetEditing(t *testing.T) {
	svc := newService(t, seeded())
	if _, err := svc.Get(context.Background(), 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	before := svc.Snapshot().Current.Data

	got, err := svc.AddWidget(layouts.Widget{WidgetType: layouts.WidgetTypeCard, WidgetName: layouts.WidgetValueCard})
	if err != nil || len(got.Widgets) != 3 {
		t.Fatalf("unexpected add result %+v err=%v", got, err)
	}
	got, err = svc.RemoveWidget(0)
	if err != nil || len(got.Widgets) != 2 || got.Widgets[0].WidgetName != layouts.WidgetAlarmTable {
		t.Fatalf("unexpected remove result %+v err=%v", got, err)
	}
	if _, err := svc.RemoveWidget(5); !errors.Is(err, layouts.ErrWidgetIndex) {
		t.Fatalf("expected ErrWidgetIndex, got %v", err)
	}
	if _, err := svc.SetLayoutName("Boiler v2"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	current := svc.Snapshot().Current.Data
	if current.LayoutName != "Boiler v2" || len(current.Widgets) != 2 {
		t.Fatalf("unexpected current %+v", current)
	}
	if before.LayoutName != "Boiler" || len(before.Widgets) != 2 || before.Widgets[0].WidgetName != layouts.WidgetLineChart {
		t.Fatalf("earlier snapshot must not change: %+v", before)
	}
}

func TestUpdateRefreshesRow(t *testing.T) {
	svc := newService(t, seeded())
	svc.Fetch(context.Background())

	state, err := svc.Update(context.Background(), 2, layouts.Layout{LayoutName: "Chiller B", LayoutType: "Weekly"})
	if err != nil || state.Data == nil || state.Data.ID != 2 {
		t.Fatalf("unexpected update %+v err=%v", state, err)
	}
	row := svc.Snapshot().Layouts.Data[1]
	if row.LayoutName != "Chiller B" || row.CreatedAt != "2024-01-02" {
		t.Fatalf("unexpected row %+v", row)
	}
	if _, err := svc.Update(context.Background(), 0, layouts.Layout{LayoutName: "x"}); !errors.Is(err, layouts.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestFetchFilteredStoresFilter(t *testing.T) {
	backend := seeded()
	svc := newService(t, backend)
	filter := layouts.Filter{LayoutType: "Daily", StartDate: "2024-01-01"}
	state := svc.FetchFiltered(context.Background(), filter)
	if len(state.Data) != 1 || backend.filter != filter || svc.Snapshot().Filter != filter {
		t.Fatalf("unexpected filtered fetch %+v", state)
	}
}
