package application

import (
	"context"
	"errors"
	"testing"

	"monitoring-console/internal/filters"
	rules "monitoring-console/internal/rules/domain"
	"monitoring-console/internal/store"
)

type stubBackend struct {
	list       []rules.Rule
	filtered   map[string]string
	searchType rules.SearchType
	writeErr   error
	deleted    []int64
	nextID     int64
}

func (s *stubBackend) Rules(context.Context) ([]rules.Rule, error) {
	return append([]rules.Rule(nil), s.list...), nil
}

func (s *stubBackend) FilterRules(_ context.Context, params map[string]string) ([]rules.Rule, error) {
	s.filtered = params
	out := []rules.Rule{}
	for _, r := range s.list {
		if r.Priority == params["priority"] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubBackend) SearchRules(_ context.Context, t rules.SearchType, _ string) ([]rules.Rule, error) {
	s.searchType = t
	return s.list[:1], nil
}

func (s *stubBackend) Rule(_ context.Context, id int64) (rules.Rule, error) {
	for _, r := range s.list {
		if r.RuleID == id {
			return r, nil
		}
	}
	return rules.Rule{}, rules.ErrNotFound
}

func (s *stubBackend) CreateRule(_ context.Context, rule rules.Rule) (rules.Rule, error) {
	if s.writeErr != nil {
		return rules.Rule{}, s.writeErr
	}
	s.nextID++
	rule.RuleID = s.nextID
	return rule, nil
}

func (s *stubBackend) UpdateRule(_ context.Context, rule rules.Rule) (rules.Rule, error) {
	if s.writeErr != nil {
		return rules.Rule{}, s.writeErr
	}
	return rule, nil
}

func (s *stubBackend) DeleteRule(_ context.Context, id int64) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func seeded() *stubBackend {
	return &stubBackend{
		nextID: 100,
		list: []rules.Rule{
			{RuleID: 1, RuleName: "High temp", RTUID: rules.IDList{"7"}, Priority: "High", Status: "Active"},
			{RuleID: 2, RuleName: "Low humidity", RTUID: rules.IDList{"8"}, Priority: "Low", Status: "Paused"},
		},
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

func TestFetchFilteredUsesFilterEndpoint(t *testing.T) {
	backend := seeded()
	svc := newService(t, backend)

	state := svc.FetchFiltered(context.Background(), filters.RuleFilters{Priority: "High"})
	if state.Loading || len(state.Data) != 1 || state.Data[0].RuleID != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
	if backend.filtered["priority"] != "High" || len(backend.filtered) != 1 {
		t.Fatalf("unexpected params %v", backend.filtered)
	}
	if svc.Snapshot().Filters.Priority != "High" {
		t.Fatalf("expected filters stored")
	}

	state = svc.FetchFiltered(context.Background(), filters.RuleFilters{})
	if len(state.Data) != 2 {
		t.Fatalf("empty filter should load all rules, got %d", len(state.Data))
	}
}

func TestCreateAppendsAndRaisesFlag(t *testing.T) {
	svc := newService(t, seeded())
	svc.FetchAll(context.Background())

	state, err := svc.Create(context.Background(), rules.Rule{RuleName: "Pressure", RTUID: rules.IDList{"9"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if state.Loading || state.Data != 101 {
		t.Fatalf("unexpected write state %+v", state)
	}
	snap := svc.Snapshot()
	if len(snap.Rules.Data) != 3 || snap.Rules.Data[2].RuleID != 101 {
		t.Fatalf("expected rule appended, got %+v", snap.Rules.Data)
	}
	if !snap.CreateSuccess {
		t.Fatalf("expected create flag")
	}
	svc.ClearCreateStatus()
	if svc.Snapshot().CreateSuccess {
		t.Fatalf("expected create flag cleared")
	}
}

func TestCreateValidatesBeforeCallingBackend(t *testing.T) {
	backend := seeded()
	svc := newService(t, backend)
	if _, err := svc.Create(context.Background(), rules.Rule{RuleName: " ", RTUID: rules.IDList{"1"}}); !errors.Is(err, rules.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.Create(context.Background(), rules.Rule{RuleName: "x", RTUID: rules.IDList{"rtu-a"}}); !errors.Is(err, rules.ErrInvalidRTU) {
		t.Fatalf("expected ErrInvalidRTU, got %v", err)
	}
	if backend.nextID != 100 {
		t.Fatalf("backend must not be called")
	}
}

func TestUpdateReplacesByIDAndSelected(t *testing.T) {
	svc := newService(t, seeded())
	svc.FetchAll(context.Background())
	if _, err := svc.View(context.Background(), 2); err != nil {
		t.Fatalf("view: %v", err)
	}

	rule := svc.Snapshot().Rules.Data[1]
	rule.Status = "Active"
	if _, err := svc.Update(context.Background(), rule); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap := svc.Snapshot()
	if snap.Rules.Data[1].Status != "Active" || snap.Rules.Data[0].RuleName != "High temp" {
		t.Fatalf("unexpected list %+v", snap.Rules.Data)
	}
	if snap.Selected.Data == nil || snap.Selected.Data.Status != "Active" {
		t.Fatalf("expected selected rule refreshed")
	}
	if !snap.UpdateSuccess {
		t.Fatalf("expected update flag")
	}
}

func TestDeleteRemovesRule(t *testing.T) {
	backend := seeded()
	svc := newService(t, backend)
	svc.FetchAll(context.Background())

	if _, err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap := svc.Snapshot()
	if len(snap.Rules.Data) != 1 || snap.Rules.Data[0].RuleID != 2 {
		t.Fatalf("unexpected list %+v", snap.Rules.Data)
	}
	if !snap.DeleteSuccess || len(backend.deleted) != 1 {
		t.Fatalf("expected delete recorded")
	}
	svc.ClearDeleteStatus()
	if svc.Snapshot().DeleteSuccess {
		t.Fatalf("expected delete flag cleared")
	}
}

func TestWriteFailureRecordsErrorWithoutFlag(t *testing.T) {
	backend := seeded()
	backend.writeErr = errors.New("backend down")
	svc := newService(t, backend)
	svc.FetchAll(context.Background())

	state, err := svc.Delete(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Loading || state.Error != "backend down" {
		t.Fatalf("unexpected write state %+v", state)
	}
	snap := svc.Snapshot()
	if snap.DeleteSuccess || len(snap.Rules.Data) != 2 {
		t.Fatalf("failed delete must not change state")
	}
}

func TestSearchAndSelection(t *testing.T) {
	backend := seeded()
	svc := newService(t, backend)

	if _, err := svc.Search(context.Background(), rules.SearchType("name"), "x"); !errors.Is(err, rules.ErrInvalidSearch) {
		t.Fatalf("expected ErrInvalidSearch, got %v", err)
	}
	state, err := svc.Search(context.Background(), rules.SearchByTags, " boiler ")
	if err != nil || len(state.Data) != 1 || backend.searchType != rules.SearchByTags {
		t.Fatalf("unexpected search %+v err=%v", state, err)
	}

	view, err := svc.View(context.Background(), 9)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Phase != store.PhaseRejected || view.Loading {
		t.Fatalf("expected rejected view, got %+v", view)
	}
	svc.ClearSelected()
	if svc.Snapshot().Selected.Data != nil {
		t.Fatalf("expected selection cleared")
	}
}

func TestSetFiltersMergesAndClears(t *testing.T) {
	svc := newService(t, seeded())
	high, tags := "High", "boiler"
	svc.SetFilters(filters.RuleUpdate{Priority: &high})
	got := svc.SetFilters(filters.RuleUpdate{Tags: &tags})
	if got.Priority != "High" || got.Tags != "boiler" {
		t.Fatalf("unexpected filters %+v", got)
	}
	svc.ClearFilters()
	if !svc.Snapshot().Filters.Empty() {
		t.Fatalf("expected filters cleared")
	}
}
