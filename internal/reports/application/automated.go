package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	reports "monitoring-console/internal/reports/domain"
	"monitoring-console/internal/store"
)

// AutomatedBackend is the remote surface of the automated reports slice.
type AutomatedBackend interface {
	AutomatedReports(ctx context.Context, filter reports.AutomatedFilter) ([]reports.AutomatedReport, error)
	SearchAutomatedReports(ctx context.Context, q string) ([]reports.AutomatedReport, error)
	AutomatedReport(ctx context.Context, id int64) (reports.Detail, error)
}

// AutomatedSlice is the automated reports state container.
type AutomatedSlice interface {
	Fetch(ctx context.Context) store.State[[]reports.AutomatedReport]
	FetchFiltered(ctx context.Context, filter reports.AutomatedFilter) store.State[[]reports.AutomatedReport]
	Search(ctx context.Context, q string) store.State[[]reports.AutomatedReport]
	View(ctx context.Context, id int64) (store.State[*reports.Detail], error)
	Snapshot() AutomatedSnapshot
}

// AutomatedSnapshot is a copy of the automated reports slice.
type AutomatedSnapshot struct {
	Reports store.State[[]reports.AutomatedReport] `json:"reports"`
	Search  store.State[[]reports.AutomatedReport] `json:"search"`
	Detail  store.State[*reports.Detail]           `json:"detail"`
	Filter  reports.AutomatedFilter                `json:"filter"`
}

// AutomatedService holds automated reports and the report being viewed.
type AutomatedService struct {
	backend AutomatedBackend
	logger  zerolog.Logger

	list   *store.Track[[]reports.AutomatedReport]
	search *store.Track[[]reports.AutomatedReport]
	detail *store.Track[*reports.Detail]

	mu     sync.Mutex
	filter reports.AutomatedFilter
}

// NewAutomatedService constructs the automated reports slice. hub may be nil.
func NewAutomatedService(backend AutomatedBackend, hub *store.Hub, opts ...Option) (*AutomatedService, error) {
	if backend == nil {
		return nil, errors.New("reports: nil automated backend")
	}
	o := buildOptions(opts)
	return &AutomatedService{
		backend: backend,
		logger:  o.logger,
		list:    store.NewTrackWithData(automatedSlice, "list", hub, []reports.AutomatedReport{}),
		search:  store.NewTrackWithData(automatedSlice, "search", hub, []reports.AutomatedReport{}),
		detail:  store.NewTrack[*reports.Detail](automatedSlice, "detail", hub),
	}, nil
}

// Fetch loads every automated report.
func (s *AutomatedService) Fetch(ctx context.Context) store.State[[]reports.AutomatedReport] {
	return s.FetchFiltered(ctx, reports.AutomatedFilter{})
}

// FetchFiltered stores filter and loads the matching reports.
func (s *AutomatedService) FetchFiltered(ctx context.Context, filter reports.AutomatedFilter) store.State[[]reports.AutomatedReport] {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return store.Run(ctx, s.list, func(ctx context.Context) ([]reports.AutomatedReport, error) {
		return s.backend.AutomatedReports(ctx, filter)
	})
}

// Search runs a free text search over automated reports.
func (s *AutomatedService) Search(ctx context.Context, q string) store.State[[]reports.AutomatedReport] {
	q = strings.TrimSpace(q)
	return store.Run(ctx, s.search, func(ctx context.Context) ([]reports.AutomatedReport, error) {
		return s.backend.SearchAutomatedReports(ctx, q)
	})
}

// View loads one report with its widget payloads.
func (s *AutomatedService) View(ctx context.Context, id int64) (store.State[*reports.Detail], error) {
	if id <= 0 {
		return s.detail.Snapshot(), reports.ErrMissingID
	}
	state := store.Run(ctx, s.detail, func(ctx context.Context) (*reports.Detail, error) {
		detail, err := s.backend.AutomatedReport(ctx, id)
		if err != nil {
			return nil, err
		}
		return &detail, nil
	})
	if state.Phase == store.PhaseRejected {
		s.logger.Warn().Int64("report_id", id).Str("error", state.Error).Msg("view automated report failed")
	}
	return state, nil
}

// Snapshot returns a copy of the slice.
func (s *AutomatedService) Snapshot() AutomatedSnapshot {
	s.mu.Lock()
	filter := s.filter
	s.mu.Unlock()
	return AutomatedSnapshot{
		Reports: s.list.Snapshot(),
		Search:  s.search.Snapshot(),
		Detail:  s.detail.Snapshot(),
		Filter:  filter,
	}
}
