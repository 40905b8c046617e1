package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	reports "monitoring-console/internal/reports/domain"
	"monitoring-console/internal/store"
)

const (
	manualSlice    = "manualReports"
	automatedSlice = "automatedReports"
	scheduledSlice = "scheduledReports"
)

// ManualBackend is the remote surface of the manual reports slice.
type ManualBackend interface {
	ManualReports(ctx context.Context, filter reports.ManualFilter) ([]reports.ManualReport, error)
	SearchManualReports(ctx context.Context, q string) ([]reports.ManualReport, error)
	SaveManualReport(ctx context.Context, req reports.SaveRequest) (json.RawMessage, error)
}

// ManualSlice is the manual reports state container.
type ManualSlice interface {
	Fetch(ctx context.Context) store.State[[]reports.ManualReport]
	FetchFiltered(ctx context.Context, filter reports.ManualFilter) store.State[[]reports.ManualReport]
	Save(ctx context.Context, req reports.SaveRequest) (store.State[json.RawMessage], error)
	Search(ctx context.Context, q string) store.State[[]reports.ManualReport]
	Snapshot() ManualSnapshot
}

// ManualSnapshot is a copy of the manual reports slice.
type ManualSnapshot struct {
	Reports store.State[[]reports.ManualReport] `json:"reports"`
	Search  store.State[[]reports.ManualReport] `json:"search"`
	Saved   store.State[json.RawMessage]        `json:"saved"`
	Filter  reports.ManualFilter                `json:"filter"`
}

// Option customizes a reports slice.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ManualService holds manual reports and their search results.
type ManualService struct {
	backend ManualBackend
	logger  zerolog.Logger

	list   *store.Track[[]reports.ManualReport]
	search *store.Track[[]reports.ManualReport]
	save   *store.Track[json.RawMessage]

	mu     sync.Mutex
	filter reports.ManualFilter
}

// NewManualService constructs the manual reports slice. hub may be nil.
func NewManualService(backend ManualBackend, hub *store.Hub, opts ...Option) (*ManualService, error) {
	if backend == nil {
		return nil, errors.New("reports: nil manual backend")
	}
	o := buildOptions(opts)
	return &ManualService{
		backend: backend,
		logger:  o.logger,
		list:    store.NewTrackWithData(manualSlice, "list", hub, []reports.ManualReport{}),
		search:  store.NewTrackWithData(manualSlice, "search", hub, []reports.ManualReport{}),
		save:    store.NewTrack[json.RawMessage](manualSlice, "save", hub),
	}, nil
}

// Fetch loads every manual report.
func (s *ManualService) Fetch(ctx context.Context) store.State[[]reports.ManualReport] {
	return s.FetchFiltered(ctx, reports.ManualFilter{})
}

// FetchFiltered stores filter and loads the matching reports.
func (s *ManualService) FetchFiltered(ctx context.Context, filter reports.ManualFilter) store.State[[]reports.ManualReport] {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return store.Run(ctx, s.list, func(ctx context.Context) ([]reports.ManualReport, error) {
		return s.backend.ManualReports(ctx, filter)
	})
}

// Save creates a report, then reloads the list with the current filter.
// Invalid requests are returned without touching state.
func (s *ManualService) Save(ctx context.Context, req reports.SaveRequest) (store.State[json.RawMessage], error) {
	if err := req.Validate(); err != nil {
		return s.save.Snapshot(), err
	}
	state := store.Run(ctx, s.save, func(ctx context.Context) (json.RawMessage, error) {
		return s.backend.SaveManualReport(ctx, req)
	})
	if state.Phase != store.PhaseFulfilled {
		s.logger.Warn().Str("layout", req.LayoutName).Str("error", state.Error).Msg("save manual report failed")
		return state, nil
	}
	s.mu.Lock()
	filter := s.filter
	s.mu.Unlock()
	s.FetchFiltered(ctx, filter)
	return state, nil
}

// Search runs a free text search over manual reports.
func (s *ManualService) Search(ctx context.Context, q string) store.State[[]reports.ManualReport] {
	q = strings.TrimSpace(q)
	return store.Run(ctx, s.search, func(ctx context.Context) ([]reports.ManualReport, error) {
		return s.backend.SearchManualReports(ctx, q)
	})
}

// Snapshot returns a copy of the slice.
func (s *ManualService) Snapshot() ManualSnapshot {
	s.mu.Lock()
	filter := s.filter
	s.mu.Unlock()
	return ManualSnapshot{
		Reports: s.list.Snapshot(),
		Search:  s.search.Snapshot(),
		Saved:   s.save.Snapshot(),
		Filter:  filter,
	}
}
