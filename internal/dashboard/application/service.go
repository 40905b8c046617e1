package application

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"monitoring-console/internal/charts"
	dashboard "monitoring-console/internal/dashboard/domain"
	"monitoring-console/internal/store"
)

const sliceName = "dashboard"

// Backend is the remote surface the dashboard slice needs.
type Backend interface {
	AlarmsSummary(ctx context.Context) (dashboard.AlarmsSummary, error)
	RulesSummary(ctx context.Context) (dashboard.RulesSummary, error)
	ReportsSummary(ctx context.Context) (dashboard.ReportsSummary, error)
}

// Slice is the dashboard state container.
type Slice interface {
	FetchAlarmsSummary(ctx context.Context) store.State[*dashboard.AlarmsSummary]
	FetchRulesSummary(ctx context.Context) store.State[*dashboard.RulesSummary]
	FetchReportsSummary(ctx context.Context) store.State[*dashboard.ReportsSummary]
	FetchAll(ctx context.Context) Snapshot
	Snapshot() Snapshot
}

// Charts are the summary charts derived from the current summaries.
type Charts struct {
	Alarms  charts.CategoryChart `json:"alarms"`
	Rules   charts.CategoryChart `json:"rules"`
	Reports charts.CategoryChart `json:"reports"`
}

// Snapshot is a copy of the dashboard slice.
type Snapshot struct {
	Alarms  store.State[*dashboard.AlarmsSummary]  `json:"alarmsSummary"`
	Rules   store.State[*dashboard.RulesSummary]   `json:"rulesSummary"`
	Reports store.State[*dashboard.ReportsSummary] `json:"reportsSummary"`
	Charts  Charts                                 `json:"charts"`
}

// Service holds the three dashboard summaries.
type Service struct {
	backend Backend
	logger  zerolog.Logger

	alarms  *store.Track[*dashboard.AlarmsSummary]
	rules   *store.Track[*dashboard.RulesSummary]
	reports *store.Track[*dashboard.ReportsSummary]
}

// ServiceOption customizes the dashboard slice.
type ServiceOption func(*Service)

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs the dashboard slice. hub may be nil.
func NewService(backend Backend, hub *store.Hub, opts ...ServiceOption) (*Service, error) {
	if backend == nil {
		return nil, errors.New("dashboard: nil backend")
	}
	s := &Service{
		backend: backend,
		logger:  zerolog.Nop(),
		alarms:  store.NewTrack[*dashboard.AlarmsSummary](sliceName, "alarmsSummary", hub),
		rules:   store.NewTrack[*dashboard.RulesSummary](sliceName, "rulesSummary", hub),
		reports: store.NewTrack[*dashboard.ReportsSummary](sliceName, "reportsSummary", hub),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// FetchAlarmsSummary loads alarm counts.
func (s *Service) FetchAlarmsSummary(ctx context.Context) store.State[*dashboard.AlarmsSummary] {
	return store.Run(ctx, s.alarms, func(ctx context.Context) (*dashboard.AlarmsSummary, error) {
		out, err := s.backend.AlarmsSummary(ctx)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// FetchRulesSummary loads rule counts.
func (s *Service) FetchRulesSummary(ctx context.Context) store.State[*dashboard.RulesSummary] {
	return store.Run(ctx, s.rules, func(ctx context.Context) (*dashboard.RulesSummary, error) {
		out, err := s.backend.RulesSummary(ctx)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// FetchReportsSummary loads report counts.
func (s *Service) FetchReportsSummary(ctx context.Context) store.State[*dashboard.ReportsSummary] {
	return store.Run(ctx, s.reports, func(ctx context.Context) (*dashboard.ReportsSummary, error) {
		out, err := s.backend.ReportsSummary(ctx)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// FetchAll loads the three summaries concurrently. Each lane fails on its own.
func (s *Service) FetchAll(ctx context.Context) Snapshot {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.FetchAlarmsSummary(ctx)
	}()
	go func() {
		defer wg.Done()
		s.FetchRulesSummary(ctx)
	}()
	go func() {
		defer wg.Done()
		s.FetchReportsSummary(ctx)
	}()
	wg.Wait()

	snap := s.Snapshot()
	for name, msg := range map[string]string{
		"alarms":  snap.Alarms.Error,
		"rules":   snap.Rules.Error,
		"reports": snap.Reports.Error,
	} {
		if msg != "" {
			s.logger.Warn().Str("summary", name).Str("error", msg).Msg("dashboard summary failed")
		}
	}
	return snap
}

// Snapshot returns the summaries and the charts derived from them.
func (s *Service) Snapshot() Snapshot {
	snap := Snapshot{
		Alarms:  s.alarms.Snapshot(),
		Rules:   s.rules.Snapshot(),
		Reports: s.reports.Snapshot(),
	}
	snap.Charts = Charts{
		Alarms:  charts.AlarmsChart(snap.Alarms.Data),
		Rules:   charts.RulesChart(snap.Rules.Data),
		Reports: charts.ReportsChart(snap.Reports.Data),
	}
	return snap
}
