package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	reports "monitoring-console/internal/reports/domain"
	"monitoring-console/internal/store"
)

// ScheduledBackend is the remote surface of the schedules slice.
type ScheduledBackend interface {
	ScheduledReports(ctx context.Context) ([]reports.ScheduledReport, error)
	DeleteSchedule(ctx context.Context, id int64) error
}

// ScheduledSlice is the report schedules state container.
type ScheduledSlice interface {
	Fetch(ctx context.Context) store.State[[]reports.ScheduledReport]
	Refresh(ctx context.Context) store.State[[]reports.ScheduledReport]
	Delete(ctx context.Context, id int64) (store.State[int64], error)
	ClearDeleteStatus()
	Snapshot() ScheduledSnapshot
}

// ScheduledSnapshot is a copy of the schedules slice.
type ScheduledSnapshot struct {
	Schedules     store.State[[]reports.ScheduledReport] `json:"schedules"`
	Delete        store.State[int64]                     `json:"delete"`
	DeleteSuccess bool                                   `json:"deleteSuccess"`
}

// ScheduledService holds report schedules and the delete flag.
type ScheduledService struct {
	backend ScheduledBackend
	logger  zerolog.Logger

	list   *store.Track[[]reports.ScheduledReport]
	remove *store.Track[int64]

	deleteSuccess store.Flag
}

// NewScheduledService constructs the schedules slice. hub may be nil.
func NewScheduledService(backend ScheduledBackend, hub *store.Hub, opts ...Option) (*ScheduledService, error) {
	if backend == nil {
		return nil, errors.New("reports: nil scheduled backend")
	}
	o := buildOptions(opts)
	return &ScheduledService{
		backend: backend,
		logger:  o.logger,
		list:    store.NewTrackWithData(scheduledSlice, "list", hub, []reports.ScheduledReport{}),
		remove:  store.NewTrack[int64](scheduledSlice, "delete", hub),
	}, nil
}

// Fetch loads every schedule. A successful fetch resets the delete flag.
func (s *ScheduledService) Fetch(ctx context.Context) store.State[[]reports.ScheduledReport] {
	return s.load(ctx, true)
}

// Refresh reloads the schedules in the background and leaves the delete
// flag for the user to clear.
func (s *ScheduledService) Refresh(ctx context.Context) store.State[[]reports.ScheduledReport] {
	return s.load(ctx, false)
}

func (s *ScheduledService) load(ctx context.Context, resetDelete bool) store.State[[]reports.ScheduledReport] {
	seq := s.list.Begin()
	list, err := s.backend.ScheduledReports(ctx)
	if err != nil {
		s.list.Reject(seq, err)
		return s.list.Snapshot()
	}
	if s.list.Fulfill(seq, list) && resetDelete {
		s.deleteSuccess.Clear()
	}
	return s.list.Snapshot()
}

// Delete removes a schedule. The delete flag stays raised until
// ClearDeleteStatus or the next successful fetch.
func (s *ScheduledService) Delete(ctx context.Context, id int64) (store.State[int64], error) {
	if id <= 0 {
		return s.remove.Snapshot(), reports.ErrMissingID
	}
	seq := s.remove.Begin()
	if err := s.backend.DeleteSchedule(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("report_id", id).Msg("delete schedule failed")
		s.remove.Reject(seq, err)
		return s.remove.Snapshot(), nil
	}
	s.list.Mutate(func(current []reports.ScheduledReport) ([]reports.ScheduledReport, bool) {
		next := make([]reports.ScheduledReport, 0, len(current))
		for _, r := range current {
			if r.ReportID != id {
				next = append(next, r)
			}
		}
		return next, len(next) != len(current)
	})
	s.deleteSuccess.Raise()
	s.remove.Fulfill(seq, id)
	return s.remove.Snapshot(), nil
}

// ClearDeleteStatus resets the delete flag.
func (s *ScheduledService) ClearDeleteStatus() {
	s.deleteSuccess.Clear()
}

// Snapshot returns a copy of the slice.
func (s *ScheduledService) Snapshot() ScheduledSnapshot {
	return ScheduledSnapshot{
		Schedules:     s.list.Snapshot(),
		Delete:        s.remove.Snapshot(),
		DeleteSuccess: s.deleteSuccess.IsSet(),
	}
}
