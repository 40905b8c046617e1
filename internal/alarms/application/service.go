package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	alarms "monitoring-console/internal/alarms/domain"
	"monitoring-console/internal/store"
)

const sliceName = "alarms"

// Backend is the remote surface the alarms slice needs.
type Backend interface {
	Alarms(ctx context.Context, filters alarms.Filters) ([]alarms.Alarm, error)
	SearchAlarms(ctx context.Context, q string) ([]alarms.Alarm, error)
	UpdateAlarm(ctx context.Context, id int64, patch alarms.Patch) error
}

// Slice is the alarms state container.
type Slice interface {
	Fetch(ctx context.Context, filters alarms.Filters) store.State[[]alarms.Alarm]
	Search(ctx context.Context, q string) store.State[[]alarms.Alarm]
	UpdateStatus(ctx context.Context, id int64, status alarms.Status) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	ClearUpdateStatus()
	ClearErrorStatus()
	Snapshot() Snapshot
}

// Snapshot is a copy of the whole alarms slice.
type Snapshot struct {
	Alarms        store.State[[]alarms.Alarm] `json:"alarms"`
	Search        store.State[[]alarms.Alarm] `json:"search"`
	Filters       alarms.Filters              `json:"filters"`
	UpdateSuccess bool                        `json:"updateSuccess"`
	UpdateError   bool                        `json:"updateError"`
	UpdateMessage string                      `json:"updateMessage,omitempty"`
}

// Service holds alarms, search results and the update flags.
type Service struct {
	backend Backend
	logger  zerolog.Logger

	list   *store.Track[[]alarms.Alarm]
	search *store.Track[[]alarms.Alarm]

	updateSuccess store.Flag
	updateError   store.Flag

	mu            sync.Mutex
	filters       alarms.Filters
	updateMessage string
}

// ServiceOption customizes the alarms slice.
type ServiceOption func(*Service)

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs the alarms slice. hub may be nil.
func NewService(backend Backend, hub *store.Hub, opts ...ServiceOption) (*Service, error) {
	if backend == nil {
		return nil, errors.New("alarms: nil backend")
	}
	s := &Service{
		backend: backend,
		logger:  zerolog.Nop(),
		list:    store.NewTrackWithData(sliceName, "list", hub, []alarms.Alarm{}),
		search:  store.NewTrackWithData(sliceName, "search", hub, []alarms.Alarm{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Fetch loads alarms for filters. A successful fetch drops earlier search results.
func (s *Service) Fetch(ctx context.Context, filters alarms.Filters) store.State[[]alarms.Alarm] {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()

	seq := s.list.Begin()
	list, err := s.backend.Alarms(ctx, filters)
	if err != nil {
		s.logger.Warn().Err(err).Str("severity", filters.Severity).Str("status", filters.Status).Msg("fetch alarms failed")
		s.list.Reject(seq, err)
		return s.list.Snapshot()
	}
	if s.list.Fulfill(seq, list) {
		s.search.Set([]alarms.Alarm{})
	}
	return s.list.Snapshot()
}

// Search runs a free text search; results are kept apart from the list.
func (s *Service) Search(ctx context.Context, q string) store.State[[]alarms.Alarm] {
	q = strings.TrimSpace(q)
	return store.Run(ctx, s.search, func(ctx context.Context) ([]alarms.Alarm, error) {
		return s.backend.SearchAlarms(ctx, q)
	})
}

// UpdateStatus changes an alarm status. Invalid input is returned without
// touching state; backend failures raise the update error flag.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status alarms.Status) error {
	if id <= 0 {
		return alarms.ErrMissingID
	}
	if !status.Valid() {
		return alarms.ErrInvalidStatus
	}
	if err := s.backend.UpdateAlarm(ctx, id, alarms.Patch{Status: &status}); err != nil {
		s.failUpdate(id, err)
		return nil
	}
	s.succeedUpdate()
	s.patch(id, func(a *alarms.Alarm) { a.Status = status })
	return nil
}

// UpdateDescription changes an alarm description.
func (s *Service) UpdateDescription(ctx context.Context, id int64, description string) error {
	if id <= 0 {
		return alarms.ErrMissingID
	}
	if err := s.backend.UpdateAlarm(ctx, id, alarms.Patch{Description: &description}); err != nil {
		s.failUpdate(id, err)
		return nil
	}
	s.succeedUpdate()
	s.patch(id, func(a *alarms.Alarm) { a.Description = description })
	return nil
}

// patch applies fn to the alarm with id. Unknown ids leave the list as is.
func (s *Service) patch(id int64, fn func(*alarms.Alarm)) {
	s.list.Mutate(func(current []alarms.Alarm) ([]alarms.Alarm, bool) {
		for i := range current {
			if current[i].AlarmID != id {
				continue
			}
			next := append([]alarms.Alarm(nil), current...)
			fn(&next[i])
			return next, true
		}
		return current, false
	})
}

func (s *Service) succeedUpdate() {
	s.updateSuccess.Raise()
	s.updateError.Clear()
	s.mu.Lock()
	s.updateMessage = ""
	s.mu.Unlock()
}

func (s *Service) failUpdate(id int64, err error) {
	s.logger.Warn().Err(err).Int64("alarm_id", id).Msg("update alarm failed")
	s.updateSuccess.Clear()
	s.updateError.Raise()
	s.mu.Lock()
	s.updateMessage = err.Error()
	s.mu.Unlock()
}

// ClearUpdateStatus resets the update success flag.
func (s *Service) ClearUpdateStatus() {
	s.updateSuccess.Clear()
}

// ClearErrorStatus resets the update error flag.
func (s *Service) ClearErrorStatus() {
	s.updateError.Clear()
	s.mu.Lock()
	s.updateMessage = ""
	s.mu.Unlock()
}

// Snapshot returns a copy of the slice.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	filters, msg := s.filters, s.updateMessage
	s.mu.Unlock()
	return Snapshot{
		Alarms:        s.list.Snapshot(),
		Search:        s.search.Snapshot(),
		Filters:       filters,
		UpdateSuccess: s.updateSuccess.IsSet(),
		UpdateError:   s.updateError.IsSet(),
		UpdateMessage: msg,
	}
}
