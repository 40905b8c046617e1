package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"monitoring-console/internal/filters"
	rules "monitoring-console/internal/rules/domain"
	"monitoring-console/internal/store"
)

const sliceName = "rules"

// Backend is the remote surface the rules slice needs.
type Backend interface {
	Rules(ctx context.Context) ([]rules.Rule, error)
	FilterRules(ctx context.Context, params map[string]string) ([]rules.Rule, error)
	SearchRules(ctx context.Context, searchType rules.SearchType, value string) ([]rules.Rule, error)
	Rule(ctx context.Context, id int64) (rules.Rule, error)
	CreateRule(ctx context.Context, rule rules.Rule) (rules.Rule, error)
	UpdateRule(ctx context.Context, rule rules.Rule) (rules.Rule, error)
	DeleteRule(ctx context.Context, id int64) error
}

// Slice is the rules state container.
type Slice interface {
	FetchAll(ctx context.Context) store.State[[]rules.Rule]
	FetchFiltered(ctx context.Context, filter filters.RuleFilters) store.State[[]rules.Rule]
	Search(ctx context.Context, searchType rules.SearchType, value string) (store.State[[]rules.Rule], error)
	View(ctx context.Context, id int64) (store.State[*rules.Rule], error)
	Create(ctx context.Context, rule rules.Rule) (store.State[int64], error)
	Update(ctx context.Context, rule rules.Rule) (store.State[int64], error)
	Delete(ctx context.Context, id int64) (store.State[int64], error)
	SetFilters(update filters.RuleUpdate) filters.RuleFilters
	ClearFilters()
	ClearSelected()
	ClearDeleteStatus()
	ClearCreateStatus()
	ClearUpdateStatus()
	Snapshot() Snapshot
}

// Snapshot is a copy of the whole rules slice.
type Snapshot struct {
	Rules         store.State[[]rules.Rule] `json:"rules"`
	Search        store.State[[]rules.Rule] `json:"search"`
	Selected      store.State[*rules.Rule]  `json:"selected"`
	Write         store.State[int64]        `json:"write"`
	Filters       filters.RuleFilters       `json:"filters"`
	CreateSuccess bool                      `json:"createSuccess"`
	UpdateSuccess bool                      `json:"updateSuccess"`
	DeleteSuccess bool                      `json:"deleteSuccess"`
}

// Service holds the rule list, search results, the selected rule and the
// one-shot write flags.
type Service struct {
	backend Backend
	logger  zerolog.Logger

	list     *store.Track[[]rules.Rule]
	search   *store.Track[[]rules.Rule]
	selected *store.Track[*rules.Rule]
	write    *store.Track[int64]

	createSuccess store.Flag
	updateSuccess store.Flag
	deleteSuccess store.Flag

	mu      sync.Mutex
	filters filters.RuleFilters
}

// ServiceOption customizes the rules slice.
type ServiceOption func(*Service)

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs the rules slice. hub may be nil.
func NewService(backend Backend, hub *store.Hub, opts ...ServiceOption) (*Service, error) {
	if backend == nil {
		return nil, errors.New("rules: nil backend")
	}
	s := &Service{
		backend:  backend,
		logger:   zerolog.Nop(),
		list:     store.NewTrackWithData(sliceName, "list", hub, []rules.Rule{}),
		search:   store.NewTrackWithData(sliceName, "search", hub, []rules.Rule{}),
		selected: store.NewTrack[*rules.Rule](sliceName, "selected", hub),
		write:    store.NewTrack[int64](sliceName, "write", hub),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// FetchAll loads every rule.
func (s *Service) FetchAll(ctx context.Context) store.State[[]rules.Rule] {
	return store.Run(ctx, s.list, s.backend.Rules)
}

// FetchFiltered stores filter and loads the matching rules. An empty filter
// loads everything.
func (s *Service) FetchFiltered(ctx context.Context, filter filters.RuleFilters) store.State[[]rules.Rule] {
	s.mu.Lock()
	s.filters = filter
	s.mu.Unlock()
	if filter.Empty() {
		return s.FetchAll(ctx)
	}
	return store.Run(ctx, s.list, func(ctx context.Context) ([]rules.Rule, error) {
		return s.backend.FilterRules(ctx, filter.Params())
	})
}

// Search looks rules up by tags or rule id.
func (s *Service) Search(ctx context.Context, searchType rules.SearchType, value string) (store.State[[]rules.Rule], error) {
	if !searchType.Valid() {
		return s.search.Snapshot(), rules.ErrInvalidSearch
	}
	value = strings.TrimSpace(value)
	return store.Run(ctx, s.search, func(ctx context.Context) ([]rules.Rule, error) {
		return s.backend.SearchRules(ctx, searchType, value)
	}), nil
}

// View loads one rule into the selected lane.
func (s *Service) View(ctx context.Context, id int64) (store.State[*rules.Rule], error) {
	if id <= 0 {
		return s.selected.Snapshot(), rules.ErrMissingID
	}
	return store.Run(ctx, s.selected, func(ctx context.Context) (*rules.Rule, error) {
		rule, err := s.backend.Rule(ctx, id)
		if err != nil {
			return nil, err
		}
		return &rule, nil
	}), nil
}

// Create stores a new rule and appends the server copy to the list.
func (s *Service) Create(ctx context.Context, rule rules.Rule) (store.State[int64], error) {
	if _, err := rules.NewWriteRequest(rule); err != nil {
		return s.write.Snapshot(), err
	}
	seq := s.write.Begin()
	created, err := s.backend.CreateRule(ctx, rule)
	if err != nil {
		s.logger.Warn().Err(err).Str("rule_name", rule.RuleName).Msg("create rule failed")
		s.write.Reject(seq, err)
		return s.write.Snapshot(), nil
	}
	s.list.Mutate(func(current []rules.Rule) ([]rules.Rule, bool) {
		next := make([]rules.Rule, 0, len(current)+1)
		next = append(next, current...)
		return append(next, created), true
	})
	s.createSuccess.Raise()
	s.write.Fulfill(seq, created.RuleID)
	return s.write.Snapshot(), nil
}

// Update replaces a rule and swaps the server copy in by id.
func (s *Service) Update(ctx context.Context, rule rules.Rule) (store.State[int64], error) {
	if rule.RuleID <= 0 {
		return s.write.Snapshot(), rules.ErrMissingID
	}
	if _, err := rules.NewWriteRequest(rule); err != nil {
		return s.write.Snapshot(), err
	}
	seq := s.write.Begin()
	updated, err := s.backend.UpdateRule(ctx, rule)
	if err != nil {
		s.logger.Warn().Err(err).Int64("rule_id", rule.RuleID).Msg("update rule failed")
		s.write.Reject(seq, err)
		return s.write.Snapshot(), nil
	}
	s.list.Mutate(func(current []rules.Rule) ([]rules.Rule, bool) {
		for i := range current {
			if current[i].RuleID == updated.RuleID {
				next := append([]rules.Rule(nil), current...)
				next[i] = updated
				return next, true
			}
		}
		return current, false
	})
	s.selected.Mutate(func(current *rules.Rule) (*rules.Rule, bool) {
		if current == nil || current.RuleID != updated.RuleID {
			return current, false
		}
		copied := updated
		return &copied, true
	})
	s.updateSuccess.Raise()
	s.write.Fulfill(seq, updated.RuleID)
	return s.write.Snapshot(), nil
}

// Delete removes a rule and drops it from the list.
func (s *Service) Delete(ctx context.Context, id int64) (store.State[int64], error) {
	if id <= 0 {
		return s.write.Snapshot(), rules.ErrMissingID
	}
	seq := s.write.Begin()
	if err := s.backend.DeleteRule(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("rule_id", id).Msg("delete rule failed")
		s.write.Reject(seq, err)
		return s.write.Snapshot(), nil
	}
	s.list.Mutate(func(current []rules.Rule) ([]rules.Rule, bool) {
		next := make([]rules.Rule, 0, len(current))
		for _, r := range current {
			if r.RuleID != id {
				next = append(next, r)
			}
		}
		return next, len(next) != len(current)
	})
	s.deleteSuccess.Raise()
	s.write.Fulfill(seq, id)
	return s.write.Snapshot(), nil
}

// SetFilters applies update to the stored filters and returns the result.
func (s *Service) SetFilters(update filters.RuleUpdate) filters.RuleFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Merge(update)
	return s.filters
}

// ClearFilters resets every filter.
func (s *Service) ClearFilters() {
	s.mu.Lock()
	s.filters = filters.RuleFilters{}
	s.mu.Unlock()
}

// ClearSelected drops the selected rule.
func (s *Service) ClearSelected() {
	s.selected.Set(nil)
}

func (s *Service) ClearDeleteStatus() { s.deleteSuccess.Clear() }
func (s *Service) ClearCreateStatus() { s.createSuccess.Clear() }
func (s *Service) ClearUpdateStatus() { s.updateSuccess.Clear() }

// Snapshot returns a copy of the slice.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	current := s.filters
	s.mu.Unlock()
	return Snapshot{
		Rules:         s.list.Snapshot(),
		Search:        s.search.Snapshot(),
		Selected:      s.selected.Snapshot(),
		Write:         s.write.Snapshot(),
		Filters:       current,
		CreateSuccess: s.createSuccess.IsSet(),
		UpdateSuccess: s.updateSuccess.IsSet(),
		DeleteSuccess: s.deleteSuccess.IsSet(),
	}
}
