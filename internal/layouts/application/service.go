package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	layouts "monitoring-console/internal/layouts/domain"
	"monitoring-console/internal/store"
)

const sliceName = "layouts"

// Backend is the remote surface the layouts slice needs.
type Backend interface {
	Layouts(ctx context.Context) ([]layouts.Summary, error)
	FilterLayouts(ctx context.Context, filter layouts.Filter) ([]layouts.Summary, error)
	SearchLayouts(ctx context.Context, q string) ([]layouts.Summary, error)
	Layout(ctx context.Context, id int64) (layouts.Layout, error)
	CreateLayout(ctx context.Context, layout layouts.Layout) (layouts.Layout, error)
	UpdateLayout(ctx context.Context, id int64, layout layouts.Layout) (layouts.Layout, error)
	LayoutNames(ctx context.Context) ([]string, error)
}

// Slice is the layouts state container.
type Slice interface {
	Fetch(ctx context.Context) store.State[[]layouts.Summary]
	FetchFiltered(ctx context.Context, filter layouts.Filter) store.State[[]layouts.Summary]
	Search(ctx context.Context, q string) store.State[[]layouts.Summary]
	Save(ctx context.Context, layout layouts.Layout) (store.State[*layouts.Layout], error)
	Get(ctx context.Context, id int64) (store.State[*layouts.Layout], error)
	Update(ctx context.Context, id int64, layout layouts.Layout) (store.State[*layouts.Layout], error)
	AddWidget(widget layouts.Widget) (layouts.Layout, error)
	RemoveWidget(index int) (layouts.Layout, error)
	SetLayoutName(name string) (layouts.Layout, error)
	Snapshot() Snapshot
}

// Snapshot is a copy of the layouts slice.
type Snapshot struct {
	Layouts store.State[[]layouts.Summary] `json:"layouts"`
	Search  store.State[[]layouts.Summary] `json:"search"`
	Current store.State[*layouts.Layout]   `json:"current"`
	Filter  layouts.Filter                 `json:"filter"`
}

// Service holds the layout list and the layout being edited.
type Service struct {
	backend Backend
	logger  zerolog.Logger

	list    *store.Track[[]layouts.Summary]
	search  *store.Track[[]layouts.Summary]
	current *store.Track[*layouts.Layout]

	mu     sync.Mutex
	filter layouts.Filter
}

// ServiceOption customizes the layouts slice.
type ServiceOption func(*Service)

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs the layouts slice. hub may be nil.
func NewService(backend Backend, hub *store.Hub, opts ...ServiceOption) (*Service, error) {
	if backend == nil {
		return nil, errors.New("layouts: nil backend")
	}
	s := &Service{
		backend: backend,
		logger:  zerolog.Nop(),
		list:    store.NewTrackWithData(sliceName, "list", hub, []layouts.Summary{}),
		search:  store.NewTrackWithData(sliceName, "search", hub, []layouts.Summary{}),
		current: store.NewTrack[*layouts.Layout](sliceName, "current", hub),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Fetch loads every layout row.
func (s *Service) Fetch(ctx context.Context) store.State[[]layouts.Summary] {
	s.mu.Lock()
	s.filter = layouts.Filter{}
	s.mu.Unlock()
	return store.Run(ctx, s.list, s.backend.Layouts)
}

// FetchFiltered stores filter and loads the matching rows.
func (s *Service) FetchFiltered(ctx context.Context, filter layouts.Filter) store.State[[]layouts.Summary] {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return store.Run(ctx, s.list, func(ctx context.Context) ([]layouts.Summary, error) {
		return s.backend.FilterLayouts(ctx, filter)
	})
}

// Search looks layouts up by name.
func (s *Service) Search(ctx context.Context, q string) store.State[[]layouts.Summary] {
	q = strings.TrimSpace(q)
	return store.Run(ctx, s.search, func(ctx context.Context) ([]layouts.Summary, error) {
		return s.backend.SearchLayouts(ctx, q)
	})
}

// Save creates a layout, appends its row to the list and makes it current.
// Names are unique regardless of case.
func (s *Service) Save(ctx context.Context, layout layouts.Layout) (store.State[*layouts.Layout], error) {
	layout.LayoutName = strings.TrimSpace(layout.LayoutName)
	if err := layout.Validate(); err != nil {
		return s.current.Snapshot(), err
	}
	names, err := s.backend.LayoutNames(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("list layout names failed")
	} else if containsFold(names, layout.LayoutName) {
		return s.current.Snapshot(), fmt.Errorf("%w: %q", layouts.ErrDuplicateName, layout.LayoutName)
	}

	state := store.Run(ctx, s.current, func(ctx context.Context) (*layouts.Layout, error) {
		created, err := s.backend.CreateLayout(ctx, layout)
		if err != nil {
			return nil, err
		}
		return &created, nil
	})
	if state.Phase != store.PhaseFulfilled {
		s.logger.Warn().Str("layout", layout.LayoutName).Str("error", state.Error).Msg("save layout failed")
		return state, nil
	}
	row := state.Data.Summary()
	s.list.Mutate(func(current []layouts.Summary) ([]layouts.Summary, bool) {
		next := make([]layouts.Summary, 0, len(current)+1)
		next = append(next, current...)
		return append(next, row), true
	})
	return state, nil
}

// Get loads a layout with its widgets and makes it current.
func (s *Service) Get(ctx context.Context, id int64) (store.State[*layouts.Layout], error) {
	if id <= 0 {
		return s.current.Snapshot(), layouts.ErrMissingID
	}
	return store.Run(ctx, s.current, func(ctx context.Context) (*layouts.Layout, error) {
		layout, err := s.backend.Layout(ctx, id)
		if err != nil {
			return nil, err
		}
		return &layout, nil
	}), nil
}

// Update replaces a layout and refreshes its list row.
func (s *Service) Update(ctx context.Context, id int64, layout layouts.Layout) (store.State[*layouts.Layout], error) {
	if id <= 0 {
		return s.current.Snapshot(), layouts.ErrMissingID
	}
	if err := layout.Validate(); err != nil {
		return s.current.Snapshot(), err
	}
	state := store.Run(ctx, s.current, func(ctx context.Context) (*layouts.Layout, error) {
		updated, err := s.backend.UpdateLayout(ctx, id, layout)
		if err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if state.Phase != store.PhaseFulfilled {
		s.logger.Warn().Int64("layout_id", id).Str("error", state.Error).Msg("update layout failed")
		return state, nil
	}
	row := state.Data.Summary()
	s.list.Mutate(func(current []layouts.Summary) ([]layouts.Summary, bool) {
		for i := range current {
			if current[i].ID == id {
				next := append([]layouts.Summary(nil), current...)
				if row.CreatedAt == "" {
					row.CreatedAt = current[i].CreatedAt
				}
				next[i] = row
				return next, true
			}
		}
		return current, false
	})
	return state, nil
}

// AddWidget appends widget to the current layout.
func (s *Service) AddWidget(widget layouts.Widget) (layouts.Layout, error) {
	if err := widget.Validate(); err != nil {
		return layouts.Layout{}, err
	}
	return s.edit(func(l layouts.Layout) (layouts.Layout, error) {
		return l.WithWidget(widget), nil
	})
}

// RemoveWidget drops the widget at index from the current layout.
func (s *Service) RemoveWidget(index int) (layouts.Layout, error) {
	return s.edit(func(l layouts.Layout) (layouts.Layout, error) {
		return l.WithoutWidget(index)
	})
}

// SetLayoutName renames the current layout locally.
func (s *Service) SetLayoutName(name string) (layouts.Layout, error) {
	return s.edit(func(l layouts.Layout) (layouts.Layout, error) {
		out := l.Clone()
		out.LayoutName = name
		return out, nil
	})
}

// edit applies fn to a copy of the current layout. Without a current
// layout nothing changes and ErrNoLayout is returned.
func (s *Service) edit(fn func(layouts.Layout) (layouts.Layout, error)) (layouts.Layout, error) {
	var (
		result layouts.Layout
		err    = layouts.ErrNoLayout
	)
	s.current.Mutate(func(current *layouts.Layout) (*layouts.Layout, bool) {
		if current == nil {
			return current, false
		}
		var next layouts.Layout
		next, err = fn(*current)
		if err != nil {
			return current, false
		}
		result = next
		return &next, true
	})
	return result, err
}

// Snapshot returns a copy of the slice.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	filter := s.filter
	s.mu.Unlock()
	return Snapshot{
		Layouts: s.list.Snapshot(),
		Search:  s.search.Snapshot(),
		Current: s.current.Snapshot(),
		Filter:  filter,
	}
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}
