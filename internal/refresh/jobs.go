package refresh

import (
	"context"
	"errors"
	"fmt"

	alarmapp "monitoring-console/internal/alarms/application"
	dashboardapp "monitoring-console/internal/dashboard/application"
	reportapp "monitoring-console/internal/reports/application"
	"monitoring-console/internal/store"
)

func rejected[T any](lane string, state store.State[T]) error {
	if state.Phase != store.PhaseRejected {
		return nil
	}
	return fmt.Errorf("%s: %s", lane, state.Error)
}

// DashboardJob refetches the three summaries.
func DashboardJob(slice dashboardapp.Slice) Job {
	return func(ctx context.Context) error {
		snap := slice.FetchAll(ctx)
		return errors.Join(
			rejected("alarms summary", snap.Alarms),
			rejected("rules summary", snap.Rules),
			rejected("reports summary", snap.Reports),
		)
	}
}

// AlarmsJob refetches alarms with the filters of the last fetch.
func AlarmsJob(slice alarmapp.Slice) Job {
	return func(ctx context.Context) error {
		filters := slice.Snapshot().Filters
		return rejected("alarms", slice.Fetch(ctx, filters))
	}
}

// SchedulesJob reloads report schedules without touching the delete flag.
func SchedulesJob(slice reportapp.ScheduledSlice) Job {
	return func(ctx context.Context) error {
		return rejected("schedules", slice.Refresh(ctx))
	}
}
