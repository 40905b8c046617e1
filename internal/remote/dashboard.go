package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	dashboard "monitoring-console/internal/dashboard/domain"
	"monitoring-console/internal/observability/metrics"
)

// AlarmsSummary fetches alarm counters.
func (c *Client) AlarmsSummary(ctx context.Context) (dashboard.AlarmsSummary, error) {
	var out dashboard.AlarmsSummary
	err := c.getCached(ctx, "dashboard.alarms", "/api/dashboard/alarms-summary", &out)
	return out, err
}

// RulesSummary fetches rule counters.
func (c *Client) RulesSummary(ctx context.Context) (dashboard.RulesSummary, error) {
	var out dashboard.RulesSummary
	err := c.getCached(ctx, "dashboard.rules", "/api/dashboard/rules-summary", &out)
	return out, err
}

// ReportsSummary fetches report counters.
func (c *Client) ReportsSummary(ctx context.Context) (dashboard.ReportsSummary, error) {
	var out dashboard.ReportsSummary
	err := c.getCached(ctx, "dashboard.reports", "/api/dashboard/reports-summary", &out)
	return out, err
}

func (c *Client) getCached(ctx context.Context, route, path string, out any) error {
	if c.cache != nil {
		raw, ok, err := c.cache.Get(ctx, route)
		if err != nil {
			c.logger.Warn().Err(err).Str("route", route).Msg("summary cache read failed")
		}
		if ok {
			if err := json.Unmarshal(raw, out); err == nil {
				metrics.IncCacheLookup(true)
				return nil
			}
		}
		metrics.IncCacheLookup(false)
	}

	var raw json.RawMessage
	found, err := c.doJSON(ctx, request{route: route, method: http.MethodGet, path: path}, &raw)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("remote: %s: empty summary", path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, route, raw, c.cacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("route", route).Msg("summary cache write failed")
		}
	}
	return nil
}
