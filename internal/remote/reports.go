package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	reports "monitoring-console/internal/reports/domain"
)

type manualEnvelope struct {
	Reports []reports.ManualReport `json:"Manual_Reports"`
}

type automatedEnvelope struct {
	Reports []reports.AutomatedReport `json:"reports"`
}

// ManualReports lists manual reports, optionally filtered.
func (c *Client) ManualReports(ctx context.Context, filter reports.ManualFilter) ([]reports.ManualReport, error) {
	var out manualEnvelope
	_, err := c.doJSON(ctx, request{
		route:  "reports.manual.list",
		method: http.MethodGet,
		path:   "/manual-reports",
		query:  query(filter.Params()),
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out.Reports), nil
}

// SearchManualReports runs a free text search over manual reports.
func (c *Client) SearchManualReports(ctx context.Context, q string) ([]reports.ManualReport, error) {
	var out manualEnvelope
	_, err := c.doJSON(ctx, request{
		route:  "reports.manual.search",
		method: http.MethodGet,
		path:   "/manual-reports",
		query:  url.Values{"query": []string{q}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out.Reports), nil
}

// SaveManualReport creates a manual report from a layout.
func (c *Client) SaveManualReport(ctx context.Context, req reports.SaveRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out json.RawMessage
	_, err := c.doJSON(ctx, request{
		route:  "reports.manual.create",
		method: http.MethodPost,
		path:   "/manual-reports/create-report",
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LayoutNames lists the layout names known to the report generator.
func (c *Client) LayoutNames(ctx context.Context) ([]string, error) {
	var out []string
	if _, err := c.doJSON(ctx, request{route: "reports.manual.layouts", method: http.MethodGet, path: "/manual-reports/layouts"}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// AutomatedReports lists automated reports, optionally filtered.
func (c *Client) AutomatedReports(ctx context.Context, filter reports.AutomatedFilter) ([]reports.AutomatedReport, error) {
	var out automatedEnvelope
	_, err := c.doJSON(ctx, request{
		route:  "reports.automated.list",
		method: http.MethodGet,
		path:   "/api/automated-reports",
		query:  query(filter.Params()),
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out.Reports), nil
}

// SearchAutomatedReports runs a free text search over automated reports.
func (c *Client) SearchAutomatedReports(ctx context.Context, q string) ([]reports.AutomatedReport, error) {
	var out automatedEnvelope
	_, err := c.doJSON(ctx, request{
		route:  "reports.automated.search",
		method: http.MethodGet,
		path:   "/api/automated-reports/search",
		query:  url.Values{"q": []string{q}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out.Reports), nil
}

// AutomatedReport fetches one report with its widget payloads.
func (c *Client) AutomatedReport(ctx context.Context, id int64) (reports.Detail, error) {
	if id <= 0 {
		return reports.Detail{}, reports.ErrMissingID
	}
	var out reports.Detail
	found, err := c.doJSON(ctx, request{
		route:  "reports.automated.get",
		method: http.MethodGet,
		path:   "/api/automated-reports/" + strconv.FormatInt(id, 10),
	}, &out)
	if err != nil {
		return reports.Detail{}, err
	}
	if !found {
		return reports.Detail{}, reports.ErrNotFound
	}
	if out.ReportID == 0 {
		out.ReportID = id
	}
	if out.Layout.Widgets == nil {
		out.Layout.Widgets = []reports.Widget{}
	}
	return out, nil
}

// ScheduledReports lists every report schedule.
func (c *Client) ScheduledReports(ctx context.Context) ([]reports.ScheduledReport, error) {
	var out []reports.ScheduledReport
	if _, err := c.doJSON(ctx, request{route: "reports.scheduled.list", method: http.MethodGet, path: "/reports/all-schedules"}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DeleteSchedule removes a report schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	if id <= 0 {
		return reports.ErrMissingID
	}
	_, err := c.doJSON(ctx, request{
		route:  "reports.scheduled.delete",
		method: http.MethodDelete,
		path:   "/reports/" + strconv.FormatInt(id, 10),
	}, nil)
	return err
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
