package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	alarms "monitoring-console/internal/alarms/domain"
)

// Alarms lists alarms. 204 yields an empty list.
func (c *Client) Alarms(ctx context.Context, filters alarms.Filters) ([]alarms.Alarm, error) {
	var out []alarms.Alarm
	_, err := c.doJSON(ctx, request{
		route:  "alarms.list",
		method: http.MethodGet,
		path:   "/api/alarms",
		query:  query(filters.Params()),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []alarms.Alarm{}
	}
	return out, nil
}

// SearchAlarms runs a free text alarm search.
func (c *Client) SearchAlarms(ctx context.Context, q string) ([]alarms.Alarm, error) {
	var out []alarms.Alarm
	_, err := c.doJSON(ctx, request{
		route:  "alarms.search",
		method: http.MethodGet,
		path:   "/api/alarms/search",
		query:  url.Values{"q": []string{q}},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []alarms.Alarm{}
	}
	return out, nil
}

// Alarm fetches one alarm.
func (c *Client) Alarm(ctx context.Context, id int64) (alarms.Alarm, error) {
	if id <= 0 {
		return alarms.Alarm{}, alarms.ErrMissingID
	}
	var out alarms.Alarm
	found, err := c.doJSON(ctx, request{
		route:  "alarms.get",
		method: http.MethodGet,
		path:   "/api/alarms/" + strconv.FormatInt(id, 10),
	}, &out)
	if err != nil {
		return alarms.Alarm{}, err
	}
	if !found {
		return alarms.Alarm{}, alarms.ErrNotFound
	}
	return out, nil
}

// UpdateAlarm sends a partial update. An answer without a body is reported
// as ErrNotConfirmed.
func (c *Client) UpdateAlarm(ctx context.Context, id int64, patch alarms.Patch) error {
	if id <= 0 {
		return alarms.ErrMissingID
	}
	if patch.Empty() {
		return alarms.ErrEmptyPatch
	}
	found, err := c.doJSON(ctx, request{
		route:  "alarms.update",
		method: http.MethodPut,
		path:   "/api/alarms/" + strconv.FormatInt(id, 10),
		body:   patch,
	}, nil)
	if err != nil {
		return err
	}
	if !found {
		return alarms.ErrNotConfirmed
	}
	return nil
}
