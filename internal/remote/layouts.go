package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	layouts "monitoring-console/internal/layouts/domain"
)

// Layouts lists layout rows.
func (c *Client) Layouts(ctx context.Context) ([]layouts.Summary, error) {
	var out layouts.SummaryList
	if _, err := c.doJSON(ctx, request{route: "layouts.list", method: http.MethodGet, path: "/api/layouts"}, &out); err != nil {
		return nil, err
	}
	return nonNil([]layouts.Summary(out)), nil
}

// FilterLayouts lists layouts narrowed by type, name and creation window.
func (c *Client) FilterLayouts(ctx context.Context, filter layouts.Filter) ([]layouts.Summary, error) {
	var out layouts.SummaryList
	_, err := c.doJSON(ctx, request{
		route:  "layouts.filter",
		method: http.MethodGet,
		path:   "/api/layouts/filters",
		query:  query(filter.Params()),
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil([]layouts.Summary(out)), nil
}

// SearchLayouts searches layouts by name.
func (c *Client) SearchLayouts(ctx context.Context, q string) ([]layouts.Summary, error) {
	var out layouts.SummaryList
	_, err := c.doJSON(ctx, request{
		route:  "layouts.search",
		method: http.MethodGet,
		path:   "/api/layouts/search",
		query:  url.Values{"q": []string{q}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil([]layouts.Summary(out)), nil
}

// Layout fetches one layout with its widgets.
func (c *Client) Layout(ctx context.Context, id int64) (layouts.Layout, error) {
	if id <= 0 {
		return layouts.Layout{}, layouts.ErrMissingID
	}
	var out layouts.Layout
	found, err := c.doJSON(ctx, request{
		route:  "layouts.get",
		method: http.MethodGet,
		path:   "/api/layouts/" + strconv.FormatInt(id, 10),
	}, &out)
	if err != nil {
		return layouts.Layout{}, err
	}
	if !found {
		return layouts.Layout{}, layouts.ErrNotFound
	}
	if out.ID == 0 {
		out.ID = id
	}
	return out.Clone(), nil
}

// CreateLayout stores a new layout and returns the server copy.
func (c *Client) CreateLayout(ctx context.Context, layout layouts.Layout) (layouts.Layout, error) {
	if err := layout.Validate(); err != nil {
		return layouts.Layout{}, err
	}
	payload := layout.Clone()
	payload.ID = 0
	payload.CreatedAt = ""
	var out layouts.Layout
	found, err := c.doJSON(ctx, request{route: "layouts.create", method: http.MethodPost, path: "/api/layouts", body: payload}, &out)
	if err != nil {
		return layouts.Layout{}, err
	}
	if !found {
		return payload, nil
	}
	return out.Clone(), nil
}

// UpdateLayout replaces a layout and returns the server copy.
func (c *Client) UpdateLayout(ctx context.Context, id int64, layout layouts.Layout) (layouts.Layout, error) {
	if id <= 0 {
		return layouts.Layout{}, layouts.ErrMissingID
	}
	if err := layout.Validate(); err != nil {
		return layouts.Layout{}, err
	}
	var out layouts.Layout
	found, err := c.doJSON(ctx, request{
		route:  "layouts.update",
		method: http.MethodPut,
		path:   "/api/layouts/" + strconv.FormatInt(id, 10),
		body:   layout.Clone(),
	}, &out)
	if err != nil {
		return layouts.Layout{}, err
	}
	if !found {
		out = layout
	}
	if out.ID == 0 {
		out.ID = id
	}
	return out.Clone(), nil
}
