package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	rules "monitoring-console/internal/rules/domain"
)

// Rules lists every rule.
func (c *Client) Rules(ctx context.Context) ([]rules.Rule, error) {
	var out ruleList
	if _, err := c.doJSON(ctx, request{route: "rules.list", method: http.MethodGet, path: "/api/rules"}, &out); err != nil {
		return nil, err
	}
	return rules.FromAPIList(out), nil
}

// FilterRules lists rules narrowed by priority, status, tags and rtuId.
func (c *Client) FilterRules(ctx context.Context, params map[string]string) ([]rules.Rule, error) {
	var out ruleList
	_, err := c.doJSON(ctx, request{
		route:  "rules.filter",
		method: http.MethodGet,
		path:   "/api/rules/filter",
		query:  query(params),
	}, &out)
	if err != nil {
		return nil, err
	}
	return rules.FromAPIList(out), nil
}

// SearchRules searches by tags or rule id.
func (c *Client) SearchRules(ctx context.Context, searchType rules.SearchType, value string) ([]rules.Rule, error) {
	if !searchType.Valid() {
		return nil, rules.ErrInvalidSearch
	}
	var out ruleList
	_, err := c.doJSON(ctx, request{
		route:  "rules.search",
		method: http.MethodGet,
		path:   "/api/rules/search",
		query:  url.Values{string(searchType): []string{value}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return rules.FromAPIList(out), nil
}

// Rule fetches one rule.
func (c *Client) Rule(ctx context.Context, id int64) (rules.Rule, error) {
	if id <= 0 {
		return rules.Rule{}, rules.ErrMissingID
	}
	var out rules.APIRule
	found, err := c.doJSON(ctx, request{
		route:  "rules.get",
		method: http.MethodGet,
		path:   "/api/rules/" + strconv.FormatInt(id, 10),
	}, &out)
	if err != nil {
		return rules.Rule{}, err
	}
	if !found {
		return rules.Rule{}, rules.ErrNotFound
	}
	return rules.FromAPI(out), nil
}

// CreateRule creates a rule and returns the stored version.
func (c *Client) CreateRule(ctx context.Context, rule rules.Rule) (rules.Rule, error) {
	payload, err := rules.NewWriteRequest(rule)
	if err != nil {
		return rules.Rule{}, err
	}
	payload.RuleID = 0
	var out rules.APIRule
	found, err := c.doJSON(ctx, request{route: "rules.create", method: http.MethodPost, path: "/api/rules", body: payload}, &out)
	if err != nil {
		return rules.Rule{}, err
	}
	if !found {
		return rule, nil
	}
	return rules.FromAPI(out), nil
}

// UpdateRule replaces a rule and returns the stored version.
func (c *Client) UpdateRule(ctx context.Context, rule rules.Rule) (rules.Rule, error) {
	if rule.RuleID <= 0 {
		return rules.Rule{}, rules.ErrMissingID
	}
	payload, err := rules.NewWriteRequest(rule)
	if err != nil {
		return rules.Rule{}, err
	}
	var out rules.APIRule
	found, err := c.doJSON(ctx, request{
		route:  "rules.update",
		method: http.MethodPut,
		path:   "/api/rules/" + strconv.FormatInt(rule.RuleID, 10),
		body:   payload,
	}, &out)
	if err != nil {
		return rules.Rule{}, err
	}
	if !found {
		return rule, nil
	}
	updated := rules.FromAPI(out)
	if updated.RuleID == 0 {
		updated.RuleID = rule.RuleID
	}
	return updated, nil
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, id int64) error {
	if id <= 0 {
		return rules.ErrMissingID
	}
	_, err := c.doJSON(ctx, request{
		route:  "rules.delete",
		method: http.MethodDelete,
		path:   "/api/rules/" + strconv.FormatInt(id, 10),
	}, nil)
	return err
}

// RTUs lists remote terminal units with their sensors.
func (c *Client) RTUs(ctx context.Context) ([]rules.RTU, error) {
	var out []rules.RTU
	if _, err := c.doJSON(ctx, request{route: "rtu.list", method: http.MethodGet, path: "/api/rtu"}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []rules.RTU{}
	}
	return out, nil
}

// ruleList accepts a bare array or one wrapped under data, rules or results.
type ruleList []rules.APIRule

func (l *ruleList) UnmarshalJSON(data []byte) error {
	var list []rules.APIRule
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var wrapped struct {
		Data    []rules.APIRule `json:"data"`
		Rules   []rules.APIRule `json:"rules"`
		Results []rules.APIRule `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.Data != nil:
		*l = wrapped.Data
	case wrapped.Rules != nil:
		*l = wrapped.Rules
	default:
		*l = wrapped.Results
	}
	return nil
}
