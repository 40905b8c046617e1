package filters

import (
	"net/url"
	"strings"
)

// RuleFilters are the rule list filters kept by the rules slice.
type RuleFilters struct {
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
	Tags     string `json:"tags,omitempty"`
	RTUID    string `json:"rtuId,omitempty"`
}

// RuleUpdate overlays RuleFilters. nil keeps the field, "" resets it.
type RuleUpdate struct {
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
	Tags     *string `json:"tags"`
	RTUID    *string `json:"rtuId"`
}

// Merge returns f with every field present in u applied.
func (f RuleFilters) Merge(u RuleUpdate) RuleFilters {
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&f.Priority, u.Priority)
	apply(&f.Status, u.Status)
	apply(&f.Tags, u.Tags)
	apply(&f.RTUID, u.RTUID)
	return f
}

// Empty reports whether no filter is set.
func (f RuleFilters) Empty() bool {
	return f == RuleFilters{}
}

// Params returns the non-empty query parameters.
func (f RuleFilters) Params() map[string]string {
	out := map[string]string{}
	if f.Priority != "" {
		out["priority"] = f.Priority
	}
	if f.Status != "" {
		out["status"] = f.Status
	}
	if f.Tags != "" {
		out["tags"] = f.Tags
	}
	if f.RTUID != "" {
		out["rtuId"] = f.RTUID
	}
	return out
}

// RulesFromQuery builds an update from the keys present in values.
func RulesFromQuery(values url.Values) RuleUpdate {
	pick := func(key string) *string {
		if !values.Has(key) {
			return nil
		}
		v := values.Get(key)
		return &v
	}
	return RuleUpdate{
		Priority: pick("priority"),
		Status:   pick("status"),
		Tags:     pick("tags"),
		RTUID:    pick("rtuId"),
	}
}

// Any reports whether the update touches at least one field.
func (u RuleUpdate) Any() bool {
	return u.Priority != nil || u.Status != nil || u.Tags != nil || u.RTUID != nil
}
