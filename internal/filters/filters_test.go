package filters

import (
	"errors"
	"net/url"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestSetAlarmsClearingSeverityClearsBoth(t *testing.T) {
	current := url.Values{"severity": {"High"}, "status": {"Active"}, "page": {"2"}}
	next := SetAlarms(current, AlarmUpdate{Severity: strPtr(""), Status: strPtr("Active")})

	if next.Get("severity") != "" {
		t.Fatalf("expected severity cleared, got %q", next.Get("severity"))
	}
	// status is re-applied from the update after the joint clear.
	if next.Get("status") != "Active" {
		t.Fatalf("expected status Active, got %q", next.Get("status"))
	}
	if next.Get("page") != "2" {
		t.Fatalf("unrelated keys must survive")
	}
	if current.Get("severity") != "High" {
		t.Fatalf("input values must not be modified")
	}
}

func TestSetAlarmsClearOnlyDropsBoth(t *testing.T) {
	current := url.Values{"severity": {"High"}, "status": {"Active"}}
	next := SetAlarms(current, AlarmUpdate{Severity: strPtr("")})
	if next.Has("severity") || next.Has("status") {
		t.Fatalf("expected both keys removed, got %v", next)
	}
}

func TestSetAlarmsSettingStatusKeepsSeverity(t *testing.T) {
	next := SetAlarms(url.Values{}, AlarmUpdate{Status: strPtr("Closed")})
	if next.Get("status") != "Closed" {
		t.Fatalf("expected status Closed, got %q", next.Get("status"))
	}
	if next.Has("severity") {
		t.Fatalf("severity must stay untouched")
	}

	next = SetAlarms(url.Values{"severity": {"Low"}}, AlarmUpdate{Status: strPtr("Closed")})
	if next.Get("severity") != "Low" || next.Get("status") != "Closed" {
		t.Fatalf("unexpected values %v", next)
	}
}

func TestValidateAlarms(t *testing.T) {
	f := AlarmsFromQuery(url.Values{"severity": {"Extreme"}})
	if err := ValidateAlarms(f); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if err := ValidateAlarms(AlarmsFromQuery(url.Values{"status": {"Acknowledged"}})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRuleFiltersMerge(t *testing.T) {
	f := RuleFilters{Priority: "High", Status: "Active"}
	f = f.Merge(RuleUpdate{Status: strPtr(""), Tags: strPtr("boiler")})
	if f.Priority != "High" || f.Status != "" || f.Tags != "boiler" {
		t.Fatalf("unexpected filters %+v", f)
	}
	params := f.Params()
	if len(params) != 2 || params["tags"] != "boiler" {
		t.Fatalf("unexpected params %v", params)
	}
	if !(RuleFilters{}).Empty() {
		t.Fatalf("zero filters must be empty")
	}
}

func TestRulesFromQueryOnlyPresentKeys(t *testing.T) {
	u := RulesFromQuery(url.Values{"priority": {"Low"}, "status": {""}})
	if u.Priority == nil || *u.Priority != "Low" {
		t.Fatalf("expected priority")
	}
	if u.Status == nil || *u.Status != "" {
		t.Fatalf("expected explicit empty status")
	}
	if u.Tags != nil || u.RTUID != nil {
		t.Fatalf("absent keys must stay nil")
	}
}

func TestDateRangeValidate(t *testing.T) {
	if err := (DateRange{Start: "2024-02-01", End: "2024-01-01"}).Validate(); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected inverted range rejected, got %v", err)
	}
	if err := (DateRange{Start: "01/02/2024"}).Validate(); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected bad format rejected, got %v", err)
	}
	if err := (DateRange{Start: "2024-01-01", End: "2024-01-01"}).Validate(); err != nil {
		t.Fatalf("same day must be valid: %v", err)
	}
	if err := (DateRange{}).Validate(); err != nil {
		t.Fatalf("empty range must be valid: %v", err)
	}
}
