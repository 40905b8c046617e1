package filters

import (
	"fmt"
	"net/url"
	"strings"

	alarms "monitoring-console/internal/alarms/domain"
)

const (
	keySeverity = "severity"
	keyStatus   = "status"
)

// AlarmUpdate is a change to the alarm filters. A nil field is left alone,
// a pointer to "" clears it.
type AlarmUpdate struct {
	Severity *string `json:"severity,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// AlarmsFromQuery reads the alarm filters persisted in the query string.
func AlarmsFromQuery(values url.Values) alarms.Filters {
	return alarms.Filters{
		Severity: strings.TrimSpace(values.Get(keySeverity)),
		Status:   strings.TrimSpace(values.Get(keyStatus)),
	}
}

// ValidateAlarms rejects severities and statuses the backend does not know.
func ValidateAlarms(f alarms.Filters) error {
	if f.Severity != "" && !alarms.Severity(f.Severity).Valid() {
		return fmt.Errorf("%w: severity %q", ErrInvalidFilter, f.Severity)
	}
	if f.Status != "" && !alarms.Status(f.Status).Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
	}
	return nil
}

// SetAlarms applies update to the query string and returns the new values;
// the input is not modified. Clearing either key drops both, so a partial
// filter is never persisted. Non-empty values are then set one by one.
func SetAlarms(values url.Values, update AlarmUpdate) url.Values {
	next := cloneValues(values)
	if isCleared(update.Severity) || isCleared(update.Status) {
		next.Del(keySeverity)
		next.Del(keyStatus)
	}
	if update.Severity != nil && *update.Severity != "" {
		next.Set(keySeverity, *update.Severity)
	}
	if update.Status != nil && *update.Status != "" {
		next.Set(keyStatus, *update.Status)
	}
	return next
}

func isCleared(v *string) bool {
	return v != nil && *v == ""
}

func cloneValues(values url.Values) url.Values {
	next := make(url.Values, len(values))
	for k, v := range values {
		next[k] = append([]string(nil), v...)
	}
	return next
}
