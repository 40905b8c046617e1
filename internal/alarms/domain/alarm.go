package alarms

import (
	"bytes"
	"encoding/json"
)

// Severity of an alarm.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
)

// Valid returns true when severity is supported.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh:
		return true
	default:
		return false
	}
}

// Status of an alarm.
type Status string

const (
	StatusActive       Status = "Active"
	StatusClosed       Status = "Closed"
	StatusAcknowledged Status = "Acknowledged"
)

// Valid returns true when status is supported.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusClosed, StatusAcknowledged:
		return true
	default:
		return false
	}
}

// NotAvailable is the backend sentinel for an unset acknowledgement field.
const NotAvailable = "NA"

// NullableString decodes "NA", "" and null as absent and encodes absent as "NA".
type NullableString struct {
	Value string
	Valid bool
}

// Some wraps a present value.
func Some(value string) NullableString {
	if value == "" || value == NotAvailable {
		return NullableString{}
	}
	return NullableString{Value: value, Valid: true}
}

// String returns the value or the sentinel.
func (n NullableString) String() string {
	if !n.Valid {
		return NotAvailable
	}
	return n.Value
}

// MarshalJSON implements json.Marshaler.
func (n NullableString) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullableString{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Some(raw)
	return nil
}

// Alarm is an alarm raised server-side when a rule triggers.
type Alarm struct {
	AlarmID        int64          `json:"alarmId"`
	CreatedAt      string         `json:"createdAt"`
	AlarmName      string         `json:"alarmName"`
	SensorID       []string       `json:"sensorId"`
	RuleID         int64          `json:"ruleId"`
	Severity       Severity       `json:"severity"`
	Type           []string       `json:"type"`
	Status         Status         `json:"status"`
	AcknowledgedBy NullableString `json:"acknowledgedBy"`
	AcknowledgedAt NullableString `json:"acknowledgedAt"`
	Description    string         `json:"description"`
	Tags           []string       `json:"tags"`
}

// Patch is a partial update accepted by the backend.
type Patch struct {
	Status      *Status `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the patch carries no field.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Description == nil
}

// Filters are the query parameters of an alarm listing.
type Filters struct {
	Severity string `json:"severity,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Params returns only the non-empty keys.
func (f Filters) Params() map[string]string {
	params := make(map[string]string, 2)
	if f.Severity != "" {
		params["severity"] = f.Severity
	}
	if f.Status != "" {
		params["status"] = f.Status
	}
	return params
}
