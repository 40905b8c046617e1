package reports

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ManualReport is a report generated on demand from a layout.
type ManualReport struct {
	ReportID          int64  `json:"report_id"`
	ReportType        string `json:"reportType"`
	ScheduleStatus    string `json:"scheduleStatus"`
	Description       string `json:"description"`
	GeneratedDateTime string `json:"generatedDateTime"`
}

// AutomatedReport is a report produced by a schedule.
type AutomatedReport struct {
	ID                int64  `json:"id"`
	ReportID          int64  `json:"reportId"`
	ReportType        string `json:"reportType"`
	Frequency         string `json:"frequency"`
	GeneratedDateTime string `json:"generatedDateTime"`
}

// ScheduledReport is an active or past report schedule.
type ScheduledReport struct {
	ReportID  int64  `json:"reportId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  bool   `json:"isActive"`
	Frequency string `json:"frequency"`
}

// Widget is one rendered widget of an automated report with its raw payload.
type Widget struct {
	WidgetID   json.RawMessage `json:"widgetId,omitempty"`
	WidgetName string          `json:"widgetName"`
	WidgetType string          `json:"widgetType"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Empty reports whether the widget carries no data (missing, null or {}).
func (w Widget) Empty() bool {
	data := bytes.TrimSpace(w.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		return len(obj) == 0
	}
	return false
}

// DetailLayout is the layout snapshot embedded in a report detail.
type DetailLayout struct {
	LayoutName string   `json:"layoutName"`
	LayoutType string   `json:"layoutType,omitempty"`
	Widgets    []Widget `json:"widgets"`
}

// Detail is the full automated report with widget payloads.
type Detail struct {
	ReportID          int64        `json:"reportId"`
	ReportType        string       `json:"reportType"`
	Frequency         string       `json:"frequency,omitempty"`
	GeneratedDateTime string       `json:"generatedDateTime,omitempty"`
	Layout            DetailLayout `json:"layout"`
}

// SaveRequest creates a manual report from a layout.
type SaveRequest struct {
	ReportType       string `json:"reportType"`
	CustomReportType string `json:"customReportType"`
	LayoutName       string `json:"layoutName"`
	Description      string `json:"description"`
}

// Validate checks the request before it is sent.
func (r SaveRequest) Validate() error {
	if strings.TrimSpace(r.ReportType) == "" && strings.TrimSpace(r.CustomReportType) == "" {
		return ErrMissingType
	}
	if strings.TrimSpace(r.LayoutName) == "" {
		return ErrMissingLayout
	}
	return nil
}

// ManualFilter narrows the manual report list.
type ManualFilter struct {
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	ReportType     string `json:"reportType,omitempty"`
	ScheduleStatus string `json:"scheduleStatus,omitempty"`
}

// Params returns the non-empty query parameters.
func (f ManualFilter) Params() map[string]string {
	return compact(map[string]string{
		"startDate":      f.StartDate,
		"endDate":        f.EndDate,
		"reportType":     f.ReportType,
		"scheduleStatus": f.ScheduleStatus,
	})
}

// AutomatedFilter narrows the automated report list.
type AutomatedFilter struct {
	Frequency  string `json:"frequency,omitempty"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	ReportType string `json:"reportType,omitempty"`
}

// Params returns the non-empty query parameters.
func (f AutomatedFilter) Params() map[string]string {
	return compact(map[string]string{
		"frequency":  f.Frequency,
		"startDate":  f.StartDate,
		"endDate":    f.EndDate,
		"reportType": f.ReportType,
	})
}

func compact(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}
