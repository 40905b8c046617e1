package layouts

import (
	"encoding/json"
	"strings"
)

// Widget types offered by the widget bundle.
const (
	WidgetTypeChart = "Chart"
	WidgetTypeTable = "Table"
	WidgetTypeCard  = "Card"
)

// Widget names the console knows how to derive.
const (
	WidgetLineChart       = "Line Chart"
	WidgetTimeSeriesChart = "Time Series Chart"
	WidgetBarChart        = "Bar Chart"
	WidgetValueAndChart   = "Value and Chart Card"
	WidgetValueCard       = "Value Card"
	WidgetSensorTable     = "Sensor Data Table"
	WidgetAlarmTable      = "Alarms Table"
)

// Widget is one slot of a layout.
type Widget struct {
	WidgetType string `json:"widgetType"`
	WidgetName string `json:"widgetName"`
}

// Validate checks that both fields are set.
func (w Widget) Validate() error {
	if strings.TrimSpace(w.WidgetType) == "" || strings.TrimSpace(w.WidgetName) == "" {
		return ErrInvalidWidget
	}
	return nil
}

// Summary is a layout row in the list view.
type Summary struct {
	ID         int64  `json:"id"`
	LayoutName string `json:"layoutName"`
	LayoutType string `json:"layoutType"`
	CreatedAt  string `json:"createdAt"`
}

// Layout is a named ordered list of widgets.
type Layout struct {
	ID         int64    `json:"id,omitempty"`
	LayoutName string   `json:"layoutName"`
	LayoutType string   `json:"layoutType"`
	CreatedAt  string   `json:"createdAt,omitempty"`
	Widgets    []Widget `json:"widgets"`
}

// Validate checks the layout before a write.
func (l Layout) Validate() error {
	if strings.TrimSpace(l.LayoutName) == "" {
		return ErrEmptyName
	}
	for _, w := range l.Widgets {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (l Layout) Clone() Layout {
	out := l
	out.Widgets = append([]Widget(nil), l.Widgets...)
	if out.Widgets == nil {
		out.Widgets = []Widget{}
	}
	return out
}

// WithWidget returns a copy with w appended.
func (l Layout) WithWidget(w Widget) Layout {
	out := l.Clone()
	out.Widgets = append(out.Widgets, w)
	return out
}

// WithoutWidget returns a copy with the widget at index removed.
func (l Layout) WithoutWidget(index int) (Layout, error) {
	if index < 0 || index >= len(l.Widgets) {
		return l, ErrWidgetIndex
	}
	out := l.Clone()
	out.Widgets = append(out.Widgets[:index], out.Widgets[index+1:]...)
	return out, nil
}

// Summary projects the layout onto its list row.
func (l Layout) Summary() Summary {
	return Summary{ID: l.ID, LayoutName: l.LayoutName, LayoutType: l.LayoutType, CreatedAt: l.CreatedAt}
}

// Filter narrows the layout list.
type Filter struct {
	LayoutType string `json:"layoutType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	LayoutName string `json:"layoutName"`
}

// Params returns the non-empty query parameters.
func (f Filter) Params() map[string]string {
	out := map[string]string{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	set("layoutType", f.LayoutType)
	set("layoutName", f.LayoutName)
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	return out
}

// SummaryList accepts the backend list either bare or wrapped in {"layouts": [...]}.
type SummaryList []Summary

// UnmarshalJSON implements json.Unmarshaler.
func (s *SummaryList) UnmarshalJSON(data []byte) error {
	var list []Summary
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var wrapped struct {
		Layouts []Summary `json:"layouts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*s = wrapped.Layouts
	return nil
}
