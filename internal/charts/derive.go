package charts

import (
	"bytes"
	"encoding/json"
	"fmt"

	layouts "monitoring-console/internal/layouts/domain"
)

// Result is the derived model of one widget.
type Result struct {
	Widget  string `json:"widgetName"`
	Model   any    `json:"model,omitempty"`
	NoData  bool   `json:"noData"`
	Dropped int    `json:"dropped,omitempty"`
}

// Derive selects the derivation by widget name and applies it to raw.
// A missing, null or empty payload yields the no-data state.
func (d *Deriver) Derive(widgetName string, raw json.RawMessage) (Result, error) {
	result := Result{Widget: widgetName}
	if !Known(widgetName) {
		return result, fmt.Errorf("%w: %q", ErrUnknownWidget, widgetName)
	}
	if emptyPayload(raw) {
		result.NoData = true
		return result, nil
	}

	switch widgetName {
	case layouts.WidgetLineChart, layouts.WidgetTimeSeriesChart, layouts.WidgetBarChart, layouts.WidgetValueAndChart:
		var data WidgetData
		if err := decode(raw, &data); err != nil {
			return result, err
		}
		var (
			chart Chart
			err   error
		)
		switch widgetName {
		case layouts.WidgetBarChart:
			chart, err = d.Bar(data)
		case layouts.WidgetValueAndChart:
			chart, err = d.ValueAndChart(data)
		default:
			chart, err = d.Line(data)
		}
		if err != nil {
			return result, err
		}
		result.Model, result.NoData, result.Dropped = chart, chart.NoData, chart.Dropped
	case layouts.WidgetValueCard:
		var data ValueCardData
		if err := decode(raw, &data); err != nil {
			return result, err
		}
		card := DeriveValueCard(data)
		result.Model, result.NoData = card, card.NoData
	case layouts.WidgetSensorTable:
		var data SensorTableData
		if err := decode(raw, &data); err != nil {
			return result, err
		}
		table := DeriveSensorTable(data)
		result.Model, result.NoData = table, table.NoData
	case layouts.WidgetAlarmTable:
		var data AlarmTableData
		if err := decode(raw, &data); err != nil {
			return result, err
		}
		table := DeriveAlarmTable(data)
		result.Model, result.NoData = table, table.NoData
	}
	return result, nil
}

// Known reports whether a derivation exists for widgetName.
func Known(widgetName string) bool {
	switch widgetName {
	case layouts.WidgetLineChart, layouts.WidgetTimeSeriesChart, layouts.WidgetBarChart,
		layouts.WidgetValueAndChart, layouts.WidgetValueCard, layouts.WidgetSensorTable, layouts.WidgetAlarmTable:
		return true
	default:
		return false
	}
}

func emptyPayload(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return len(obj) == 0
	}
	return false
}

func decode(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
