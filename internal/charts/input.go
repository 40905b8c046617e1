package charts

import (
	"bytes"
	"encoding/json"
)

// ID accepts JSON strings and numbers.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

// SensorValue is one raw reading.
type SensorValue struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Sensor is one plotted sensor with its readings.
type Sensor struct {
	SensorType   string        `json:"sensorType"`
	SensorID     ID            `json:"sensorId"`
	YAxis        string        `json:"yAxis"`
	Color        string        `json:"color"`
	SensorValues []SensorValue `json:"sensorValues"`
}

// DateWindow is the requested reporting window.
type DateWindow struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ShowValues selects the min/max labels.
type ShowValues struct {
	ShowMax bool `json:"showMax"`
	ShowMin bool `json:"showMin"`
}

// WidgetData is the payload of the chart widgets.
type WidgetData struct {
	Title      string     `json:"title"`
	RTUs       []ID       `json:"rtus"`
	Sensors    []Sensor   `json:"sensors"`
	Date       DateWindow `json:"date"`
	ShowValues ShowValues `json:"showValues"`
}
