package charts

import "strconv"

// Aggregations selects the value card figures.
type Aggregations struct {
	Max     bool `json:"max"`
	Min     bool `json:"min"`
	Average bool `json:"average"`
}

// AggregationValues are the figures computed server-side. A nil field is missing.
type AggregationValues struct {
	Max     *float64 `json:"max"`
	Min     *float64 `json:"min"`
	Average *float64 `json:"average"`
}

// CardSensor is a sensor listed on a value card.
type CardSensor struct {
	SensorID   ID     `json:"sensorId"`
	SensorType string `json:"sensorType"`
}

// ValueCardData is the payload of a value card widget.
type ValueCardData struct {
	Title             string             `json:"title"`
	RTUs              []ID               `json:"rtus"`
	Sensors           []CardSensor       `json:"sensors"`
	Date              DateWindow         `json:"date"`
	Aggregations      Aggregations       `json:"aggregations"`
	AggregationValues *AggregationValues `json:"aggregationValues"`
}

// Figure is one rendered aggregation.
type Figure struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// ValueCard is the renderable model of a value card.
type ValueCard struct {
	Title   string       `json:"title,omitempty"`
	Date    DateWindow   `json:"date"`
	Sensors []CardSensor `json:"sensors"`
	Figures []Figure     `json:"figures"`
	NoData  bool         `json:"noData"`
}

// DeriveValueCard renders the selected aggregations. Any missing aggregation
// value turns the whole card into the no-data state.
func DeriveValueCard(data ValueCardData) ValueCard {
	card := ValueCard{Title: data.Title, Date: data.Date, Sensors: data.Sensors, Figures: []Figure{}}
	if card.Sensors == nil {
		card.Sensors = []CardSensor{}
	}
	v := data.AggregationValues
	if v == nil || v.Max == nil || v.Min == nil || v.Average == nil {
		card.NoData = true
		return card
	}
	add := func(enabled bool, name, label string, value float64) {
		if !enabled {
			return
		}
		card.Figures = append(card.Figures, Figure{
			Name:      name,
			Label:     label,
			Value:     value,
			Formatted: strconv.FormatFloat(value, 'f', 2, 64),
		})
	}
	add(data.Aggregations.Max, "max", "Max", *v.Max)
	add(data.Aggregations.Min, "min", "Min", *v.Min)
	add(data.Aggregations.Average, "average", "Average", *v.Average)
	return card
}

// SensorRow is one row of the sensor data table.
type SensorRow struct {
	SensorID  ID      `json:"sensorId"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// SensorTableData is the payload of a sensor data table widget.
type SensorTableData struct {
	Title           string      `json:"title"`
	RTUs            []ID        `json:"rtus"`
	Date            DateWindow  `json:"date"`
	SensorTableData []SensorRow `json:"sensorTableData"`
}

// Table is the renderable model of both table widgets.
type Table[R any] struct {
	Title  string     `json:"title,omitempty"`
	Date   DateWindow `json:"date"`
	Rows   []R        `json:"rows"`
	NoData bool       `json:"noData"`
}

// DeriveSensorTable passes the rows through.
func DeriveSensorTable(data SensorTableData) Table[SensorRow] {
	rows := data.SensorTableData
	if rows == nil {
		rows = []SensorRow{}
	}
	return Table[SensorRow]{Title: data.Title, Date: data.Date, Rows: rows, NoData: len(rows) == 0}
}

// AlarmRow is one alarm as sent in the alarm table payload.
type AlarmRow struct {
	AlarmID   int64  `json:"alarmId"`
	SensorID  []ID   `json:"sensorId"`
	Status    string `json:"status"`
	AlarmName string `json:"alarmName"`
}

// FlatAlarmRow is one (alarm, sensor) pair.
type FlatAlarmRow struct {
	AlarmID   int64  `json:"alarmId"`
	SensorID  ID     `json:"sensorId"`
	Status    string `json:"status"`
	AlarmName string `json:"alarmName"`
}

// AlarmTableData is the payload of an alarm table widget.
type AlarmTableData struct {
	Title          string     `json:"title"`
	RTUs           []ID       `json:"rtus"`
	Status         []string   `json:"status"`
	Severity       []string   `json:"severity"`
	Date           DateWindow `json:"date"`
	AlarmTableData []AlarmRow `json:"alarmTableData"`
}

// DeriveAlarmTable flattens alarms to one row per sensor.
func DeriveAlarmTable(data AlarmTableData) Table[FlatAlarmRow] {
	rows := []FlatAlarmRow{}
	for _, alarm := range data.AlarmTableData {
		for _, sensorID := range alarm.SensorID {
			rows = append(rows, FlatAlarmRow{
				AlarmID:   alarm.AlarmID,
				SensorID:  sensorID,
				Status:    alarm.Status,
				AlarmName: alarm.AlarmName,
			})
		}
	}
	return Table[FlatAlarmRow]{Title: data.Title, Date: data.Date, Rows: rows, NoData: len(rows) == 0}
}
