package charts

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	dashboard "monitoring-console/internal/dashboard/domain"
)

func sensor(sensorType, id string, values ...SensorValue) Sensor {
	return Sensor{SensorType: sensorType, SensorID: ID(id), Color: "#123456", SensorValues: values}
}

func TestAxisAssignmentByFirstSeenType(t *testing.T) {
	d := NewDeriver()
	data := WidgetData{
		Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-03"},
		Sensors: []Sensor{
			sensor("Temperature", "T1", SensorValue{"2024-01-01T10:00", 20}),
			sensor("Temperature", "T2", SensorValue{"2024-01-01T11:00", 21}),
			sensor("Humidity", "H1", SensorValue{"2024-01-01T12:00", 40}),
		},
	}
	chart, err := d.Bar(data)
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	if len(chart.Series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(chart.Series))
	}
	if chart.Series[0].YAxis != 0 || chart.Series[1].YAxis != 0 {
		t.Fatalf("same type must share axis 0, got %d and %d", chart.Series[0].YAxis, chart.Series[1].YAxis)
	}
	if chart.Series[2].YAxis != 1 {
		t.Fatalf("new type must get axis 1, got %d", chart.Series[2].YAxis)
	}
	if len(chart.YAxes) != 2 || chart.YAxes[0].Title != "Temperature (°C)" || chart.YAxes[1].Title != "Humidity (%)" {
		t.Fatalf("unexpected axes %+v", chart.YAxes)
	}
}

func TestAxisOppositeAndDefaultUnit(t *testing.T) {
	d := NewDeriver()
	s := sensor("Vibration", "V1", SensorValue{"2024-01-01T10:00:00", 1})
	s.YAxis = "right"
	chart, err := d.Bar(WidgetData{Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-01"}, Sensors: []Sensor{s}})
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	if !chart.YAxes[0].Opposite || chart.YAxes[0].Unit != "Pa" {
		t.Fatalf("unexpected axis %+v", chart.YAxes[0])
	}
}

func TestMinMaxLabels(t *testing.T) {
	pts := []Point{{X: 1, Y: 5}, {X: 2, Y: 9}, {X: 3, Y: 1}}
	pts = Annotate(pts, ShowValues{ShowMin: true, ShowMax: true})
	if pts[0].Label != "" {
		t.Fatalf("unexpected label on first point: %q", pts[0].Label)
	}
	if pts[1].Label != "Max: 9" {
		t.Fatalf("expected Max: 9, got %q", pts[1].Label)
	}
	if pts[2].Label != "Min: 1" {
		t.Fatalf("expected Min: 1, got %q", pts[2].Label)
	}
}

func TestExtremesFirstOccurrenceWins(t *testing.T) {
	minIdx, maxIdx := Extremes([]Point{{Y: 3}, {Y: 1}, {Y: 7}, {Y: 1}, {Y: 7}})
	if minIdx != 1 || maxIdx != 2 {
		t.Fatalf("expected first occurrences 1 and 2, got %d and %d", minIdx, maxIdx)
	}
}

func TestSinglePointCarriesMinLabel(t *testing.T) {
	pts := Annotate([]Point{{X: 1, Y: 4}}, ShowValues{ShowMin: true, ShowMax: true})
	if pts[0].Label != "Min: 4" {
		t.Fatalf("expected Min label, got %q", pts[0].Label)
	}
}

func TestLabelsRespectFlags(t *testing.T) {
	pts := Annotate([]Point{{X: 1, Y: 5}, {X: 2, Y: 9}}, ShowValues{ShowMax: true})
	if pts[0].Label != "" || pts[1].Label != "Max: 9" {
		t.Fatalf("unexpected labels %+v", pts)
	}
}

func TestBarSingleDayWindowSpansWholeDay(t *testing.T) {
	d := NewDeriver()
	chart, err := d.Bar(WidgetData{Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-01"}})
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if chart.XAxis.Min != start.UnixMilli() || chart.XAxis.Max != end.UnixMilli() {
		t.Fatalf("unexpected span %d..%d", chart.XAxis.Min, chart.XAxis.Max)
	}
	if chart.PointStart != start.UnixMilli() || chart.PointInterval != int64(24*time.Hour/time.Millisecond) {
		t.Fatalf("unexpected bucketing start=%d interval=%d", chart.PointStart, chart.PointInterval)
	}
}

func TestBarMultiDayInterval(t *testing.T) {
	d := NewDeriver()
	chart, err := d.Bar(WidgetData{Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-03"}})
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	if chart.PointInterval != int64(3*24*time.Hour/time.Millisecond) {
		t.Fatalf("expected three day interval, got %d", chart.PointInterval)
	}
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC).UnixMilli()
	if chart.XAxis.Max != want {
		t.Fatalf("multi day end must not be extended, got %d", chart.XAxis.Max)
	}
}

func TestAllSensorsEmptyYieldsNoData(t *testing.T) {
	d := NewDeriver()
	data := WidgetData{
		Date:    DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-02"},
		Sensors: []Sensor{sensor("Temperature", "T1"), sensor("Humidity", "H1")},
	}
	for name, derive := range map[string]func(WidgetData) (Chart, error){
		"bar":  d.Bar,
		"line": d.Line,
		"vac":  d.ValueAndChart,
	} {
		chart, err := derive(data)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(chart.Series) != 0 || len(chart.YAxes) != 0 || !chart.NoData {
			t.Fatalf("%s: expected no data, got %+v", name, chart)
		}
	}
}

func TestLineFiltersToWindowAndDropsBadTimestamps(t *testing.T) {
	d := NewDeriver()
	data := WidgetData{
		Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-02"},
		Sensors: []Sensor{
			sensor("Pressure", "P1",
				SensorValue{"2023-12-31T23:00", 1},
				SensorValue{"2024-01-01T06:00", 2},
				SensorValue{"not a time", 3},
				SensorValue{"2024-01-01T18:30:00", 4},
				SensorValue{"2024-01-03T00:00", 5},
			),
		},
	}
	chart, err := d.Line(data)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if len(chart.Series) != 1 || len(chart.Series[0].Data) != 2 {
		t.Fatalf("expected 2 in-window points, got %+v", chart.Series)
	}
	if chart.Dropped != 1 || chart.Series[0].Dropped != 1 {
		t.Fatalf("expected one dropped point, got %d", chart.Dropped)
	}
}

func TestLineSingleDayWindowKeepsThatDay(t *testing.T) {
	d := NewDeriver()
	data := WidgetData{
		Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-01"},
		Sensors: []Sensor{
			sensor("Temperature", "T1",
				SensorValue{"2024-01-01T08:00", 20},
				SensorValue{"2024-01-01T12:00", 22},
				SensorValue{"2024-01-02T00:00", 30},
			),
		},
	}
	chart, err := d.Line(data)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if chart.NoData || len(chart.Series) != 1 || len(chart.Series[0].Data) != 2 {
		t.Fatalf("expected both readings of the day, got %+v", chart.Series)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wantMax := start.Add(day - time.Millisecond).UnixMilli()
	if chart.XAxis.Min != start.UnixMilli() || chart.XAxis.Max != wantMax {
		t.Fatalf("unexpected x axis %+v", chart.XAxis)
	}

	data.Date.EndDate = "2024-01-01T10:00"
	chart, err = d.Line(data)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if len(chart.Series) != 1 || len(chart.Series[0].Data) != 1 {
		t.Fatalf("explicit end time must bound the window, got %+v", chart.Series)
	}
}

func TestValueAndChartLatest(t *testing.T) {
	d := NewDeriver()
	data := WidgetData{
		Date: DateWindow{StartDate: "2024-01-01", EndDate: "2024-01-02"},
		Sensors: []Sensor{
			sensor("Humidity", "H1", SensorValue{"2024-01-01T01:00", 30}, SensorValue{"2024-01-01T02:00", 35}, SensorValue{"2024-01-05T02:00", 99}),
		},
	}
	chart, err := d.ValueAndChart(data)
	if err != nil {
		t.Fatalf("value and chart: %v", err)
	}
	if len(chart.Latest) != 1 || chart.Latest[0].Value != 35 || chart.Latest[0].Unit != "%" {
		t.Fatalf("unexpected latest %+v", chart.Latest)
	}
	for _, p := range chart.Series[0].Data {
		if p.Label != "" {
			t.Fatalf("value and chart must not label points")
		}
	}
}

func TestInvalidWindow(t *testing.T) {
	d := NewDeriver()
	if _, err := d.Line(WidgetData{Date: DateWindow{StartDate: "x", EndDate: "2024-01-01"}}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := d.Bar(WidgetData{Date: DateWindow{StartDate: "2024-01-05", EndDate: "2024-01-01"}}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for inverted window, got %v", err)
	}
}

func TestUnitsOverride(t *testing.T) {
	d := NewDeriver(WithUnits(DefaultUnits().Merge(map[string]string{"Pressure": "atm"})))
	if d.Units().For("Pressure") != "atm" || d.Units().For("Temperature") != "°C" {
		t.Fatalf("unexpected units %v", d.Units())
	}
}

func TestValueCardNoDataWhenAggregationMissing(t *testing.T) {
	var data ValueCardData
	raw := `{"title":"Boiler","aggregations":{"max":true,"min":false,"average":true},"aggregationValues":{"max":10,"min":null,"average":5}}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if card := DeriveValueCard(data); !card.NoData {
		t.Fatalf("expected no data")
	}

	raw = `{"aggregations":{"max":true,"min":false,"average":true},"aggregationValues":{"max":10,"min":1,"average":5.5}}`
	data = ValueCardData{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	card := DeriveValueCard(data)
	if card.NoData || len(card.Figures) != 2 {
		t.Fatalf("unexpected card %+v", card)
	}
	if card.Figures[0].Formatted != "10.00" || card.Figures[1].Formatted != "5.50" {
		t.Fatalf("unexpected figures %+v", card.Figures)
	}
}

func TestAlarmTableFlattens(t *testing.T) {
	table := DeriveAlarmTable(AlarmTableData{AlarmTableData: []AlarmRow{
		{AlarmID: 1, SensorID: []ID{"S1", "S2"}, Status: "Active", AlarmName: "A"},
		{AlarmID: 2, SensorID: nil, Status: "Closed", AlarmName: "B"},
	}})
	if len(table.Rows) != 2 || table.Rows[1].SensorID != "S2" || table.NoData {
		t.Fatalf("unexpected rows %+v", table.Rows)
	}
	if empty := DeriveSensorTable(SensorTableData{}); !empty.NoData || empty.Rows == nil {
		t.Fatalf("expected empty sensor table in no-data state")
	}
}

func TestDeriveDispatch(t *testing.T) {
	d := NewDeriver()
	if _, err := d.Derive("Pie Chart", json.RawMessage(`{}`)); !errors.Is(err, ErrUnknownWidget) {
		t.Fatalf("expected ErrUnknownWidget, got %v", err)
	}
	res, err := d.Derive("Bar Chart", json.RawMessage(`{}`))
	if err != nil || !res.NoData {
		t.Fatalf("expected no data for empty payload, got %+v %v", res, err)
	}
	if _, err := d.Derive("Line Chart", json.RawMessage(`[1,2]`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	res, err = d.Derive("Time Series Chart", json.RawMessage(`{"date":{"startDate":"2024-01-01","endDate":"2024-01-02"},"sensors":[{"sensorType":"Temperature","sensorId":7,"sensorValues":[{"timestamp":"2024-01-01T05:00","value":3}]}]}`))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	chart, ok := res.Model.(Chart)
	if !ok || res.NoData || chart.Series[0].Name != "Temperature - 7" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDashboardCharts(t *testing.T) {
	var summary dashboard.ReportsSummary
	if err := json.Unmarshal([]byte(`{"chartInfo":{"manual":4,"cheduled":6,"total":10}}`), &summary); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	chart := ReportsChart(&summary)
	if chart.Values[0] != 4 || chart.Values[1] != 6 {
		t.Fatalf("unexpected values %v", chart.Values)
	}
	if empty := AlarmsChart(nil); len(empty.Values) != 3 || empty.Values[0] != 0 {
		t.Fatalf("nil summary must chart zeros")
	}
}
