package charts

import (
	"fmt"
	"time"
)

const (
	KindLine   = "line"
	KindColumn = "column"
)

// XAxis is the plotted time span in epoch milliseconds.
type XAxis struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// LatestValue is the last in-window reading of a sensor.
type LatestValue struct {
	SensorType string  `json:"sensorType"`
	SensorID   string  `json:"sensorId"`
	Value      float64 `json:"value"`
	Timestamp  string  `json:"timestamp"`
	Color      string  `json:"color"`
	Unit       string  `json:"unit"`
}

// Chart is the renderable model of a time series widget.
type Chart struct {
	Kind          string        `json:"kind"`
	Title         string        `json:"title,omitempty"`
	Date          DateWindow    `json:"date"`
	XAxis         XAxis         `json:"xAxis"`
	YAxes         []Axis        `json:"yAxes"`
	Series        []Series      `json:"series"`
	PointStart    int64         `json:"pointStart,omitempty"`
	PointInterval int64         `json:"pointInterval,omitempty"`
	Latest        []LatestValue `json:"latest,omitempty"`
	NoData        bool          `json:"noData"`
	Dropped       int           `json:"dropped,omitempty"`
}

// Deriver turns widget payloads into chart models. It holds no state between
// calls; identical input yields identical output.
type Deriver struct {
	units Units
	loc   *time.Location
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithUnits replaces the unit table.
func WithUnits(units Units) Option {
	return func(d *Deriver) {
		if len(units) > 0 {
			d.units = units
		}
	}
}

// WithLocation sets the zone used for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(d *Deriver) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// NewDeriver constructs a deriver with the canonical units in UTC.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{units: DefaultUnits(), loc: time.UTC}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Units returns the unit table in use.
func (d *Deriver) Units() Units {
	return d.units
}

func (d *Deriver) window(w DateWindow) (time.Time, time.Time, error) {
	start, err := ParseTimestamp(w.StartDate, d.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate: %v", ErrInvalidWindow, err)
	}
	end, err := ParseTimestamp(w.EndDate, d.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate: %v", ErrInvalidWindow, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate before startDate", ErrInvalidWindow)
	}
	return start, end, nil
}

type reading struct {
	point Point
	at    time.Time
}

// readings parses a sensor's values, dropping the unparseable ones.
func (d *Deriver) readings(s Sensor) ([]reading, int) {
	out := make([]reading, 0, len(s.SensorValues))
	dropped := 0
	for _, v := range s.SensorValues {
		at, err := ParseTimestamp(v.Timestamp, d.loc)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, reading{point: Point{X: Millis(at), Y: v.Value}, at: at})
	}
	return out, dropped
}

func inWindow(rs []reading, start, end time.Time) []reading {
	out := rs[:0:0]
	for _, r := range rs {
		if r.at.Before(start) || r.at.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func points(rs []reading) []Point {
	out := make([]Point, len(rs))
	for i, r := range rs {
		out[i] = r.point
	}
	return out
}

// Line derives a line chart. Readings outside [startDate, endDate] are
// left out; sensors with nothing left contribute neither axis nor series.
// An endDate without a time of day includes that whole day.
func (d *Deriver) Line(data WidgetData) (Chart, error) {
	return d.lineLike(data, true, false)
}

// ValueAndChart derives a line chart plus the latest in-window value of
// every plotted sensor.
func (d *Deriver) ValueAndChart(data WidgetData) (Chart, error) {
	return d.lineLike(data, false, true)
}

func (d *Deriver) lineLike(data WidgetData, annotate, latest bool) (Chart, error) {
	start, end, err := d.window(data.Date)
	if err != nil {
		return Chart{}, err
	}
	if dateOnly(data.Date.EndDate) {
		end = endOfDay(end)
	}
	chart := Chart{
		Kind:   KindLine,
		Title:  data.Title,
		Date:   data.Date,
		XAxis:  XAxis{Min: Millis(start), Max: Millis(end)},
		Series: []Series{},
	}
	axes := newAxisSet(d.units)
	for _, sensor := range data.Sensors {
		rs, dropped := d.readings(sensor)
		chart.Dropped += dropped
		rs = inWindow(rs, start, end)
		if len(rs) == 0 {
			continue
		}
		idx := axes.assign(sensor)
		pts := points(rs)
		if annotate {
			pts = Annotate(pts, data.ShowValues)
		}
		chart.Series = append(chart.Series, Series{
			Name:     seriesName(sensor),
			Type:     KindLine,
			Color:    sensor.Color,
			YAxis:    idx,
			SensorID: string(sensor.SensorID),
			Data:     pts,
			Dropped:  dropped,
		})
		if latest {
			last := rs[len(rs)-1]
			chart.Latest = append(chart.Latest, LatestValue{
				SensorType: sensor.SensorType,
				SensorID:   string(sensor.SensorID),
				Value:      last.point.Y,
				Timestamp:  last.at.In(d.loc).Format(time.RFC3339),
				Color:      sensor.Color,
				Unit:       d.units.For(sensor.SensorType),
			})
		}
	}
	chart.YAxes = axes.axes
	chart.NoData = len(chart.Series) == 0
	return chart, nil
}

// Bar derives a column chart. Every series starts at the window start and
// advances by the whole window plus one day. When start and end fall on the
// same calendar day the x axis runs to 23:59:59.999 of that day.
func (d *Deriver) Bar(data WidgetData) (Chart, error) {
	start, end, err := d.window(data.Date)
	if err != nil {
		return Chart{}, err
	}
	axisEnd := end
	if sameDay(start, end) {
		axisEnd = endOfDay(end)
	}
	chart := Chart{
		Kind:          KindColumn,
		Title:         data.Title,
		Date:          data.Date,
		XAxis:         XAxis{Min: Millis(start), Max: Millis(axisEnd)},
		Series:        []Series{},
		PointStart:    Millis(start),
		PointInterval: Millis(end.Add(day)) - Millis(start),
	}
	axes := newAxisSet(d.units)
	for _, sensor := range data.Sensors {
		if len(sensor.SensorValues) == 0 {
			continue
		}
		rs, dropped := d.readings(sensor)
		chart.Dropped += dropped
		if len(rs) == 0 {
			continue
		}
		idx := axes.assign(sensor)
		chart.Series = append(chart.Series, Series{
			Name:     seriesName(sensor),
			Type:     KindColumn,
			Color:    sensor.Color,
			YAxis:    idx,
			SensorID: string(sensor.SensorID),
			Data:     Annotate(points(rs), data.ShowValues),
			Dropped:  dropped,
		})
	}
	chart.YAxes = axes.axes
	chart.NoData = len(chart.Series) == 0
	return chart, nil
}
