package charts

import "strconv"

// Point is one plotted reading. X is epoch milliseconds.
type Point struct {
	X     int64   `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// Series is the plotted readings of one sensor.
type Series struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Color    string  `json:"color"`
	YAxis    int     `json:"yAxis"`
	SensorID string  `json:"sensorId"`
	Data     []Point `json:"data"`
	Dropped  int     `json:"dropped,omitempty"`
}

func seriesName(s Sensor) string {
	return s.SensorType + " - " + string(s.SensorID)
}

// Extremes returns the indexes of the minimum and maximum points. The first
// occurrence wins on ties. Both are -1 for an empty slice.
func Extremes(points []Point) (minIdx, maxIdx int) {
	if len(points) == 0 {
		return -1, -1
	}
	minIdx, maxIdx = 0, 0
	for i := 1; i < len(points); i++ {
		if points[i].Y < points[minIdx].Y {
			minIdx = i
		}
		if points[i].Y > points[maxIdx].Y {
			maxIdx = i
		}
	}
	return minIdx, maxIdx
}

// Annotate labels the extreme points selected by show. When one point is both
// minimum and maximum it carries the Min label.
func Annotate(points []Point, show ShowValues) []Point {
	if !show.ShowMin && !show.ShowMax {
		return points
	}
	minIdx, maxIdx := Extremes(points)
	if minIdx < 0 {
		return points
	}
	if show.ShowMax {
		points[maxIdx].Label = "Max: " + formatValue(points[maxIdx].Y)
	}
	if show.ShowMin {
		points[minIdx].Label = "Min: " + formatValue(points[minIdx].Y)
	}
	return points
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
