package charts

// Axis is one y axis of a chart.
type Axis struct {
	Index    int    `json:"index"`
	Type     string `json:"sensorType"`
	Title    string `json:"title"`
	Unit     string `json:"unit"`
	Color    string `json:"color"`
	Opposite bool   `json:"opposite"`
}

// axisSet assigns one axis per sensor type in order of first appearance.
type axisSet struct {
	units  Units
	byType map[string]int
	axes   []Axis
}

func newAxisSet(units Units) *axisSet {
	return &axisSet{units: units, byType: map[string]int{}, axes: []Axis{}}
}

// assign returns the axis index of the sensor type, creating it when the
// type is new. The first sensor of a type decides its color and side.
func (a *axisSet) assign(s Sensor) int {
	if idx, ok := a.byType[s.SensorType]; ok {
		return idx
	}
	idx := len(a.axes)
	unit := a.units.For(s.SensorType)
	a.byType[s.SensorType] = idx
	a.axes = append(a.axes, Axis{
		Index:    idx,
		Type:     s.SensorType,
		Title:    s.SensorType + " (" + unit + ")",
		Unit:     unit,
		Color:    s.Color,
		Opposite: s.YAxis == "right",
	})
	return idx
}
