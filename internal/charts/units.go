package charts

import "strings"

// DefaultUnit applies to every sensor type missing from the table.
const DefaultUnit = "Pa"

// Units maps a sensor type to its display unit.
type Units map[string]string

// DefaultUnits returns the canonical unit table.
func DefaultUnits() Units {
	return Units{
		"Temperature": "°C",
		"Humidity":    "%",
		"Pressure":    DefaultUnit,
	}
}

// For returns the unit of sensorType.
func (u Units) For(sensorType string) string {
	if unit, ok := u[sensorType]; ok {
		return unit
	}
	return DefaultUnit
}

// Merge returns a copy of u overridden by other. Blank keys are ignored.
func (u Units) Merge(other map[string]string) Units {
	out := make(Units, len(u)+len(other))
	for k, v := range u {
		out[k] = v
	}
	for k, v := range other {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
