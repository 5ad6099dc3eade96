package anomaly

import "sensor-anomaly-service/internal/core/domain"

// Fixed operating envelope. Values outside it are flagged regardless of what
// the statistical model thinks.
const (
	minTemperature = 30.0
	maxTemperature = 60.0
	maxVibration   = 0.5
	minPressure    = 500.0
	maxPressure    = 2000.0
)

// EvaluateRules reports whether a reading breaks any fixed threshold.
// Temperature and pressure bounds are inclusive; vibration must be strictly
// positive and at most maxVibration.
func EvaluateRules(r domain.Reading) bool {
	if r.Temperature < minTemperature || r.Temperature > maxTemperature {
		return true
	}
	if r.Vibration <= 0 || r.Vibration > maxVibration {
		return true
	}
	if r.Pressure < minPressure || r.Pressure > maxPressure {
		return true
	}
	return false
}
