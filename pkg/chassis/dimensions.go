package chassis

import "math"

// WheelCircumference returns the distance one wheel revolution covers, in the
// unit of the diameter.
func WheelCircumference(wheelOD float64) float64 {
	return wheelOD * math.Pi
}

// SpinRate returns how fast a two-wheel-drive chassis rotates, in rad/s, when
// both sides run at wheelRPM in opposite directions.  wheelOD and width must
// share a unit.
func SpinRate(wheelRPM, wheelOD, width float64) float64 {
	return (wheelRPM * wheelOD * math.Pi) / (width * 30)
}
