package units

import "math"

const (
	// VoltsPerCell is the nominal voltage of one LiPo cell.
	VoltsPerCell = 3.7
	// Gravity is standard gravity in m/s².
	Gravity = 9.8
)

func RPMToRadPerSec(rpm float64) float64 {
	return (rpm * 2 * math.Pi) / 60
}

func RadPerSecToRPM(radPerSec float64) float64 {
	return (radPerSec * 60) / (2 * math.Pi)
}

// GMM2ToKGM2 converts a moment of inertia in g·mm² to kg·m².
func GMM2ToKGM2(gmm2 float64) float64 {
	return gmm2 * 0.000000001
}

func MMToM(mm float64) float64 {
	return mm / 1000
}

func GToKG(g float64) float64 {
	return g / 1000
}

// KGToNewtons returns the weight of a mass under standard gravity.
func KGToNewtons(kg float64) float64 {
	return kg * Gravity
}

// RadPerSecToSecondsPerRev returns the period of a rotation.  A zero rate gives
// an infinite period.
func RadPerSecToSecondsPerRev(radPerSec float64) float64 {
	rpm := RadPerSecToRPM(radPerSec)
	return 1 / (rpm / 60)
}
