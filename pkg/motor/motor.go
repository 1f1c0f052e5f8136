package motor

// Calibration constants of the runamok brushless stall torque estimate.
const (
	torqueNumerator = 1352
	torqueDivisor   = 141.61
)

// StallTorque estimates the stall torque of a brushless motor in N·m from the
// supply voltage, the Kv and the winding resistance in milliohms.  A zero
// resistance gives +Inf.
func StallTorque(volts, kv, riMilliOhm float64) float64 {
	return ((torqueNumerator / kv) * (volts / (riMilliOhm * 0.001))) / torqueDivisor
}

// WattsFromAmps and AmpsFromWatts keep a motor's rated power and current in
// step at a given pack voltage.
func WattsFromAmps(amps, volts float64) float64 {
	return amps * volts
}

func AmpsFromWatts(watts, volts float64) float64 {
	return watts / volts
}

// Profile is a throttle level held for a duration in seconds.
type Profile struct {
	Throttle float64 `yaml:"throttle" json:"throttle"`
	Duration float64 `yaml:"duration" json:"duration"`
}

// Draw is the battery load of a set of motors running a Profile.
type Draw struct {
	Amps      float64 `json:"amps"`
	WattHours float64 `json:"wattHours"`
	AmpHours  float64 `json:"ampHours"`
}

// DrawAt returns the load of count motors each rated at motorAmps running p
// from a pack at volts.
func DrawAt(motorAmps float64, count int, p Profile, volts float64) Draw {
	amps := motorAmps * p.Throttle * float64(count)
	wattHours := amps * volts * (p.Duration / 60 / 60)
	return Draw{
		Amps:      amps,
		WattHours: wattHours,
		AmpHours:  wattHours / volts,
	}
}
