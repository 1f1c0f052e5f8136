// Package gyro estimates how a spinning weapon's gyroscopic moment fights a
// turning chassis.
//
// With a vertical spinner, turning left lifts the right wheel and turning
// right lifts the left.  The moment M = I·ω1·ω2 works against half the bot's
// weight on each wheel; once it wins, the wheel leaves the floor.
package gyro

import (
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/chassis"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/units"
)

type Params struct {
	// DriveRPM is the wheel RPM at full throttle.
	DriveRPM  float64
	WeaponRPM float64
	// WeaponMOI is in kg·m².
	WeaponMOI    float64
	WheelODMetre float64
	WidthMetre   float64
	MassKG       float64
}

type Computed struct {
	// MaxSpinRate is the chassis spin period at full drive, in s/rev.
	MaxSpinRate float64 `json:"maxSpinRate"`
	// MaxFlatTurnRate is the shortest spin period, in s/rev, that keeps both
	// wheels down.
	MaxFlatTurnRate float64 `json:"maxFlatTurnRate"`
	// ForceOnRaisingWheel is in N.  Negative means the wheel lifts.
	ForceOnRaisingWheel float64 `json:"forceOnRaisingWheel"`
}

// ForceOnRaisingWheel is normally half the bot's weight, reduced by half the
// gyroscopic moment.
func ForceOnRaisingWheel(weaponRadPerSec, chassisRadPerSec, moiKgm2, weightN, widthMetre float64) float64 {
	moment := weaponRadPerSec * chassisRadPerSec * moiKgm2
	return (weightN*widthMetre)/2 - moment/2
}

// MaxFlatTurn returns the chassis rate, in rad/s, at which the raising wheel
// force reaches zero.
func MaxFlatTurn(weightN, moiKgm2, widthMetre, weaponRadPerSec float64) float64 {
	return (weightN * widthMetre) / (moiKgm2 * weaponRadPerSec)
}

func Compute(p Params) Computed {
	weight := units.KGToNewtons(p.MassKG)
	weaponRad := units.RPMToRadPerSec(p.WeaponRPM)
	spin := chassis.SpinRate(p.DriveRPM, p.WheelODMetre, p.WidthMetre)

	return Computed{
		MaxSpinRate:         units.RadPerSecToSecondsPerRev(spin),
		MaxFlatTurnRate:     units.RadPerSecToSecondsPerRev(MaxFlatTurn(weight, p.WeaponMOI, p.WidthMetre, weaponRad)),
		ForceOnRaisingWheel: ForceOnRaisingWheel(weaponRad, spin, p.WeaponMOI, weight, p.WidthMetre),
	}
}
