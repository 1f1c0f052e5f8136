// Package bot ties the battery, weapon and drive models together.  A Config is
// what the user edits; Compute derives everything else from it on every call.
package bot

import (
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/drive"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/gyro"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/motor"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/units"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/weapon"
)

type Battery struct {
	Cells int `yaml:"cells" json:"cells"`
}

// General holds the optional chassis measurements.  A nil value reads as 1.
type General struct {
	// WheelBaseWidth is the track width in mm.
	WheelBaseWidth *float64 `yaml:"wheelbase_width,omitempty" json:"wheelBaseWidth,omitempty"`
	// Mass is in g.
	Mass *float64 `yaml:"mass,omitempty" json:"mass,omitempty"`
}

func (g General) WidthMM() float64 {
	if g.WheelBaseWidth == nil {
		return 1
	}
	return *g.WheelBaseWidth
}

func (g General) MassG() float64 {
	if g.Mass == nil {
		return 1
	}
	return *g.Mass
}

func (g General) clone() General {
	var out General
	if g.WheelBaseWidth != nil {
		w := *g.WheelBaseWidth
		out.WheelBaseWidth = &w
	}
	if g.Mass != nil {
		m := *g.Mass
		out.Mass = &m
	}
	return out
}

type Config struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	Battery Battery       `yaml:"battery" json:"battery"`
	Weapon  weapon.Config `yaml:"weapon" json:"weapon"`
	Drive   drive.Config  `yaml:"drive" json:"drive"`
	General General       `yaml:"general" json:"general"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.General = c.General.clone()
	return c
}

// Volts returns the nominal pack voltage.
func (c Config) Volts() float64 {
	return float64(c.Battery.Cells) * units.VoltsPerCell
}

func ptr(v float64) *float64 {
	return &v
}

// Default returns the configuration of a freshly created bot.
func Default() Config {
	return Config{
		ID:      "id",
		Name:    "name",
		Battery: Battery{Cells: 3},
		Weapon: weapon.Config{
			GearDriver:      1,
			GearDriven:      1,
			OD:              100,
			MOI:             100000,
			MotorCount:      1,
			MotorPoles:      14,
			MotorKv:         2000,
			MotorWatts:      1,
			MotorAmps:       1,
			MotorRiMilliOhm: 20,
			FullSend:        motor.Profile{Throttle: 1, Duration: 20},
			Typical:         motor.Profile{Throttle: 0.5, Duration: 160},
		},
		Drive: drive.Config{
			MotorCount:         2,
			MotorKv:            2000,
			MotorWatts:         1,
			MotorAmps:          1,
			MotorRiMilliOhm:    0,
			GearboxReduction:   1,
			SecondaryReduction: 1,
			WheelOD:            40,
			FullSend:           motor.Profile{Throttle: 1, Duration: 20},
			Typical:            motor.Profile{Throttle: 0.5, Duration: 160},
		},
		General: General{
			WheelBaseWidth: ptr(0),
			Mass:           ptr(0),
		},
	}
}

// Computed is a Config together with every figure derived from it.
type Computed struct {
	Config

	Volts             float64 `json:"volts"`
	EstimatedAmpHours float64 `json:"estimatedAmpHours"`

	WeaponStats weapon.Computed `json:"weaponStats"`
	DriveStats  drive.Computed  `json:"driveStats"`
	Gyro        gyro.Computed   `json:"gyro"`
}

// Compute derives the full set of figures for c.  It never modifies c and
// always recomputes from scratch.
func Compute(c Config) Computed {
	volts := c.Volts()

	w := weapon.Compute(c.Weapon, volts)
	d := drive.Compute(c.Drive, volts)

	estimated := w.FullSend.AmpHours + w.Typical.AmpHours + (d.FullSend.AmpHours + d.Typical.AmpHours)

	g := gyro.Compute(gyro.Params{
		DriveRPM:     d.OutputRPM,
		WeaponRPM:    w.RPM,
		WeaponMOI:    units.GMM2ToKGM2(c.Weapon.MOI),
		WheelODMetre: units.MMToM(c.Drive.WheelOD),
		WidthMetre:   units.MMToM(c.General.WidthMM()),
		MassKG:       units.GToKG(c.General.MassG()),
	})

	return Computed{
		Config:            c.Clone(),
		Volts:             volts,
		EstimatedAmpHours: estimated,
		WeaponStats:       w,
		DriveStats:        d,
		Gyro:              g,
	}
}
