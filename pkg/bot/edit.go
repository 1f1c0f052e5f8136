package bot

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/motor"
)

// Field names a single editable value of a Config, using its yaml path.
type Field string

const (
	FieldBatteryCells Field = "battery.cells"

	FieldWeaponGearDriver       Field = "weapon.gear_driver"
	FieldWeaponGearDriven       Field = "weapon.gear_driven"
	FieldWeaponOD               Field = "weapon.od"
	FieldWeaponMOI              Field = "weapon.moi"
	FieldWeaponMotorCount       Field = "weapon.motor_count"
	FieldWeaponMotorPoles       Field = "weapon.motor_poles"
	FieldWeaponMotorKv          Field = "weapon.motor_kv"
	FieldWeaponMotorWatts       Field = "weapon.motor_watts"
	FieldWeaponMotorAmps        Field = "weapon.motor_amps"
	FieldWeaponMotorRiMilliOhm  Field = "weapon.motor_ri_milliohm"
	FieldWeaponFullSendThrottle Field = "weapon.full_send.throttle"
	FieldWeaponFullSendDuration Field = "weapon.full_send.duration"
	FieldWeaponTypicalThrottle  Field = "weapon.typical.throttle"
	FieldWeaponTypicalDuration  Field = "weapon.typical.duration"

	FieldDriveMotorCount         Field = "drive.motor_count"
	FieldDriveMotorKv            Field = "drive.motor_kv"
	FieldDriveMotorWatts         Field = "drive.motor_watts"
	FieldDriveMotorAmps          Field = "drive.motor_amps"
	FieldDriveMotorRiMilliOhm    Field = "drive.motor_ri_milliohm"
	FieldDriveGearboxReduction   Field = "drive.gearbox_reduction"
	FieldDriveSecondaryReduction Field = "drive.secondary_reduction"
	FieldDriveWheelOD            Field = "drive.wheel_od"
	FieldDriveFullSendThrottle   Field = "drive.full_send.throttle"
	FieldDriveFullSendDuration   Field = "drive.full_send.duration"
	FieldDriveTypicalThrottle    Field = "drive.typical.throttle"
	FieldDriveTypicalDuration    Field = "drive.typical.duration"

	FieldGeneralWheelBaseWidth Field = "general.wheelbase_width"
	FieldGeneralMass           Field = "general.mass"
)

// Patch is a set of field edits applied together.
type Patch map[Field]float64

var (
	ErrUnknownField = errors.New("unknown field")
	ErrNotWhole     = errors.New("value must be a whole number")
	ErrNoCells      = errors.New("a battery needs at least one cell")
	ErrTooLarge     = errors.New("value is too large")
)

// maxCount bounds counted fields so they convert to int safely.
const maxCount = math.MaxInt32

// wholeNumber converts v to a count.
func wholeNumber(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, ErrNotWhole
	}
	if v > maxCount {
		return 0, ErrTooLarge
	}
	return int(v), nil
}

type setter func(c *Config, v float64) error

func setFloat(get func(c *Config) *float64) setter {
	return func(c *Config, v float64) error {
		*get(c) = v
		return nil
	}
}

func setCount(get func(c *Config) *int) setter {
	return func(c *Config, v float64) error {
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		if n < 0 {
			return ErrNotWhole
		}
		*get(c) = n
		return nil
	}
}

var setters = map[Field]setter{
	FieldBatteryCells: func(c *Config, v float64) error {
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		if n < 1 {
			return ErrNoCells
		}
		c.Battery.Cells = n
		return nil
	},

	FieldWeaponGearDriver:       setFloat(func(c *Config) *float64 { return &c.Weapon.GearDriver }),
	FieldWeaponGearDriven:       setFloat(func(c *Config) *float64 { return &c.Weapon.GearDriven }),
	FieldWeaponOD:               setFloat(func(c *Config) *float64 { return &c.Weapon.OD }),
	FieldWeaponMOI:              setFloat(func(c *Config) *float64 { return &c.Weapon.MOI }),
	FieldWeaponMotorCount:       setCount(func(c *Config) *int { return &c.Weapon.MotorCount }),
	FieldWeaponMotorPoles:       setCount(func(c *Config) *int { return &c.Weapon.MotorPoles }),
	FieldWeaponMotorKv:          setFloat(func(c *Config) *float64 { return &c.Weapon.MotorKv }),
	FieldWeaponMotorWatts:       setFloat(func(c *Config) *float64 { return &c.Weapon.MotorWatts }),
	FieldWeaponMotorAmps:        setFloat(func(c *Config) *float64 { return &c.Weapon.MotorAmps }),
	FieldWeaponMotorRiMilliOhm:  setFloat(func(c *Config) *float64 { return &c.Weapon.MotorRiMilliOhm }),
	FieldWeaponFullSendThrottle: setFloat(func(c *Config) *float64 { return &c.Weapon.FullSend.Throttle }),
	FieldWeaponFullSendDuration: setFloat(func(c *Config) *float64 { return &c.Weapon.FullSend.Duration }),
	FieldWeaponTypicalThrottle:  setFloat(func(c *Config) *float64 { return &c.Weapon.Typical.Throttle }),
	FieldWeaponTypicalDuration:  setFloat(func(c *Config) *float64 { return &c.Weapon.Typical.Duration }),

	FieldDriveMotorCount:         setCount(func(c *Config) *int { return &c.Drive.MotorCount }),
	FieldDriveMotorKv:            setFloat(func(c *Config) *float64 { return &c.Drive.MotorKv }),
	FieldDriveMotorWatts:         setFloat(func(c *Config) *float64 { return &c.Drive.MotorWatts }),
	FieldDriveMotorAmps:          setFloat(func(c *Config) *float64 { return &c.Drive.MotorAmps }),
	FieldDriveMotorRiMilliOhm:    setFloat(func(c *Config) *float64 { return &c.Drive.MotorRiMilliOhm }),
	FieldDriveGearboxReduction:   setFloat(func(c *Config) *float64 { return &c.Drive.GearboxReduction }),
	FieldDriveSecondaryReduction: setFloat(func(c *Config) *float64 { return &c.Drive.SecondaryReduction }),
	FieldDriveWheelOD:            setFloat(func(c *Config) *float64 { return &c.Drive.WheelOD }),
	FieldDriveFullSendThrottle:   setFloat(func(c *Config) *float64 { return &c.Drive.FullSend.Throttle }),
	FieldDriveFullSendDuration:   setFloat(func(c *Config) *float64 { return &c.Drive.FullSend.Duration }),
	FieldDriveTypicalThrottle:    setFloat(func(c *Config) *float64 { return &c.Drive.Typical.Throttle }),
	FieldDriveTypicalDuration:    setFloat(func(c *Config) *float64 { return &c.Drive.Typical.Duration }),

	FieldGeneralWheelBaseWidth: func(c *Config, v float64) error {
		c.General.WheelBaseWidth = ptr(v)
		return nil
	},
	FieldGeneralMass: func(c *Config, v float64) error {
		c.General.Mass = ptr(v)
		return nil
	},
}

// Fields lists every editable field in sorted order.
func Fields() []Field {
	fields := maps.Keys(setters)
	slices.Sort(fields)
	return fields
}

// rule is a follow-up adjustment run after a patch has been applied.  prev is
// the config before the patch.
type rule func(prev Config, next *Config, p Patch)

// editRules run in order after every patch.
var editRules = []rule{
	// A motor's current was edited: keep its power rating consistent.
	func(prev Config, next *Config, p Patch) {
		volts := next.Volts()
		if p.has(FieldWeaponMotorAmps) && !p.has(FieldWeaponMotorWatts) {
			next.Weapon.MotorWatts = motor.WattsFromAmps(next.Weapon.MotorAmps, volts)
		}
		if p.has(FieldDriveMotorAmps) && !p.has(FieldDriveMotorWatts) {
			next.Drive.MotorWatts = motor.WattsFromAmps(next.Drive.MotorAmps, volts)
		}
	},
	// A motor's power was edited: derive its current.
	func(prev Config, next *Config, p Patch) {
		volts := next.Volts()
		if p.has(FieldWeaponMotorWatts) && !p.has(FieldWeaponMotorAmps) {
			next.Weapon.MotorAmps = motor.AmpsFromWatts(next.Weapon.MotorWatts, volts)
		}
		if p.has(FieldDriveMotorWatts) && !p.has(FieldDriveMotorAmps) {
			next.Drive.MotorAmps = motor.AmpsFromWatts(next.Drive.MotorWatts, volts)
		}
	},
	// The pack changed: motors keep their current, so their power follows
	// the new voltage.
	func(prev Config, next *Config, p Patch) {
		if !p.has(FieldBatteryCells) || prev.Battery.Cells == next.Battery.Cells {
			return
		}
		volts := next.Volts()
		next.Weapon.MotorWatts = motor.WattsFromAmps(next.Weapon.MotorAmps, volts)
		next.Drive.MotorWatts = motor.WattsFromAmps(next.Drive.MotorAmps, volts)
	},
}

func (p Patch) has(f Field) bool {
	_, ok := p[f]
	return ok
}

// ApplyEdit returns a copy of c with p applied, followed by the dependent
// field adjustments.  c itself is never modified.  An invalid patch returns an
// error and leaves nothing applied.
func ApplyEdit(c Config, p Patch) (Config, error) {
	next := c.Clone()

	fields := maps.Keys(p)
	slices.Sort(fields)
	for _, f := range fields {
		set, ok := setters[f]
		if !ok {
			return c, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		if err := set(&next, p[f]); err != nil {
			return c, fmt.Errorf("%s: %w", f, err)
		}
	}

	for _, r := range editRules {
		r(c, &next, p)
	}
	return next, nil
}
