package weapon

import (
	"math"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/motor"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/spinup"
)

type Config struct {
	GearDriver float64 `yaml:"gear_driver" json:"gearDriver"`
	GearDriven float64 `yaml:"gear_driven" json:"gearDriven"`
	// OD is in mm, MOI in g·mm².
	OD  float64 `yaml:"od" json:"od"`
	MOI float64 `yaml:"moi" json:"moi"`

	MotorCount      int     `yaml:"motor_count" json:"motorCount"`
	MotorPoles      int     `yaml:"motor_poles" json:"motorPoles"`
	MotorKv         float64 `yaml:"motor_kv" json:"motorKv"`
	MotorWatts      float64 `yaml:"motor_watts" json:"motorWatts"`
	MotorAmps       float64 `yaml:"motor_amps" json:"motorAmps"`
	MotorRiMilliOhm float64 `yaml:"motor_ri_milliohm" json:"motorRiMilliOhm"`

	FullSend motor.Profile `yaml:"full_send" json:"fullSend"`
	Typical  motor.Profile `yaml:"typical" json:"typical"`
}

type Computed struct {
	GearRatio float64 `json:"gearRatio"`
	RPM       float64 `json:"rpm"`
	// TipSpeed is in m/s.
	TipSpeed    float64 `json:"tipSpeed"`
	StallTorque float64 `json:"stallTorque"`
	// Energy is the stored energy at full throttle, in J.
	Energy float64 `json:"energy"`

	SpinUpTime         float64 `json:"spinUpTime"`
	FullSendSpinUpTime float64 `json:"fullSendSpinUpTime"`
	TypicalSpinUpTime  float64 `json:"typicalSpinUpTime"`

	FullSend motor.Draw `json:"fullSend"`
	Typical  motor.Draw `json:"typical"`
}

func GearRatio(c Config) float64 {
	return c.GearDriven / c.GearDriver
}

// SpinUpParams returns the spin-up model inputs for c at throttle.
func SpinUpParams(c Config, volts, throttle float64) spinup.Params {
	ratio := GearRatio(c)
	return spinup.Params{
		Throttle:    throttle,
		Kv:          c.MotorKv,
		GearRatio:   ratio,
		MOI:         c.MOI,
		StallTorque: motor.StallTorque(volts, c.MotorKv, c.MotorRiMilliOhm),
		Volts:       volts,
		MagnetPoles: float64(c.MotorPoles),
		MaxRPM:      (c.MotorKv * volts) / ratio,
		RiMilliOhm:  c.MotorRiMilliOhm,
	}
}

func Compute(c Config, volts float64) Computed {
	full := spinup.AtThrottle(SpinUpParams(c, volts, 1))
	fullSend := spinup.AtThrottle(SpinUpParams(c, volts, c.FullSend.Throttle))
	typical := spinup.AtThrottle(SpinUpParams(c, volts, c.Typical.Throttle))

	ratio := GearRatio(c)
	rpm := (c.MotorKv * volts) / ratio
	return Computed{
		GearRatio:   ratio,
		RPM:         rpm,
		TipSpeed:    (c.OD * math.Pi * (rpm / 60)) / 1000,
		StallTorque: motor.StallTorque(volts, c.MotorKv, c.MotorRiMilliOhm),
		Energy:      full.Joules,

		SpinUpTime:         full.Seconds,
		FullSendSpinUpTime: fullSend.Seconds,
		TypicalSpinUpTime:  typical.Seconds,

		FullSend: motor.DrawAt(c.MotorAmps, c.MotorCount, c.FullSend, volts),
		Typical:  motor.DrawAt(c.MotorAmps, c.MotorCount, c.Typical, volts),
	}
}
