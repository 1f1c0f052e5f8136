package drive

import (
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/chassis"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/motor"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/units"
)

type Config struct {
	MotorCount      int     `yaml:"motor_count" json:"motorCount"`
	MotorKv         float64 `yaml:"motor_kv" json:"motorKv"`
	MotorWatts      float64 `yaml:"motor_watts" json:"motorWatts"`
	MotorAmps       float64 `yaml:"motor_amps" json:"motorAmps"`
	MotorRiMilliOhm float64 `yaml:"motor_ri_milliohm" json:"motorRiMilliOhm"`

	GearboxReduction   float64 `yaml:"gearbox_reduction" json:"gearboxReduction"`
	SecondaryReduction float64 `yaml:"secondary_reduction" json:"secondaryReduction"`
	// WheelOD is in mm.
	WheelOD float64 `yaml:"wheel_od" json:"wheelOD"`

	FullSend motor.Profile `yaml:"full_send" json:"fullSend"`
	Typical  motor.Profile `yaml:"typical" json:"typical"`
}

// Computed holds the drivetrain figures derived from a Config.
type Computed struct {
	// TopSpeed is in m/s.
	TopSpeed       float64 `json:"topSpeed"`
	TotalReduction float64 `json:"totalReduction"`
	// OutputRPM is the wheel RPM at full throttle.
	OutputRPM   float64 `json:"outputRPM"`
	StallTorque float64 `json:"stallTorque"`

	FullSend      motor.Draw `json:"fullSend"`
	FullSendSpeed float64    `json:"fullSendSpeed"`
	Typical       motor.Draw `json:"typical"`
	TypicalSpeed  float64    `json:"typicalSpeed"`
}

func Compute(c Config, volts float64) Computed {
	wheelCircumM := chassis.WheelCircumference(units.MMToM(c.WheelOD))
	totalReduction := c.GearboxReduction * c.SecondaryReduction
	topSpeed := ((volts * c.MotorKv) / c.GearboxReduction / c.SecondaryReduction) * (wheelCircumM / 60)

	return Computed{
		TopSpeed:       topSpeed,
		TotalReduction: totalReduction,
		OutputRPM:      (c.MotorKv * volts) / totalReduction,
		StallTorque:    motor.StallTorque(volts, c.MotorKv, c.MotorRiMilliOhm),

		FullSend:      motor.DrawAt(c.MotorAmps, c.MotorCount, c.FullSend, volts),
		FullSendSpeed: topSpeed * c.FullSend.Throttle,
		Typical:       motor.DrawAt(c.MotorAmps, c.MotorCount, c.Typical, volts),
		TypicalSpeed:  topSpeed * c.Typical.Throttle,
	}
}
