package drive

import (
	"math"
	"testing"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/motor"
)

func sixCellVolts() float64 {
	cells := 6.0
	return cells * 3.7
}

func defaultDrive() Config {
	return Config{
		MotorCount:         2,
		MotorKv:            2000,
		MotorWatts:         1,
		MotorAmps:          1,
		MotorRiMilliOhm:    20,
		GearboxReduction:   1,
		SecondaryReduction: 1,
		WheelOD:            40,
		FullSend:           motor.Profile{Throttle: 1, Duration: 20},
		Typical:            motor.Profile{Throttle: 0.5, Duration: 160},
	}
}

func TestCompute(t *testing.T) {
	c := Compute(defaultDrive(), sixCellVolts())
	if math.Abs(c.TopSpeed-92.9911425462579) > 1e-9 {
		t.Errorf("Top speed %v, expected 92.99 m/s", c.TopSpeed)
	}
	if math.Abs(c.OutputRPM-44400) > 1e-6 {
		t.Errorf("Output RPM %v, expected 44400", c.OutputRPM)
	}
	if c.TotalReduction != 1 {
		t.Errorf("Total reduction %v, expected 1", c.TotalReduction)
	}
	if c.FullSend.Amps != 2 || c.Typical.Amps != 1 {
		t.Errorf("Unexpected amps: full send %v, typical %v", c.FullSend.Amps, c.Typical.Amps)
	}
	if math.Abs(c.FullSend.AmpHours+c.Typical.AmpHours-(2*20+1*160)/3600.0) > 1e-12 {
		t.Errorf("Unexpected amp hours %v + %v", c.FullSend.AmpHours, c.Typical.AmpHours)
	}
	if c.FullSendSpeed != c.TopSpeed || c.TypicalSpeed != c.TopSpeed*0.5 {
		t.Errorf("Profile speeds %v, %v don't follow throttle", c.FullSendSpeed, c.TypicalSpeed)
	}
}

func TestReductionStacks(t *testing.T) {
	cfg := defaultDrive()
	direct := Compute(cfg, sixCellVolts())
	cfg.GearboxReduction = 4
	cfg.SecondaryReduction = 2.5
	geared := Compute(cfg, sixCellVolts())

	if geared.TotalReduction != 10 {
		t.Fatalf("4 × 2.5 reduction should be 10, got %v", geared.TotalReduction)
	}
	if math.Abs(geared.OutputRPM*10-direct.OutputRPM) > 1e-6 {
		t.Errorf("Output RPM %v should be a tenth of %v", geared.OutputRPM, direct.OutputRPM)
	}
	if math.Abs(geared.TopSpeed*10-direct.TopSpeed) > 1e-9 {
		t.Errorf("Top speed %v should be a tenth of %v", geared.TopSpeed, direct.TopSpeed)
	}
}

func TestZeroResistanceStallTorque(t *testing.T) {
	cfg := defaultDrive()
	cfg.MotorRiMilliOhm = 0
	if c := Compute(cfg, sixCellVolts()); !math.IsInf(c.StallTorque, 1) {
		t.Fatalf("Zero resistance should give +Inf stall torque, got %v", c.StallTorque)
	}
}
