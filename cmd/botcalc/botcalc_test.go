package main

import (
	"testing"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/garage"
)

func TestSetFlags(t *testing.T) {
	var s setFlags
	for _, arg := range []string{"battery.cells=6", " weapon.motor_kv = 1200"} {
		if err := s.Set(arg); err != nil {
			t.Fatal(err)
		}
	}
	if s.patch[bot.FieldBatteryCells] != 6 || s.patch[bot.FieldWeaponMotorKv] != 1200 {
		t.Fatalf("Unexpected patch %v", s.patch)
	}
	if got := s.String(); got != "battery.cells=6,weapon.motor_kv=1200" {
		t.Fatalf("String() = %q", got)
	}

	for _, bad := range []string{"battery.cells", "battery.cells=six"} {
		if err := s.Set(bad); err == nil {
			t.Errorf("Set(%q) should fail", bad)
		}
	}
}

func TestExampleBot(t *testing.T) {
	c, err := garage.LoadBot("testdata/thumper.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Thumper" || c.Battery.Cells != 6 {
		t.Fatalf("Unexpected bot %+v", c)
	}
	// Drive profiles aren't in the file, so they keep their defaults.
	if c.Drive.Typical != bot.Default().Drive.Typical {
		t.Fatalf("Drive profile lost its default: %+v", c.Drive.Typical)
	}
	if b := bot.Compute(c); b.Gyro.ForceOnRaisingWheel >= 0 {
		t.Fatalf("Expected the example bot to lift a wheel, force %v", b.Gyro.ForceOnRaisingWheel)
	}
}
