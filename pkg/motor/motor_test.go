package motor

import (
	"math"
	"testing"
)

func TestStallTorque(t *testing.T) {
	volts, kv, ri := 22.2, 2000.0, 20.0
	got := StallTorque(volts, kv, ri)
	want := ((1352 / kv) * (volts / (ri * 0.001))) / 141.61
	if got != want {
		t.Fatalf("StallTorque(22.2, 2000, 20) = %v, expected %v", got, want)
	}
	if math.Abs(got-5.29878) > 1e-5 {
		t.Fatalf("StallTorque(22.2, 2000, 20) = %v, expected about 5.2988", got)
	}
}

func TestStallTorqueZeroResistance(t *testing.T) {
	if got := StallTorque(11.1, 2000, 0); !math.IsInf(got, 1) {
		t.Fatalf("Zero resistance should give +Inf torque, got %v", got)
	}
}

func TestWattsAmps(t *testing.T) {
	if w := WattsFromAmps(10, 22.2); w != 222 {
		t.Errorf("10A at 22.2V should be 222W, got %v", w)
	}
	if a := AmpsFromWatts(222, 22.2); math.Abs(a-10) > 1e-12 {
		t.Errorf("222W at 22.2V should be 10A, got %v", a)
	}
}

func TestDrawAt(t *testing.T) {
	d := DrawAt(10, 2, Profile{Throttle: 0.5, Duration: 3600}, 22.2)
	if d.Amps != 10 {
		t.Errorf("Two 10A motors at half throttle should draw 10A, got %v", d.Amps)
	}
	if math.Abs(d.WattHours-222) > 1e-9 {
		t.Errorf("10A for an hour at 22.2V should be 222Wh, got %v", d.WattHours)
	}
	if math.Abs(d.AmpHours-10) > 1e-9 {
		t.Errorf("10A for an hour should be 10Ah, got %v", d.AmpHours)
	}

	idle := DrawAt(10, 2, Profile{Throttle: 0, Duration: 60}, 22.2)
	if idle != (Draw{}) {
		t.Errorf("Zero throttle should draw nothing, got %+v", idle)
	}
}
