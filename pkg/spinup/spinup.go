// Package spinup models how long a weapon takes to reach a given fraction of its
// top speed when driven by an ESC with "soft start" enabled.
//
// The model treats spin-up as an RC charge curve: the weapon approaches its
// terminal RPM exponentially with a time constant derived from the motor's
// stall torque and the weapon's inertia.  Below the cut-over RPM the ESC only
// delivers a quarter of the power, so the curve is stretched by a factor of
// four.  Spin-up is integrated in 5% throttle steps and each step picks the
// soft or full time constant depending on where the previous step ended.
package spinup

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/units"
)

const (
	// CommutationMaxMicros is the commutation interval, in µs, below which soft
	// start is active.
	CommutationMaxMicros = 1024
	// SoftStartPower is the maximum power pulse length during soft start.
	SoftStartPower = 0.25
	// MaxThrottle keeps the log term finite.
	MaxThrottle = 0.999
	// ThrottleStep is the size of each integration step.
	ThrottleStep = 0.05
	// MaxSteppedThrottle bounds the number of steps taken for out of range
	// throttles.
	MaxSteppedThrottle = 2

	// rpmToRad is the RPM to rad/s shortcut used throughout the model.
	rpmToRad = 0.105
)

type Params struct {
	Throttle    float64
	Kv          float64
	GearRatio   float64
	MOI         float64 // g·mm²
	StallTorque float64 // N·m
	Volts       float64
	MagnetPoles float64
	// MaxRPM is the weapon RPM at 100% throttle.
	MaxRPM     float64
	RiMilliOhm float64
}

type Result struct {
	Throttle float64 `json:"throttle"`
	// Seconds is the accumulated spin-up time to reach RPM.
	Seconds float64 `json:"seconds"`
	// SecondsFull and SecondsSoft are the direct charge-curve times at this
	// throttle with the full and the soft-start time constant.
	SecondsFull float64 `json:"secondsFull"`
	SecondsSoft float64 `json:"secondsSoft"`
	RPM         float64 `json:"rpm"`
	Joules      float64 `json:"joules"`
	Amps        float64 `json:"amps"`
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TimeConstant returns the full-power time constant in seconds.  moiKgm2 is in
// kg·m².
func TimeConstant(kv, gearRatio, moiKgm2, torque, volts float64) float64 {
	return ((((volts * kv) / gearRatio) * rpmToRad) / torque) * gearRatio * moiKgm2
}

func SoftStartTimeConstant(timeConstant float64) float64 {
	return timeConstant * (1 / SoftStartPower)
}

// CutoverRPM is the weapon RPM at which the ESC leaves soft start.
func CutoverRPM(magnetPoles, gearRatio float64) float64 {
	return 60 / (magnetPoles * 3 * (CommutationMaxMicros / 1000000.0)) / gearRatio
}

// StallAmps is the theoretical stall current.
func StallAmps(volts, riMilliOhm float64) float64 {
	return (1000 * volts) / riMilliOhm
}

// model holds the throttle-independent terms of one evaluation.
type model struct {
	moi       float64
	tc        float64
	softTC    float64
	cutover   float64
	stallAmps float64
	maxRPM    float64
}

func newModel(p Params) model {
	moi := units.GMM2ToKGM2(p.MOI)
	tc := TimeConstant(p.Kv, p.GearRatio, moi, p.StallTorque, p.Volts)
	return model{
		moi:       moi,
		tc:        tc,
		softTC:    SoftStartTimeConstant(tc),
		cutover:   CutoverRPM(p.MagnetPoles, p.GearRatio),
		stallAmps: StallAmps(p.Volts, p.RiMilliOhm),
		maxRPM:    p.MaxRPM,
	}
}

// step evaluates one throttle level given the result of the level below it.
func (m model) step(throttle float64, prev Result) Result {
	c := clamp(throttle, 0, MaxThrottle)

	secondsFull := -(m.tc * math.Log(1-c))
	secondsSoft := -(m.softTC * math.Log(1-c))
	gainFull := secondsFull - prev.SecondsFull
	gainSoft := secondsSoft - prev.SecondsSoft

	rpm := m.maxRPM * c

	seconds := prev.Seconds + gainFull
	if prev.RPM < m.cutover {
		seconds = prev.Seconds + gainSoft
	}

	amps := (1 - throttle) * m.stallAmps
	if rpm < m.cutover {
		amps = ((1 - throttle) * m.stallAmps) / (1 / SoftStartPower)
	}

	return Result{
		Throttle:    throttle,
		Seconds:     seconds,
		SecondsFull: secondsFull,
		SecondsSoft: secondsSoft,
		RPM:         rpm,
		Joules:      0.5 * m.moi * math.Pow(rpm*rpmToRad, 2),
		Amps:        amps,
	}
}

// throttleSteps lists the throttle of every step from the target down to the
// last one above zero, lowest first.  Each level is the one above it minus
// ThrottleStep.  A target above MaxSteppedThrottle, +Inf included, is stepped
// down from 1 and kept only as the final level; it clamps to MaxThrottle and
// adds no time.
func throttleSteps(throttle float64) []float64 {
	top := throttle
	if top > MaxSteppedThrottle {
		top = 1
	}
	var down []float64
	for t := top; clamp(t, 0, MaxThrottle) > 0; t -= ThrottleStep {
		down = append(down, t)
	}
	steps := make([]float64, len(down), len(down)+1)
	for i, t := range down {
		steps[len(down)-1-i] = t
	}
	if throttle > MaxSteppedThrottle {
		steps = append(steps, throttle)
	}
	return steps
}

// Curve returns every integration step up to p.Throttle, lowest throttle
// first.  A throttle of zero or below returns nil.
func Curve(p Params) []Result {
	steps := throttleSteps(p.Throttle)
	if len(steps) == 0 {
		return nil
	}
	m := newModel(p)
	out := make([]Result, 0, len(steps))
	var prev Result
	for _, t := range steps {
		prev = m.step(t, prev)
		out = append(out, prev)
	}
	return out
}

// AtThrottle returns the spin-up result at p.Throttle.  Throttle is clamped to
// [0, MaxThrottle]; zero throttle returns the zero Result.
func AtThrottle(p Params) Result {
	curve := Curve(p)
	if len(curve) == 0 {
		return Result{}
	}
	return curve[len(curve)-1]
}
