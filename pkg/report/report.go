// Package report renders a computed bot as plain text.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"periph.io/x/periph/conn/physic"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/motor"
)

// Round rounds half up to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}

// Headline is one of the summary figures shown at the top of a report.
type Headline struct {
	Title string  `json:"title"`
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// Headlines returns the five summary figures, rounded for display.
func Headlines(b bot.Computed) []Headline {
	return []Headline{
		{"Weapon Energy", Round(b.WeaponStats.Energy, 0), "J"},
		{"Spin Up", Round(b.WeaponStats.SpinUpTime, 2), "sec"},
		{"Tip Speed", Round(b.WeaponStats.TipSpeed, 0), "m/s"},
		{"Drive Top Speed", Round(b.DriveStats.TopSpeed, 1), "m/s"},
		{"Est. Current Draw", Round(b.EstimatedAmpHours*1000, 0), "mAh"},
	}
}

// The physic types hold int64 nano units.  Anything that doesn't fit is
// printed as a bare number.
const maxNano = float64(math.MaxInt64) / 2

func fits(v, unit float64) bool {
	n := v * unit
	return !math.IsNaN(n) && !math.IsInf(n, 0) && math.Abs(n) < maxNano
}

func plain(v float64, symbol string) string {
	return strconv.FormatFloat(v, 'g', 6, 64) + symbol
}

func volts(v float64) string {
	if !fits(v, float64(physic.Volt)) {
		return plain(v, "V")
	}
	return physic.ElectricPotential(v * float64(physic.Volt)).String()
}

func amps(v float64) string {
	if !fits(v, float64(physic.Ampere)) {
		return plain(v, "A")
	}
	return physic.ElectricCurrent(v * float64(physic.Ampere)).String()
}

func newtons(v float64) string {
	if !fits(v, float64(physic.Newton)) {
		return plain(v, "N")
	}
	return physic.Force(v * float64(physic.Newton)).String()
}

func millimetres(v float64) string {
	if !fits(v, float64(physic.MilliMetre)) {
		return plain(v, "mm")
	}
	return physic.Distance(v * float64(physic.MilliMetre)).String()
}

func grams(v float64) string {
	if !fits(v, float64(physic.Gram)) {
		return plain(v, "g")
	}
	return physic.Mass(v * float64(physic.Gram)).String()
}

func milliohms(v float64) string {
	if !fits(v, float64(physic.MilliOhm)) {
		return plain(v, "mΩ")
	}
	return physic.ElectricResistance(v * float64(physic.MilliOhm)).String()
}

func metresPerSecond(v float64) string {
	if !fits(v, float64(physic.MetrePerSecond)) {
		return plain(v, "m/s")
	}
	return physic.Speed(v * float64(physic.MetrePerSecond)).String()
}

func num(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(Round(v, places), 'f', -1, 64)
}

func profile(p motor.Profile) string {
	return fmt.Sprintf("%s%% for %ss", num(p.Throttle*100, 0), num(p.Duration, 1))
}

func draw(d motor.Draw) string {
	return fmt.Sprintf("%s, %s mAh", amps(d.Amps), num(d.AmpHours*1000, 0))
}

// Write prints b as an aligned table of sections.
func Write(out io.Writer, b bot.Computed) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	p("%s\t(%s)", b.Name, b.ID)
	p("")
	for _, h := range Headlines(b) {
		p("%s\t%s %s", h.Title, num(h.Value, 2), h.Units)
	}

	p("")
	p("Battery")
	p("  Cells\t%dS", b.Battery.Cells)
	p("  Voltage\t%s", volts(b.Volts))
	p("  Estimated draw\t%s mAh", num(b.EstimatedAmpHours*1000, 0))

	ws := b.WeaponStats
	p("")
	p("Weapon")
	p("  Motors\t%d x %s kv, %d poles, %s", b.Weapon.MotorCount, num(b.Weapon.MotorKv, 0),
		b.Weapon.MotorPoles, milliohms(b.Weapon.MotorRiMilliOhm))
	p("  Rated\t%s, %s W", amps(b.Weapon.MotorAmps), num(b.Weapon.MotorWatts, 1))
	p("  Diameter\t%s", millimetres(b.Weapon.OD))
	p("  Gear ratio\t%s:1", num(ws.GearRatio, 3))
	p("  Speed\t%s rpm, tip %s", num(ws.RPM, 0), metresPerSecond(ws.TipSpeed))
	p("  Stall torque\t%s Nm", num(ws.StallTorque, 3))
	p("  Energy\t%s J", num(ws.Energy, 1))
	p("  Spin-up\t%s s", num(ws.SpinUpTime, 2))
	p("  Full send\t%s: %s s, %s", profile(b.Weapon.FullSend), num(ws.FullSendSpinUpTime, 2), draw(ws.FullSend))
	p("  Typical\t%s: %s s, %s", profile(b.Weapon.Typical), num(ws.TypicalSpinUpTime, 2), draw(ws.Typical))

	ds := b.DriveStats
	p("")
	p("Drive")
	p("  Motors\t%d x %s kv, %s", b.Drive.MotorCount, num(b.Drive.MotorKv, 0), milliohms(b.Drive.MotorRiMilliOhm))
	p("  Reduction\t%s:1 (%s x %s)", num(ds.TotalReduction, 3), num(b.Drive.GearboxReduction, 3),
		num(b.Drive.SecondaryReduction, 3))
	p("  Wheels\t%s", millimetres(b.Drive.WheelOD))
	p("  Output\t%s rpm", num(ds.OutputRPM, 0))
	p("  Top speed\t%s", metresPerSecond(ds.TopSpeed))
	p("  Stall torque\t%s Nm", num(ds.StallTorque, 3))
	p("  Full send\t%s: %s, %s", profile(b.Drive.FullSend), metresPerSecond(ds.FullSendSpeed), draw(ds.FullSend))
	p("  Typical\t%s: %s, %s", profile(b.Drive.Typical), metresPerSecond(ds.TypicalSpeed), draw(ds.Typical))

	g := b.Gyro
	p("")
	p("Gyro")
	p("  Wheelbase\t%s", millimetres(b.General.WidthMM()))
	p("  Mass\t%s", grams(b.General.MassG()))
	p("  Force on raising wheel\t%s", newtons(g.ForceOnRaisingWheel))
	p("  Max spin rate\t%s s/rev", num(g.MaxSpinRate, 3))
	p("  Max flat turn rate\t%s s/rev", num(g.MaxFlatTurnRate, 3))
	if g.ForceOnRaisingWheel < 0 {
		p("  \tWARNING: turning at full speed will lift a wheel")
	}

	return w.Flush()
}
