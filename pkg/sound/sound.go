// Package sound synthesises the whine of a brushless weapon motor spinning up.
package sound

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/spinup"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/weapon"
)

const (
	SampleRate = beep.SampleRate(44100)

	// Volume is the peak amplitude at full power.
	Volume = 0.3
)

type point struct {
	seconds, rpm float64
}

// Whine follows a spin-up curve: the pitch tracks the motor's electrical
// frequency and the volume drops while the ESC is in soft start.
type Whine struct {
	points     []point
	cutover    float64
	gearRatio  float64
	polePairs  float64
	hold       float64
	spinUpTime float64
}

// NewWhine builds a whine from curve, then holds the top speed for hold.
// Non-finite steps end the curve early.
func NewWhine(curve []spinup.Result, cutoverRPM, gearRatio float64, magnetPoles int, hold time.Duration) *Whine {
	w := &Whine{
		points:    []point{{0, 0}},
		cutover:   cutoverRPM,
		gearRatio: gearRatio,
		polePairs: float64(magnetPoles) / 2,
		hold:      hold.Seconds(),
	}
	for _, r := range curve {
		if math.IsNaN(r.Seconds) || math.IsInf(r.Seconds, 0) || math.IsNaN(r.RPM) || math.IsInf(r.RPM, 0) {
			break
		}
		w.points = append(w.points, point{r.Seconds, r.RPM})
		w.spinUpTime = r.Seconds
	}
	if len(w.points) == 1 {
		w.hold = 0
	}
	return w
}

// WeaponWhine is the full-throttle whine of c's weapon.
func WeaponWhine(c bot.Config, hold time.Duration) *Whine {
	p := weapon.SpinUpParams(c.Weapon, c.Volts(), 1)
	return NewWhine(spinup.Curve(p), spinup.CutoverRPM(p.MagnetPoles, p.GearRatio),
		p.GearRatio, c.Weapon.MotorPoles, hold)
}

func (w *Whine) Duration() time.Duration {
	return time.Duration((w.spinUpTime + w.hold) * float64(time.Second))
}

// rpmAt interpolates the weapon RPM t seconds into the spin-up.
func (w *Whine) rpmAt(t float64) float64 {
	last := w.points[len(w.points)-1]
	if t >= last.seconds {
		return last.rpm
	}
	for i := 1; i < len(w.points); i++ {
		a, b := w.points[i-1], w.points[i]
		if t < b.seconds {
			if b.seconds == a.seconds {
				return b.rpm
			}
			return a.rpm + (b.rpm-a.rpm)*(t-a.seconds)/(b.seconds-a.seconds)
		}
	}
	return last.rpm
}

// Frequency returns the electrical frequency in Hz of the motor driving the
// weapon at rpm.
func (w *Whine) Frequency(rpm float64) float64 {
	return rpm * w.gearRatio / 60 * w.polePairs
}

// Streamer plays the whine once at sr.
func (w *Whine) Streamer(sr beep.SampleRate) beep.Streamer {
	total := sr.N(w.Duration())
	pos := 0
	phase := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(sr)
			rpm := w.rpmAt(t)
			amp := Volume
			if rpm < w.cutover {
				amp = Volume * spinup.SoftStartPower
			}
			phase += 2 * math.Pi * w.Frequency(rpm) / float64(sr)
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi * math.Floor(phase/(2*math.Pi))
			}
			v := amp * math.Sin(phase)
			samples[i] = [2]float64{v, v}
			pos++
			n++
		}
		return n, true
	})
}

// Play plays s on the default speaker and blocks until it finishes or ctx is
// done.
func Play(ctx context.Context, sr beep.SampleRate, s beep.Streamer) error {
	if err := speaker.Init(sr, sr.N(time.Second/5)); err != nil {
		return errors.Wrap(err, "opening speaker")
	}
	done := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() {
		close(done)
	}))}
	speaker.Play(ctrl)

	select {
	case <-done:
	case <-ctx.Done():
		speaker.Lock()
		ctrl.Paused = true
		ctrl.Streamer = nil
		speaker.Unlock()
		fmt.Println("Playback interrupted")
	}
	return nil
}

// WriteWAV renders s into a 16-bit stereo wav file.
func WriteWAV(path string, sr beep.SampleRate, s beep.Streamer) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating wav")
	}
	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, s, format); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return errors.Wrap(f.Close(), "closing wav")
}
