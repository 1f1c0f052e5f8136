// Package chart draws the weapon spin-up curve.
package chart

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/spinup"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/weapon"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 400

	margin = 48
)

type Options struct {
	Width, Height int
	Title         string
}

// Series is the data behind a chart.
type Series struct {
	Curve      []spinup.Result `json:"curve"`
	CutoverRPM float64         `json:"cutoverRPM"`
}

// WeaponSeries returns the full-throttle spin-up curve of c's weapon.
func WeaponSeries(c bot.Config) Series {
	p := weapon.SpinUpParams(c.Weapon, c.Volts(), 1)
	return Series{
		Curve:      spinup.Curve(p),
		CutoverRPM: spinup.CutoverRPM(p.MagnetPoles, p.GearRatio),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// bounds returns the largest finite time and RPM in the series.
func (s Series) bounds() (maxSeconds, maxRPM float64) {
	for _, r := range s.Curve {
		if finite(r.Seconds) && r.Seconds > maxSeconds {
			maxSeconds = r.Seconds
		}
		if finite(r.RPM) && r.RPM > maxRPM {
			maxRPM = r.RPM
		}
	}
	return
}

// Render draws s as RPM against time.  Points that aren't finite are skipped.
func Render(s Series, opts Options) image.Image {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	w, h := float64(opts.Width), float64(opts.Height)

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(0.1, 0.1, 0.12)
	dc.Clear()

	// Axes.
	dc.SetRGB(0.8, 0.8, 0.8)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin/2, margin, h-margin)
	dc.DrawLine(margin, h-margin, w-margin/2, h-margin)
	dc.Stroke()
	if opts.Title != "" {
		dc.DrawStringAnchored(opts.Title, w/2, margin/4, 0.5, 0.5)
	}

	maxSeconds, maxRPM := s.bounds()
	if maxSeconds <= 0 || maxRPM <= 0 {
		dc.DrawStringAnchored("no data", w/2, h/2, 0.5, 0.5)
		return dc.Image()
	}
	maxRPM *= 1.1

	x := func(sec float64) float64 {
		return margin + sec/maxSeconds*(w-margin*1.5)
	}
	y := func(rpm float64) float64 {
		return h - margin - rpm/maxRPM*(h-margin*1.5)
	}

	dc.DrawStringAnchored("0", margin-4, h-margin, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f rpm", maxRPM), margin-4, margin/2, 1, 1)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f s", maxSeconds), w-margin/2, h-margin+4, 1, 1)

	// Soft start ends at the cut-over RPM.
	if finite(s.CutoverRPM) && s.CutoverRPM > 0 && s.CutoverRPM < maxRPM {
		dc.SetRGBA(1, 0.2, 0, 0.8)
		dc.SetDash(6, 4)
		dc.DrawLine(margin, y(s.CutoverRPM), w-margin/2, y(s.CutoverRPM))
		dc.Stroke()
		dc.SetDash()
		dc.DrawStringAnchored("soft start", w-margin/2, y(s.CutoverRPM)-4, 1, 0)
	}

	dc.SetRGBA(1, 0.9, 0, 1)
	dc.SetLineWidth(2)
	dc.MoveTo(x(0), y(0))
	for _, r := range s.Curve {
		if !finite(r.Seconds) || !finite(r.RPM) {
			continue
		}
		dc.LineTo(x(r.Seconds), y(r.RPM))
	}
	dc.Stroke()
	for _, r := range s.Curve {
		if !finite(r.Seconds) || !finite(r.RPM) {
			continue
		}
		dc.DrawCircle(x(r.Seconds), y(r.RPM), 2.5)
	}
	dc.Fill()

	return dc.Image()
}

// SavePNG renders s and writes it to path.
func SavePNG(path string, s Series, opts Options) error {
	img := Render(s, opts)
	if err := gg.SavePNG(path, img); err != nil {
		return errors.Wrapf(err, "saving chart to %s", path)
	}
	return nil
}
