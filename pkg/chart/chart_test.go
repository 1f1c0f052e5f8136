package chart

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/spinup"
)

func sixCellBot() bot.Config {
	c := bot.Default()
	c.Battery.Cells = 6
	return c
}

// curvePixels counts pixels in the curve colour.
func curvePixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r > 0xe000 && g > 0xd000 && bl < 0x4000 {
				n++
			}
		}
	}
	return n
}

func TestWeaponSeries(t *testing.T) {
	s := WeaponSeries(sixCellBot())
	if len(s.Curve) != 20 {
		t.Fatalf("Expected 20 steps at full throttle, got %d", len(s.Curve))
	}
	if s.CutoverRPM <= 0 || s.CutoverRPM >= s.Curve[len(s.Curve)-1].RPM {
		t.Fatalf("Cut-over %v outside the curve", s.CutoverRPM)
	}
}

func TestRenderDrawsCurve(t *testing.T) {
	img := Render(WeaponSeries(sixCellBot()), Options{Title: "Spin-up"})
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Fatalf("Unexpected size %v", b)
	}
	if n := curvePixels(img); n < 100 {
		t.Fatalf("Only %d curve pixels drawn", n)
	}
}

func TestRenderNoData(t *testing.T) {
	img := Render(Series{}, Options{Width: 200, Height: 100})
	if n := curvePixels(img); n != 0 {
		t.Fatalf("Empty series drew %d curve pixels", n)
	}

	nan := Series{Curve: []spinup.Result{{Seconds: math.NaN(), RPM: math.Inf(1)}}}
	if n := curvePixels(Render(nan, Options{})); n != 0 {
		t.Fatalf("Non-finite series drew %d curve pixels", n)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spinup.png")
	if err := SavePNG(path, WeaponSeries(sixCellBot()), Options{Width: 320, Height: 200}); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("Unexpected size %v", b)
	}
}
