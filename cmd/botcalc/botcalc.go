package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/chart"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/garage"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/report"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/sound"
)

// setFlags collects repeated -set field=value arguments.
type setFlags struct {
	patch bot.Patch
}

func (s *setFlags) String() string {
	var parts []string
	for _, f := range bot.Fields() {
		if v, ok := s.patch[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", f, v))
		}
	}
	return strings.Join(parts, ",")
}

func (s *setFlags) Set(arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return errors.Errorf("expected field=value, got %q", arg)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return errors.Wrapf(err, "bad value for %s", name)
	}
	if s.patch == nil {
		s.patch = bot.Patch{}
	}
	s.patch[bot.Field(strings.TrimSpace(name))] = v
	return nil
}

func main() {
	botFile := flag.String("bot", "", "Bot yaml file; the default bot is used if empty")
	chartFile := flag.String("chart", "", "Write the weapon spin-up chart to this PNG file")
	whine := flag.Bool("whine", false, "Play the weapon spin-up whine")
	wavFile := flag.String("wav", "", "Write the weapon spin-up whine to this wav file")
	save := flag.Bool("save", false, "Write the edited bot back to the -bot file")
	listFields := flag.Bool("fields", false, "List the fields accepted by -set and exit")
	var sets setFlags
	flag.Var(&sets, "set", "Edit a field, e.g. -set battery.cells=6 (repeatable)")
	flag.Parse()

	if *listFields {
		for _, f := range bot.Fields() {
			fmt.Println(f)
		}
		return
	}

	cfg := bot.Default()
	if *botFile != "" {
		var err error
		cfg, err = garage.LoadBot(*botFile)
		if err != nil {
			log.Fatalf("Failed to load bot: %v", err)
		}
	}

	if len(sets.patch) > 0 {
		var err error
		cfg, err = bot.ApplyEdit(cfg, sets.patch)
		if err != nil {
			log.Fatalf("Failed to apply edits: %v", err)
		}
	}

	if *save {
		if *botFile == "" {
			log.Fatal("-save needs -bot")
		}
		if err := garage.SaveBot(*botFile, cfg); err != nil {
			log.Fatalf("Failed to save bot: %v", err)
		}
		fmt.Println("Saved", *botFile)
	}

	computed := bot.Compute(cfg)
	if err := report.Write(os.Stdout, computed); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	if *chartFile != "" {
		title := fmt.Sprintf("%s spin-up", cfg.Name)
		if err := chart.SavePNG(*chartFile, chart.WeaponSeries(cfg), chart.Options{Title: title}); err != nil {
			log.Fatalf("Failed to write chart: %v", err)
		}
		fmt.Println("Wrote", *chartFile)
	}

	if *wavFile != "" {
		w := sound.WeaponWhine(cfg, time.Second)
		if err := sound.WriteWAV(*wavFile, sound.SampleRate, w.Streamer(sound.SampleRate)); err != nil {
			log.Fatalf("Failed to write whine: %v", err)
		}
		fmt.Println("Wrote", *wavFile)
	}

	if *whine {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		registerSignalHandlers(cancel)

		w := sound.WeaponWhine(cfg, time.Second)
		fmt.Printf("Playing %.2fs of whine\n", w.Duration().Seconds())
		if err := sound.Play(ctx, sound.SampleRate, w.Streamer(sound.SampleRate)); err != nil {
			log.Fatalf("Failed to play whine: %v", err)
		}
	}
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to stop playback.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
	}()
}
