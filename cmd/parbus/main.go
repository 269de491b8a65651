// Command parbus counts 0..255 on an 8-bit parallel bus with a strobe
// line, slowly enough to follow on LEDs or a logic analyser.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/host/v3"

	"github.com/coreman2200/arcaluminis-pio/internal/config"
	"github.com/coreman2200/arcaluminis-pio/internal/encoder"
	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pattern"
	"github.com/coreman2200/arcaluminis-pio/internal/pio"
	"github.com/coreman2200/arcaluminis-pio/internal/producer"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "sim", "driver: sim | gpio")
		freq       = flag.String("freq", "2kHz", "sequencer frequency")
		variant    = flag.String("variant", "concurrent", "clock variant: concurrent | settled")
		pace       = flag.Duration("pace", 50*time.Millisecond, "pause after each byte")
		hold       = flag.Duration("hold", time.Second, "pause before clearing the bus")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = config.Default()
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Driver = *driver
		case "freq":
			cfg.Parallel.Freq = *freq
		case "variant":
			cfg.Parallel.Variant = *variant
		case "pace":
			cfg.Parallel.Pace = *pace
		}
	})
	if cfg.Driver != "sim" && cfg.Driver != "gpio" {
		log.Fatal().Str("driver", cfg.Driver).Msg("parallel bus runs on sim or gpio only")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	v, err := encoder.ParseVariant(cfg.Parallel.Variant)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	f, err := config.ParseFreq(cfg.Parallel.Freq)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	names := append(append([]string{}, cfg.Parallel.DataPins...), cfg.Parallel.ClockPin)
	var pins []gpio.PinOut
	mc := pio.Config{Freq: f}
	if cfg.Driver == "gpio" {
		if _, err := host.Init(); err != nil {
			log.Fatal().Err(err).Msg("host init failed")
		}
		if pins, err = config.HostPins(names...); err != nil {
			log.Fatal().Err(err).Msg("pin lookup failed")
		}
	} else {
		var raw []*gpiotest.Pin
		pins, raw = config.SimPins(names...)
		// Show each byte as it is strobed in.
		mc.Probe = strobeLogger(raw)
	}
	if mc.Pins, err = pio.NewBank(pins...); err != nil {
		log.Fatal().Err(err).Msg("pin bank")
	}
	t, err := pio.NewTicker(f)
	if err != nil {
		log.Fatal().Err(err).Msg("clock")
	}
	defer t.Stop()
	mc.Clock = t

	fifo, err := pio.NewFIFO[model.BusWord](cfg.Parallel.FIFODepth)
	if err != nil {
		log.Fatal().Err(err).Msg("fifo")
	}
	m, err := pio.Start(context.Background(), encoder.NewParallel(fifo, v), mc)
	if err != nil {
		log.Fatal().Err(err).Msg("sequencer start failed")
	}
	log.Info().Str("driver", cfg.Driver).Str("variant", v.String()).Str("freq", f.String()).Msg("bus started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := &producer.Bus{Ch: pio.NewPort(fifo, m), Pace: cfg.Parallel.Pace}
	err = run(ctx, bus, *hold)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("bus run failed")
	}

	// Leave the bus at zero.
	cctx, cancel := context.WithTimeout(context.Background(), time.Second)
	bus.Pace = 0
	if cerr := bus.Send(cctx, 0); cerr == nil {
		_ = bus.Flush(cctx)
	}
	cancel()
	if derr := m.Disable(); derr != nil {
		log.Warn().Err(derr).Msg("disable")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

func run(ctx context.Context, bus *producer.Bus, hold time.Duration) error {
	if err := bus.Send(ctx, pattern.Ramp()...); err != nil {
		return err
	}
	if err := bus.Flush(ctx); err != nil {
		return err
	}
	return producer.WallSleeper{}.Sleep(ctx, hold)
}

// strobeLogger reads the data pins back on every rising clock edge.
func strobeLogger(raw []*gpiotest.Pin) pio.Probe {
	clk := model.BusWidth
	var prev gpio.Level
	return func(cycle uint64, l pio.Levels) {
		c := l.Get(clk)
		if c && !prev {
			var b model.BusWord
			for i := 0; i < model.BusWidth; i++ {
				if raw[i].Read() {
					b |= 1 << uint(i)
				}
			}
			log.Debug().Uint64("cycle", cycle).Uint8("byte", uint8(b)).Msg("strobe")
		}
		prev = c
	}
}
