// Command neopixel plays a light show on a WS2812 strip through the pulse
// sequencer, or through one of the fallback channels.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/arcaluminis-pio/internal/config"
	"github.com/coreman2200/arcaluminis-pio/internal/encoder"
	"github.com/coreman2200/arcaluminis-pio/internal/led"
	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/monitor"
	"github.com/coreman2200/arcaluminis-pio/internal/pio"
	"github.com/coreman2200/arcaluminis-pio/internal/producer"
	"github.com/coreman2200/arcaluminis-pio/internal/show"
	"github.com/coreman2200/arcaluminis-pio/internal/strip"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "sim", "driver: sim | gpio | spi | console")
		pin        = flag.String("pin", "GPIO12", "strip data pin")
		freq       = flag.String("freq", "4.8MHz", "sequencer frequency")
		length     = flag.Int("length", 90, "pixels on the strip")
		depth      = flag.Int("depth", 8, "TX FIFO depth in words")
		latch      = flag.Duration("latch", 50*time.Microsecond, "reset gap after each frame")
		brightness = flag.Int("brightness", 63, "palette brightness 0..255")
		program    = flag.String("program", "", "show program (YAML); empty plays the demo")
		addr       = flag.String("monitor", "", "monitor listen address, e.g. :8080")
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
	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Driver = *driver
		case "pin":
			cfg.Pulse.Pin = *pin
		case "freq":
			cfg.Pulse.Freq = *freq
		case "length":
			cfg.Pulse.StripLength = *length
		case "depth":
			cfg.Pulse.FIFODepth = *depth
		case "latch":
			cfg.Pulse.Latch = *latch
		case "brightness":
			cfg.Pulse.Brightness = *brightness
		case "program":
			cfg.Program = *program
		case "monitor":
			cfg.Monitor = *addr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	prog := show.Demo()
	if cfg.Program != "" {
		if prog, err = show.LoadProgram(cfg.Program); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Program).Msg("program load failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hub *monitor.Hub
	if cfg.Monitor != "" {
		hub = monitor.New(cfg.Pulse.StripLength)
		hub.Driver = cfg.Driver
	}

	out, err := open(cfg, hub)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Driver).Msg("output init failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	var srv *http.Server
	if hub != nil {
		srv = &http.Server{
			Addr:         cfg.Monitor,
			Handler:      hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		g.Go(func() error {
			log.Info().Str("addr", cfg.Monitor).Msg("monitor starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		defer func() {
			if srv != nil {
				_ = srv.Close()
			}
		}()
		p := show.NewPlayer(nil, show.Hooks{
			OnClip: func(i int, c show.Clip) {
				log.Info().Int("clip", i).Str("pattern", c.Pattern).Msg("clip")
			},
		})
		p.Brightness = cfg.Pulse.Brightness
		if err := p.Load(prog); err != nil {
			return err
		}
		n, err := p.Run(gctx, out.frames)
		log.Info().Int("frames", n).Str("program", prog.Name).Msg("show finished")
		return err
	})
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("show failed")
	}

	// Always leave the strip dark.
	bctx, cancel := context.WithTimeout(context.Background(), time.Second)
	if berr := out.frames.Blank(bctx); berr != nil {
		log.Warn().Err(berr).Msg("blank frame failed")
	}
	cancel()
	if cerr := out.close(); cerr != nil {
		log.Warn().Err(cerr).Msg("close")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

type output struct {
	frames *producer.Frames
	close  func() error
}

func open(cfg *config.Config, hub *monitor.Hub) (*output, error) {
	n := cfg.Pulse.StripLength
	switch cfg.Driver {
	case "spi", "console":
		var (
			c   *led.Channel
			err error
		)
		if cfg.Driver == "spi" {
			if _, err := host.Init(); err != nil {
				return nil, err
			}
			f, ferr := config.ParseFreq(cfg.SPI.Freq)
			if ferr != nil {
				return nil, ferr
			}
			c, err = led.OpenSPI(cfg.SPI.Dev, n, f)
		} else {
			c, err = led.NewConsole(n)
		}
		if err != nil {
			return nil, err
		}
		f := &producer.Frames{Ch: c, Length: n, Latch: cfg.Pulse.Latch}
		if hub != nil {
			f.Tap = func(frame []model.ColorWord) {
				hub.Publish(frame, monitor.Report{Frame: int(f.Sent()), Pixels: len(frame)})
			}
		}
		return &output{frames: f, close: c.Close}, nil
	}
	return openPulse(cfg, hub)
}

// openPulse runs the pulse encoder on a sequencer whose data pin is either a
// host GPIO or an in-memory pin. A decoding strip listens to the pin in both
// cases and feeds the monitor. The sequencer outlives the show context so the
// closing blank frame still goes out after a signal.
func openPulse(cfg *config.Config, hub *monitor.Hub) (*output, error) {
	n := cfg.Pulse.StripLength
	f, err := config.ParseFreq(cfg.Pulse.Freq)
	if err != nil {
		return nil, err
	}
	fifo, err := pio.NewFIFO[model.ColorWord](cfg.Pulse.FIFODepth)
	if err != nil {
		return nil, err
	}
	st, err := strip.New(n, f, cfg.Pulse.Latch)
	if err != nil {
		return nil, err
	}
	st.OnLatch = func(frame []model.ColorWord, r strip.Report) {
		if r.Short(n) || r.Overflow > 0 {
			log.Warn().Int("frame", r.Frame).Int("pixels", r.Pixels).Int("overflow", r.Overflow).Msg("strip latched a bad frame")
		}
		if hub != nil {
			hub.Publish(frame, r)
		}
	}

	mc := pio.Config{Clock: pio.FreeRun{}, Probe: st.Observe, Freq: f}
	var sleep producer.Sleeper
	if cfg.Driver == "gpio" {
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		pins, err := config.HostPins(cfg.Pulse.Pin)
		if err != nil {
			return nil, err
		}
		if mc.Pins, err = pio.NewBank(pins...); err != nil {
			return nil, err
		}
		t, err := pio.NewTicker(f)
		if err != nil {
			return nil, err
		}
		mc.Clock = t
		if f > 100*physic.KiloHertz {
			log.Warn().Str("freq", f.String()).Msg("software clock cannot keep WS2812 timing at this rate")
		}
		sleep = producer.WallSleeper{}
	} else {
		pins, _ := config.SimPins(cfg.Pulse.Pin)
		if mc.Pins, err = pio.NewBank(pins...); err != nil {
			return nil, err
		}
	}

	m, err := pio.Start(context.Background(), encoder.NewPulse(fifo), mc)
	if err != nil {
		return nil, err
	}
	if sleep == nil {
		sleep = pio.CycleSleeper{M: m}
	}
	log.Info().Str("driver", cfg.Driver).Str("pin", cfg.Pulse.Pin).Str("freq", f.String()).Int("length", n).Msg("sequencer started")
	return &output{
		frames: &producer.Frames{Ch: pio.NewPort(fifo, m), Length: n, Latch: cfg.Pulse.Latch, Sleep: sleep},
		close: func() error {
			if t, ok := mc.Clock.(*pio.Ticker); ok {
				defer t.Stop()
			}
			return m.Disable()
		},
	}, nil
}
