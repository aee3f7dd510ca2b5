package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/ags10/air"
	"github.com/mklimuk/ags10/cmd/ags10/console"
	"github.com/mklimuk/ags10/metrics"
)

var sensorCmd = cli.Command{
	Name:    "sensor",
	Aliases: []string{"s"},
	Usage:   "talk to an AGS10 sensor",
	Subcommands: []*cli.Command{
		&sensorReadCmd,
		&sensorVersionCmd,
		&sensorResistanceCmd,
		&sensorTVOCCmd,
		&sensorAddressCmd,
		&sensorServeCmd,
	},
}

// withSensor opens the configured bus, runs fn against the sensor and
// releases the bus.
func withSensor(c *cli.Context, fn func(ctx context.Context, s *air.AGS10) error) error {
	ctx := commandContext(c)
	bc, err := resolveBusConfig(c)
	if err != nil {
		return console.Usage(err)
	}
	bus, release, err := openBus(ctx, bc)
	if err != nil {
		return console.Fail("bus error", err)
	}
	defer release()
	return fn(ctx, air.NewAGS10(bus, air.WithAddress(bc.Address)))
}

type readings struct {
	Address         string `yaml:"address"`
	FirmwareVersion uint32 `yaml:"firmware_version"`
	ResistanceOhms  uint32 `yaml:"gas_resistance_ohms"`
	TVOCppb         uint32 `yaml:"tvoc_ppb"`
	Ready           bool   `yaml:"ready"`
}

type readingSource interface {
	Address() byte
	FirmwareVersion(ctx context.Context) (uint32, error)
	GasResistance(ctx context.Context) (uint32, error)
	Measure(ctx context.Context) (air.Reading, error)
}

func readAll(ctx context.Context, s readingSource) (readings, error) {
	r := readings{Address: fmt.Sprintf("%#x", s.Address())}
	var err error
	r.FirmwareVersion, err = s.FirmwareVersion(ctx)
	if err != nil {
		return r, fmt.Errorf("error reading version: %w", err)
	}
	r.ResistanceOhms, err = s.GasResistance(ctx)
	if err != nil {
		return r, fmt.Errorf("error reading resistance: %w", err)
	}
	m, err := s.Measure(ctx)
	if err != nil {
		return r, fmt.Errorf("error getting TVOC read: %w", err)
	}
	r.TVOCppb = m.TVOC
	r.Ready = m.Status.Ready()
	return r, nil
}

func printReadings(w io.Writer, r readings, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(r)
	case "text":
		_, err := fmt.Fprintf(w, "address: %s\nversion: %d\nresistance: %d ohm\ntvoc: %d ppb\n", r.Address, r.FirmwareVersion, r.ResistanceOhms, r.TVOCppb)
		if err == nil && !r.Ready {
			_, err = fmt.Fprintf(w, "%s sensor is pre-heating, tvoc not reliable yet\n", console.PictoWarn)
		}
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

var sensorReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read firmware version, gas resistance and TVOC",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "output format: text or yaml",
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.AGS10) error {
			r, err := readAll(ctx, s)
			if err != nil {
				return console.Exit(console.ExitFailure, "%s", console.Red(err))
			}
			err = printReadings(console.Writer(), r, c.String("format"))
			if err != nil {
				return console.Fail("output error", err)
			}
			return nil
		})
	},
}

var sensorVersionCmd = cli.Command{
	Name:  "version",
	Usage: "read firmware version",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.AGS10) error {
			v, err := s.FirmwareVersion(ctx)
			if err != nil {
				return console.Fail("error reading version", err)
			}
			console.Printf("version: %d\n", v)
			return nil
		})
	},
}

var sensorResistanceCmd = cli.Command{
	Name:    "resistance",
	Aliases: []string{"res"},
	Usage:   "read gas resistance in ohms",
	Flags:   busFlags,
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.AGS10) error {
			ohms, err := s.GasResistance(ctx)
			if err != nil {
				return console.Fail("error reading resistance", err)
			}
			console.PInfof(console.PictoGauge, "%s ohm", console.White(ohms))
			return nil
		})
	},
}

var sensorTVOCCmd = cli.Command{
	Name:  "tvoc",
	Usage: "read TVOC concentration in ppb",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.AGS10) error {
			m, err := s.Measure(ctx)
			if err != nil {
				return console.Fail("error getting TVOC read", err)
			}
			if !m.Status.Ready() {
				console.Warnf("sensor is pre-heating (status %#x)", byte(m.Status))
			}
			console.PInfof(console.PictoLeaf, "%s ppb", console.TVOC(m.TVOC))
			return nil
		})
	},
}

var sensorAddressCmd = cli.Command{
	Name:      "address",
	Aliases:   []string{"addr"},
	Usage:     "change the sensor i2c address",
	ArgsUsage: "<new address>",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "do not ask for confirmation",
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(console.ExitUsage, "expected 1 argument, got %d", c.NArg())
		}
		newAddr, err := parseAddress(c.Args().First())
		if err != nil {
			return console.Usage(err)
		}
		return withSensor(c, func(ctx context.Context, s *air.AGS10) error {
			if !c.Bool("yes") {
				ok, err := console.Confirm(fmt.Sprintf("move sensor from %#x to %#x?", s.Address(), newAddr))
				if err != nil {
					return console.Fail("prompt error", err)
				}
				if !ok {
					console.Infof("address unchanged")
					return nil
				}
			}
			err := s.SetAddress(ctx, newAddr)
			if err != nil {
				return console.Fail("error changing address", err)
			}
			console.PInfof(console.PictoPin, "sensor now at %s; power cycle it before further use", console.Green(fmt.Sprintf("%#x", s.Address())))
			return nil
		})
	},
}

var sensorServeCmd = cli.Command{
	Name:  "serve",
	Usage: "poll the sensor and expose readings as Prometheus metrics",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Value:   ":9110",
			Usage:   "address to listen on for HTTP requests",
			EnvVars: []string{"AGS10_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "interval",
			Value:   30 * time.Second,
			Usage:   "time between sensor reads",
			EnvVars: []string{"AGS10_INTERVAL"},
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		cfg := configFrom(c)
		listen := stringSetting(c, "listen", cfg.Listen)
		interval := c.Duration("interval")
		if !c.IsSet("interval") && cfg.Interval > 0 {
			interval = cfg.Interval
		}
		return withSensor(c, func(ctx context.Context, s *air.AGS10) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := metrics.NewCollector(s, metrics.WithLabels(prometheus.Labels{
				"address": fmt.Sprintf("%#x", s.Address()),
			}))
			mux := http.NewServeMux()
			mux.Handle("/metrics", collector.Handler())
			srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			slog.InfoContext(ctx, "serving metrics", "listen", listen, "interval", interval)
			err := serveMetrics(ctx, srv, collector, interval)
			if err != nil {
				return console.Exit(console.ExitFailure, "%s", console.Red(err))
			}
			return nil
		})
	},
}

type poller interface {
	Run(ctx context.Context, interval time.Duration) error
}

// serveMetrics runs the HTTP server and the poll loop until ctx is done or the
// server fails. It returns only after the poll loop has exited, so the caller
// may release the bus right away.
func serveMetrics(ctx context.Context, srv *http.Server, p poller, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	polling := make(chan struct{})
	go func() {
		defer close(polling)
		_ = p.Run(ctx, interval)
	}()
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errs:
		serveErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		err := srv.Shutdown(shutdownCtx)
		cancelShutdown()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http shutdown error: %w", err)
		}
	}
	cancel()
	<-polling
	return serveErr
}
