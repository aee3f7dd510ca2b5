package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/ags10"
	"github.com/mklimuk/ags10/adapter"
	"github.com/mklimuk/ags10/i2c"
)

const (
	adapterMCP2221 = "mcp2221"
	adapterPeriph  = "periph"
	adapterGobot   = "gobot"
)

var busFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Value:   adapterPeriph,
		Usage:   "bus adapter: mcp2221, periph (alias generic) or gobot (alias nanopi)",
		EnvVars: []string{"AGS10_ADAPTER"},
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Value:   "/dev/i2c-1",
		Usage:   "i2c device for the periph adapter",
		EnvVars: []string{"AGS10_DEVICE"},
	},
	&cli.IntFlag{
		Name:    "bus",
		Value:   -1,
		Usage:   "i2c bus number for the gobot adapter (-1 for the board default)",
		EnvVars: []string{"AGS10_BUS"},
	},
	&cli.StringFlag{
		Name:    "address",
		Value:   "0x1a",
		Usage:   "sensor i2c address",
		EnvVars: []string{"AGS10_ADDRESS"},
	},
	&cli.StringFlag{
		Name:    "speed",
		Value:   "10kHz",
		Usage:   "i2c clock for the periph adapter; the sensor supports up to 15kHz",
		EnvVars: []string{"AGS10_SPEED"},
	},
}

// openBus returns the transport selected by bc and a function releasing it.
func openBus(ctx context.Context, bc busConfig) (ags10.I2CBus, func(), error) {
	slog.DebugContext(ctx, "opening bus", "bus", bc.String())
	switch bc.Adapter {
	case adapterMCP2221:
		ad := adapter.NewMCP2221()
		err := ad.Init(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return ad, func() {}, nil
	case adapterPeriph, "generic":
		bus, err := i2c.NewGenericBus(bc.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		closeBus := func() {
			if err := bus.Close(); err != nil {
				slog.ErrorContext(ctx, "error closing bus", "error", err)
			}
		}
		err = bus.SetSpeed(bc.Speed)
		if err != nil {
			closeBus()
			return nil, nil, err
		}
		return bus, closeBus, nil
	case adapterGobot, "nanopi":
		npi := nanopi.NewNeoAdaptor()
		err := npi.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		finalize := func() {
			if err := npi.Finalize(); err != nil {
				slog.ErrorContext(ctx, "error finalizing adaptor", "error", err)
			}
		}
		return i2c.NewGobotBus(npi, bc.Bus), finalize, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter %q", bc.Adapter)
	}
}
