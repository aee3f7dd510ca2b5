package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ags10"
	"github.com/mklimuk/ags10/cmd/ags10/console"
)

var version string
var commit string
var date string

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := cli.NewApp()
	app.Name = "ags10"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", version, date, commit)
	app.Usage = "AGS10 TVOC sensor cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging and frame dumps",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML file with adapter and sensor settings",
			EnvVars: []string{"AGS10_CONFIG"},
		},
	}
	app.Before = func(c *cli.Context) error {
		setupLogging(c.Bool("verbose"))
		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return console.Usage(err)
		}
		c.App.Metadata = map[string]interface{}{metadataConfig: cfg}
		return nil
	}
	// exit codes are returned from run, not through os.Exit inside the app
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = cli.Commands{
		&sensorCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	err := app.Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			slog.Error("command failed", "error", err)
			return exerr.ExitCode()
		}
		slog.Error("unexpected error", "error", err)
		return 1
	}
	return 0
}

func setupLogging(verbose bool) {
	charm := chlog.NewWithOptions(os.Stderr, chlog.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "ags10",
	})
	charm.SetColorProfile(termenv.TrueColor)
	charm.SetLevel(chlog.InfoLevel)
	if verbose {
		charm.SetLevel(chlog.DebugLevel)
	}
	slog.SetDefault(slog.New(charm))
}

// commandContext carries the verbose flag down to the transports.
func commandContext(c *cli.Context) context.Context {
	return ags10.WithVerbose(c.Context, c.Bool("verbose"))
}
