package main

import (
	"context"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/ags10/adapter"
	"github.com/mklimuk/ags10/cmd/ags10/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 adapter maintenance",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "index",
			Value: -1,
			Usage: "adapter index when several are connected",
		},
	},
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Usage: "print the adapter i2c engine status",
	Action: func(c *cli.Context) error {
		return printAdapterStatus(c, (*adapter.MCP2221).Status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel a stuck i2c transfer and free the bus",
	Action: func(c *cli.Context) error {
		return printAdapterStatus(c, (*adapter.MCP2221).ReleaseBus)
	},
}

func printAdapterStatus(c *cli.Context, op func(*adapter.MCP2221, context.Context) (*adapter.MCP2221Status, error)) error {
	a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
	status, err := op(a, commandContext(c))
	if err != nil {
		return console.Fail("adapter communication error", err)
	}
	enc := yaml.NewEncoder(console.Writer())
	defer func() { _ = enc.Close() }()
	err = enc.Encode(status)
	if err != nil {
		return console.Fail("encoding error", err)
	}
	return nil
}
