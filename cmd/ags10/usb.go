package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/karalabe/hid"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ags10/adapter"
	"github.com/mklimuk/ags10/cmd/ags10/console"
)

var usbCmd = cli.Command{
	Name:  "usb",
	Usage: "inspect USB HID devices",
	Subcommands: cli.Commands{
		&usbLsCmd,
		&usbDetectCmd,
	},
}

// knownAdapters maps adapter names to their vendor and product ids.
var knownAdapters = map[string][2]uint16{
	adapterMCP2221: {adapter.VendorID, adapter.ProductID},
}

var usbLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list all HID devices",
	Action: func(c *cli.Context) error {
		listDevices(console.Writer(), hid.Enumerate(0, 0))
		return nil
	},
}

var usbDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "list connected devices usable as bus adapters",
	Action: func(c *cli.Context) error {
		if !hid.Supported() {
			return console.Exit(console.ExitFailure, "%s", console.Red("HID is not supported on this platform"))
		}
		if detectAdapters(console.Writer(), hid.Enumerate(0, 0)) == 0 {
			console.Warnf("no known adapter found")
		}
		return nil
	},
}

func listDevices(out io.Writer, devices []hid.DeviceInfo) {
	w := tabwriter.NewWriter(out, 24, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tMANUFACTURER\tPRODUCT\n")
	for _, dev := range devices {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%#x\t%#x\t%s\t%s\n",
			dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Manufacturer, dev.Product)
	}
	_ = w.Flush()
}

func detectAdapters(out io.Writer, devices []hid.DeviceInfo) int {
	w := tabwriter.NewWriter(out, 24, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(w, "VENDOR\tPRODUCT\tADAPTER\tPATH\n")
	found := 0
	for _, dev := range devices {
		for name, ids := range knownAdapters {
			if ids[0] == dev.VendorID && ids[1] == dev.ProductID {
				_, _ = fmt.Fprintf(w, "%#x\t%#x\t%s\t%s\n", dev.VendorID, dev.ProductID, name, dev.Path)
				found++
			}
		}
	}
	_ = w.Flush()
	return found
}
