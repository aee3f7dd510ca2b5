package main

import (
	"bytes"
	"testing"

	"github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/ags10/adapter"
)

func TestDetectAdapters(t *testing.T) {
	devices := []hid.DeviceInfo{
		{Path: "1-1:1.0", VendorID: 0x046d, ProductID: 0xc52b, Product: "Receiver"},
		{Path: "1-2:1.2", VendorID: adapter.VendorID, ProductID: adapter.ProductID, Product: "MCP2221 USB-I2C/UART Combo"},
	}
	var out bytes.Buffer
	assert.Equal(t, 1, detectAdapters(&out, devices))
	assert.Contains(t, out.String(), "mcp2221")
	assert.Contains(t, out.String(), "1-2:1.2")
	assert.NotContains(t, out.String(), "1-1:1.0")

	out.Reset()
	listDevices(&out, devices)
	assert.Contains(t, out.String(), "Receiver")
	assert.Contains(t, out.String(), "MCP2221 USB-I2C/UART Combo")
}
