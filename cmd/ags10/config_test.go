package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/physic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ags10.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
adapter: gobot
bus: 0
address: 0x2b
speed: 15kHz
listen: ":9999"
interval: 1m
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gobot", cfg.Adapter)
	require.NotNil(t, cfg.Bus)
	assert.Equal(t, 0, *cfg.Bus)
	require.NotNil(t, cfg.Address)
	assert.Equal(t, uint8(0x2b), *cfg.Address)
	assert.Equal(t, "15kHz", cfg.Speed)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, time.Minute, cfg.Interval)
}

func TestLoadConfigErrors(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &fileConfig{}, cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "could not open config file")

	_, err = loadConfig(writeConfig(t, "adress: 0x1a\n"))
	assert.ErrorContains(t, err, "could not decode config file")
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want byte
		err  string
	}{
		{in: "0x1a", want: 0x1a},
		{in: "26", want: 0x1a},
		{in: "0b0101011", want: 0x2b},
		{in: "0x7f", want: 0x7f},
		{in: "0x80", err: "not a 7-bit address"},
		{in: "0x100", err: "invalid i2c address"},
		{in: "sensor", err: "invalid i2c address"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAddress(tt.in)
			if tt.err != "" {
				assert.ErrorContains(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// resolveWith runs a throwaway app carrying the bus flags and returns the
// resolved settings.
func resolveWith(t *testing.T, cfg *fileConfig, args ...string) (busConfig, error) {
	t.Helper()
	var bc busConfig
	var resolveErr error
	app := cli.NewApp()
	app.Flags = busFlags
	app.Metadata = map[string]interface{}{metadataConfig: cfg}
	app.Action = func(c *cli.Context) error {
		bc, resolveErr = resolveBusConfig(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"ags10"}, args...)))
	return bc, resolveErr
}

func TestResolveBusConfigDefaults(t *testing.T) {
	bc, err := resolveWith(t, &fileConfig{})
	require.NoError(t, err)
	assert.Equal(t, busConfig{
		Adapter: adapterPeriph,
		Device:  "/dev/i2c-1",
		Bus:     -1,
		Address: 0x1a,
		Speed:   10 * physic.KiloHertz,
	}, bc)
}

func TestResolveBusConfigFromFile(t *testing.T) {
	bus := 2
	addr := uint8(0x2b)
	cfg := &fileConfig{Adapter: adapterGobot, Bus: &bus, Address: &addr, Speed: "15kHz"}

	bc, err := resolveWith(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, adapterGobot, bc.Adapter)
	assert.Equal(t, 2, bc.Bus)
	assert.Equal(t, byte(0x2b), bc.Address)
	assert.Equal(t, 15*physic.KiloHertz, bc.Speed)

	bc, err = resolveWith(t, cfg, "--adapter", adapterMCP2221, "--bus", "1", "--address", "0x30", "--speed", "5kHz")
	require.NoError(t, err)
	assert.Equal(t, adapterMCP2221, bc.Adapter)
	assert.Equal(t, 1, bc.Bus)
	assert.Equal(t, byte(0x30), bc.Address)
	assert.Equal(t, 5*physic.KiloHertz, bc.Speed)
}

func TestResolveBusConfigErrors(t *testing.T) {
	addr := uint8(0x90)
	_, err := resolveWith(t, &fileConfig{Address: &addr})
	assert.ErrorContains(t, err, "not a 7-bit address")

	_, err = resolveWith(t, &fileConfig{}, "--address", "0xff")
	assert.ErrorContains(t, err, "not a 7-bit address")

	_, err = resolveWith(t, &fileConfig{}, "--speed", "fast")
	assert.ErrorContains(t, err, "invalid bus speed")
}
