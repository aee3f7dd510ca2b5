package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// fileConfig is the optional YAML configuration; command line flags that are
// set explicitly win over it.
//
//	adapter: periph
//	device: /dev/i2c-1
//	address: 0x1a
//	speed: 10kHz
//	listen: ":9110"
//	interval: 30s
type fileConfig struct {
	Adapter  string        `yaml:"adapter"`
	Device   string        `yaml:"device"`
	Bus      *int          `yaml:"bus"`
	Address  *uint8        `yaml:"address"`
	Speed    string        `yaml:"speed"`
	Listen   string        `yaml:"listen"`
	Interval time.Duration `yaml:"interval"`
}

const metadataConfig = "config"

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config file: %w", err)
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not decode config file %s: %w", path, err)
	}
	return cfg, nil
}

func configFrom(c *cli.Context) *fileConfig {
	if cfg, ok := c.App.Metadata[metadataConfig].(*fileConfig); ok {
		return cfg
	}
	return &fileConfig{}
}

type busConfig struct {
	Adapter string
	Device  string
	Bus     int
	Address byte
	Speed   physic.Frequency
}

func (b busConfig) String() string {
	return fmt.Sprintf("%s %s (bus %d) addr %#x @ %s", b.Adapter, b.Device, b.Bus, b.Address, b.Speed)
}

// stringSetting returns the flag value if it was set, then the config value,
// then the flag default.
func stringSetting(c *cli.Context, flag, fromConfig string) string {
	if c.IsSet(flag) || fromConfig == "" {
		return c.String(flag)
	}
	return fromConfig
}

func resolveBusConfig(c *cli.Context) (busConfig, error) {
	cfg := configFrom(c)
	bc := busConfig{
		Adapter: stringSetting(c, "adapter", cfg.Adapter),
		Device:  stringSetting(c, "device", cfg.Device),
		Bus:     c.Int("bus"),
	}
	if !c.IsSet("bus") && cfg.Bus != nil {
		bc.Bus = *cfg.Bus
	}

	if !c.IsSet("address") && cfg.Address != nil {
		if *cfg.Address > 0x7F {
			return bc, fmt.Errorf("invalid i2c address %#x in config: not a 7-bit address", *cfg.Address)
		}
		bc.Address = *cfg.Address
	} else {
		addr, err := parseAddress(c.String("address"))
		if err != nil {
			return bc, err
		}
		bc.Address = addr
	}

	err := bc.Speed.Set(stringSetting(c, "speed", cfg.Speed))
	if err != nil {
		return bc, fmt.Errorf("invalid bus speed: %w", err)
	}
	return bc, nil
}

// parseAddress accepts decimal, 0x hex and 0o/0b forms of a 7-bit address.
func parseAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid i2c address %q: %w", s, err)
	}
	if v > 0x7F {
		return 0, fmt.Errorf("invalid i2c address %q: not a 7-bit address", s)
	}
	return byte(v), nil
}
