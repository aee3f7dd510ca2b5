package i2c

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/ags10"
	"github.com/mklimuk/ags10/air"
)

var noDelay = ags10.DelayFunc(func(time.Duration) {})

func TestGenericBus_AGS10Transactions(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// firmware version
			{Addr: 0x1A, W: []byte{0x11}},
			{Addr: 0x1A, R: []byte{0x00, 0x00, 0x00, 0x0B, 0x3D}},
			// status + TVOC
			{Addr: 0x1A, W: []byte{0x00}},
			{Addr: 0x1A, R: []byte{0x00, 0x00, 0x03, 0xE8, 0x82}},
			// gas resistance
			{Addr: 0x1A, W: []byte{0x20}},
			{Addr: 0x1A, R: []byte{0x00, 0x01, 0x86, 0xA0, 0x14}},
			// address change, then a read on the new address
			{Addr: 0x1A, W: []byte{0x21, 0x2B, 0xD4, 0x2B, 0xD4, 0x00}},
			{Addr: 0x2B, W: []byte{0x11}},
			{Addr: 0x2B, R: []byte{0x00, 0x00, 0x00, 0x0B, 0x3D}},
		},
	}
	bus := newGenericBus(playback)
	require.NoError(t, bus.SetSpeed(10*physic.KiloHertz))
	s := air.NewAGS10(bus, air.WithDelayer(noDelay))
	ctx := context.Background()

	ver, err := s.FirmwareVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), ver)

	ppb, err := s.TVOC(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), ppb)

	ohms, err := s.GasResistance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(10_000_000), ohms)

	require.NoError(t, s.SetAddress(ctx, 0x2B))
	ver, err = s.FirmwareVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), ver)

	require.NoError(t, bus.Close())
}

func TestGenericBus_Errors(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x1A, W: []byte{0x11}}},
		DontPanic: true,
	}
	bus := newGenericBus(playback)
	ctx := context.Background()

	// unexpected write content
	err := bus.WriteToAddr(ctx, 0x1A, []byte{0x20})
	assert.ErrorContains(t, err, "could not write to i2c bus 1a")

	// playback exhausted
	err = bus.ReadFromAddr(ctx, 0x1A, make([]byte, 5))
	assert.ErrorContains(t, err, "could not read from i2c bus 1a")
}
