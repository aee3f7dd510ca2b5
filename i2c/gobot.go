package i2c

import (
	"context"
	"fmt"

	gobot "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/ags10"
)

var _ ags10.I2CBus = &GobotBus{}

// GobotBus adapts any gobot I2C connector (board adaptor) to ags10.I2CBus.
// Connections are resolved per address so the driver can follow an address
// change.
type GobotBus struct {
	connector gobot.Connector
	bus       int
}

// NewGobotBus uses the given bus number, or the connector's default bus when
// bus is negative.
func NewGobotBus(connector gobot.Connector, bus int) *GobotBus {
	if bus < 0 {
		bus = connector.DefaultI2cBus()
	}
	return &GobotBus{connector: connector, bus: bus}
}

func (b *GobotBus) conn(address byte) (gobot.Connection, error) {
	conn, err := b.connector.GetI2cConnection(int(address), b.bus)
	if err != nil {
		return nil, fmt.Errorf("could not get i2c connection to %x on bus %d: %w", address, b.bus, err)
	}
	return conn, nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.conn(address)
	if err != nil {
		return err
	}
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.conn(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}
