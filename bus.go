package ags10

import (
	"context"
	"fmt"
	"time"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
}

// I2CBus is the transport capability the sensor drivers require. Implementations
// own their timeouts: drivers pass the caller's context down and never abort a
// transaction half way through.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// Delayer blocks the calling goroutine for the given duration.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a plain function to the Delayer interface.
type DelayFunc func(d time.Duration)

func (f DelayFunc) Delay(d time.Duration) {
	f(d)
}

// SleepDelayer waits with time.Sleep.
var SleepDelayer Delayer = DelayFunc(time.Sleep)
