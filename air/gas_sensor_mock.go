package air

import (
	"context"
)

// ReadingBehaviorFunc produces one reading of a mocked sensor.
type ReadingBehaviorFunc func(ctx context.Context) (uint32, error)

// MockGasSensor is a mock implementation of a gas (TVOC) sensor that uses
// behavior functions to produce results without requiring hardware.
// It mirrors the reading surface of AGS10.
type MockGasSensor struct {
	tvoc       ReadingBehaviorFunc
	resistance ReadingBehaviorFunc
	version    ReadingBehaviorFunc
}

type MockGasSensorOpt func(*MockGasSensor)

func WithResistanceBehavior(behavior ReadingBehaviorFunc) MockGasSensorOpt {
	return func(m *MockGasSensor) {
		m.resistance = behavior
	}
}

func WithVersionBehavior(behavior ReadingBehaviorFunc) MockGasSensorOpt {
	return func(m *MockGasSensor) {
		m.version = behavior
	}
}

// NewMockGasSensor creates a new mock gas sensor. The tvoc behavior is called
// whenever TVOC or Measure is invoked; resistance and version default to 0.
//
// Example usage:
//
//	sensor := NewMockGasSensor(func(ctx context.Context) (uint32, error) { return 750, nil })
func NewMockGasSensor(tvoc ReadingBehaviorFunc, opts ...MockGasSensorOpt) *MockGasSensor {
	zero := func(ctx context.Context) (uint32, error) { return 0, nil }
	m := &MockGasSensor{tvoc: tvoc, resistance: zero, version: zero}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TVOC returns the TVOC reading (in ppb) by calling the behavior function.
// Errors come back with InvalidReading like the real driver.
func (m *MockGasSensor) TVOC(ctx context.Context) (uint32, error) {
	v, err := m.tvoc(ctx)
	if err != nil {
		return InvalidReading, err
	}
	return v & tvocMask, nil
}

// Measure wraps TVOC in a Reading with a ready status.
func (m *MockGasSensor) Measure(ctx context.Context) (Reading, error) {
	v, err := m.TVOC(ctx)
	return Reading{TVOC: v}, err
}

func (m *MockGasSensor) GasResistance(ctx context.Context) (uint32, error) {
	v, err := m.resistance(ctx)
	if err != nil {
		return InvalidReading, err
	}
	return v, nil
}

func (m *MockGasSensor) FirmwareVersion(ctx context.Context) (uint32, error) {
	return m.version(ctx)
}
