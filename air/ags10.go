package air

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/ags10"
)

// AGS10DefaultAddress is the factory 7-bit I2C address of the AGS10.
const AGS10DefaultAddress byte = 0x1A

// Register/command map (per datasheet)
//
//	0x00: status byte followed by the 24-bit TVOC value in ppb
//	0x11: firmware version
//	0x20: gas resistance in units of 0.1 kOhm
//	0x21: address change (write only)
const (
	regTVOCStatus byte = 0x00
	regVersion    byte = 0x11
	regResistance byte = 0x20
	regSetAddress byte = 0x21
)

// Settle delays between the register write and the reply read.
const (
	tvocSettleDelay       = 1000 * time.Millisecond
	versionSettleDelay    = 30 * time.Millisecond
	resistanceSettleDelay = 1000 * time.Millisecond
)

const (
	dataLen  = 4
	frameLen = dataLen + 1

	tvocMask        uint32 = 0x00FFFFFF
	resistanceScale uint32 = 100
)

// InvalidReading is the value returned next to an error by GasResistance, TVOC
// and Measure. The error, not the value, tells whether a read failed.
const InvalidReading uint32 = 0xFFFFFFFF

// Status byte bit definitions:
// Bit0: RDY (0 = ready, 1 = not ready or pre-heat)
// Bit3..1: CI[2:0] data type (000 => TVOC in ppb)
// Bit7..4: reserved
const (
	statusBitRDY  = 0x01
	statusCIMask  = 0x0E
	statusCIShift = 1
)

// Status is the flag byte the sensor puts in front of the TVOC value.
type Status byte

// Ready reports whether the sensor finished its pre-heat stage.
func (s Status) Ready() bool {
	return s&statusBitRDY == 0
}

// DataType returns the CI field; 0 means the value is TVOC in ppb.
func (s Status) DataType() byte {
	return byte(s&statusCIMask) >> statusCIShift
}

// Reading is the decoded content of the status/TVOC register.
type Reading struct {
	Status Status
	// TVOC concentration in ppb.
	TVOC uint32
}

type AGS10Opts struct {
	Address byte
	Delayer ags10.Delayer
	Logger  *slog.Logger
}

type AGS10Opt func(*AGS10Opts)

func WithAddress(address byte) AGS10Opt {
	return func(o *AGS10Opts) {
		o.Address = address
	}
}

// WithDelayer replaces the time.Sleep based settle delay.
func WithDelayer(d ags10.Delayer) AGS10Opt {
	return func(o *AGS10Opts) {
		o.Delayer = d
	}
}

func WithLogger(logger *slog.Logger) AGS10Opt {
	return func(o *AGS10Opts) {
		o.Logger = logger
	}
}

// AGS10 represents Aosong AGS10 TVOC sensor.
// Typical usage:
//
//	s := NewAGS10(bus)
//	ppb, err := s.TVOC(ctx)
//
// Every read is a register write, a settle delay and a 5-byte reply checked
// with CRC-8. Reads block for the whole settle delay (up to one second).
// AGS10 holds no lock: a transaction on one physical address must not be
// interleaved with another, so callers sharing a device synchronize themselves.
// Note: the sensor requires a slow I2C clock (<= 15 kHz).
type AGS10 struct {
	transport ags10.I2CBus
	delay     ags10.Delayer
	logger    *slog.Logger
	addr      byte
}

func NewAGS10(transport ags10.I2CBus, opts ...AGS10Opt) *AGS10 {
	config := AGS10Opts{
		Address: AGS10DefaultAddress,
		Delayer: ags10.SleepDelayer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Delayer == nil {
		config.Delayer = ags10.SleepDelayer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AGS10{
		transport: transport,
		delay:     config.Delayer,
		logger:    logger.With("sensor", "ags10"),
		addr:      config.Address,
	}
}

// Address returns the bus address the sensor is currently talking to.
func (s *AGS10) Address() byte {
	return s.addr
}

// ReadRegister performs a single read transaction: write the register id, wait
// settle, read 4 data bytes and their checksum. The data is returned big-endian
// only if the checksum matches. There is no retry.
func (s *AGS10) ReadRegister(ctx context.Context, reg byte, settle time.Duration) (uint32, error) {
	err := s.transport.WriteToAddr(ctx, s.addr, []byte{reg})
	if err != nil {
		return 0, fmt.Errorf("ags10: write reg 0x%02x failed: %w: %w", reg, ErrTransport, err)
	}

	s.delay.Delay(settle)

	var frame [frameLen]byte
	err = s.transport.ReadFromAddr(ctx, s.addr, frame[:])
	if err != nil {
		return 0, fmt.Errorf("ags10: read reg 0x%02x failed: %w: %w", reg, ErrTransport, err)
	}
	s.logger.DebugContext(ctx, "register read", "addr", fmt.Sprintf("%#x", s.addr), "reg", fmt.Sprintf("%#x", reg), "frame", hex.EncodeToString(frame[:]))

	return decodeFrame(reg, frame)
}

func decodeFrame(reg byte, frame [frameLen]byte) (uint32, error) {
	crc := Checksum(frame[:dataLen])
	if crc != frame[dataLen] {
		return 0, fmt.Errorf("ags10: %w", &ChecksumError{Register: reg, Expected: frame[dataLen], Actual: crc})
	}
	return binary.BigEndian.Uint32(frame[:dataLen]), nil
}

// FirmwareVersion returns the raw firmware version word.
func (s *AGS10) FirmwareVersion(ctx context.Context) (uint32, error) {
	return s.ReadRegister(ctx, regVersion, versionSettleDelay)
}

// GasResistance returns the sensing element resistance in ohms. On failure
// the value is InvalidReading.
func (s *AGS10) GasResistance(ctx context.Context) (uint32, error) {
	raw, err := s.ReadRegister(ctx, regResistance, resistanceSettleDelay)
	if err != nil {
		return InvalidReading, err
	}
	return scaleResistance(raw), nil
}

// TVOC returns the TVOC concentration in ppb with the status byte stripped.
// On failure the value is InvalidReading.
func (s *AGS10) TVOC(ctx context.Context) (uint32, error) {
	r, err := s.Measure(ctx)
	return r.TVOC, err
}

// Measure reads the status/TVOC register and returns both parts. A sensor
// still in pre-heat is not an error; check Status.Ready.
func (s *AGS10) Measure(ctx context.Context) (Reading, error) {
	raw, err := s.ReadRegister(ctx, regTVOCStatus, tvocSettleDelay)
	if err != nil {
		return Reading{TVOC: InvalidReading}, err
	}
	return splitTVOC(raw), nil
}

// scaleResistance converts 0.1 kOhm units to ohms. Overflow wraps like the
// device firmware's own 32-bit arithmetic.
func scaleResistance(raw uint32) uint32 {
	return raw * resistanceScale
}

func splitTVOC(raw uint32) Reading {
	return Reading{
		Status: Status(raw >> 24),
		TVOC:   raw & tvocMask,
	}
}

// SetAddress moves the sensor to a new bus address. The payload repeats the
// address and its complement so the device can reject a corrupted write.
// The handle keeps its old address if the write fails.
func (s *AGS10) SetAddress(ctx context.Context, address byte) error {
	payload := addressPayload(address)
	err := s.transport.WriteToAddr(ctx, s.addr, payload)
	if err != nil {
		return fmt.Errorf("ags10: write reg 0x%02x failed: %w: %w", regSetAddress, ErrTransport, err)
	}
	s.logger.InfoContext(ctx, "address changed", "from", fmt.Sprintf("%#x", s.addr), "to", fmt.Sprintf("%#x", address))
	s.addr = address
	return nil
}

func addressPayload(address byte) []byte {
	return []byte{regSetAddress, address, ^address, address, ^address, 0x00}
}
