package air

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport reports that the bus write or read primitive failed.
	ErrTransport = errors.New("transport failure")
	// ErrChecksum reports a reply whose checksum byte does not match its data.
	ErrChecksum = errors.New("crc mismatch")
)

// ChecksumError carries the checksum received from the device and the one
// computed over the data bytes.
type ChecksumError struct {
	Register byte
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("crc mismatch on reg 0x%02x: expected 0x%02x, got 0x%02x", e.Register, e.Expected, e.Actual)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}
