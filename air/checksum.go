package air

import "github.com/sigurn/crc8"

// CRC-8 used by Aosong TVOC sensors: x8 + x5 + x4 + 1, MSB first, no final XOR.
const (
	crcPolynomial = 0x31
	crcInit       = 0xFF
)

var crcTable = crc8.MakeTable(crc8.Params{
	Poly:   crcPolynomial,
	Init:   crcInit,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x00,
	Check:  0xF7,
	Name:   "CRC-8/NRSC-5",
})

// Checksum returns the CRC-8 the sensor appends to every data word.
func Checksum(data []byte) byte {
	return crc8.Checksum(data, crcTable)
}
