// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cartridge implements an NROM (mapper 0) PRG-ROM device
// satisfying cpu6502.Device, enough to exercise the bus's device-mapping
// contract with something other than RAM. It takes raw PRG bytes
// directly; iNES file parsing is out of scope.
package cartridge

// Mapper resolves a window-local CPU address (the bus hands devices the
// offset from their mapping's start) into an offset within the PRG-ROM
// image. NROM is the only implementation here; later mappers would plug
// in behind the same interface.
type Mapper interface {
	MapRead(addr uint16) (offset uint32, ok bool)
	MapWrite(addr uint16) (offset uint32, ok bool)
}

// NROM is mapper 0: 16KB PRG is mirrored across both halves of the 32KB
// CPU window; 32KB PRG fills it exactly.
type NROM struct {
	numPRGBanks uint8
}

// NewNROM returns an NROM mapper for a cartridge with the given number
// of 16KB PRG-ROM banks (1 or 2).
func NewNROM(numPRGBanks uint8) *NROM {
	return &NROM{numPRGBanks: numPRGBanks}
}

func (m *NROM) mask() uint16 {
	if m.numPRGBanks > 1 {
		return 0x7FFF
	}
	return 0x3FFF
}

func (m *NROM) MapRead(addr uint16) (uint32, bool) {
	return uint32(addr & m.mask()), true
}

func (m *NROM) MapWrite(addr uint16) (uint32, bool) {
	// PRG-ROM is read-only; NROM never accepts CPU writes.
	return 0, false
}

// Cartridge is a PRG-ROM-backed bus device, meant to be mapped at the
// NES's $8000-$FFFF window. It implements cpu6502.Device directly: Read
// resolves through the mapper, Write is a no-op (NROM has nowhere
// writable on the CPU side).
type Cartridge struct {
	prg    []uint8
	mapper Mapper
}

// New returns a Cartridge over prg, using an NROM mapper sized to prg's
// length (16KB or 32KB).
func New(prg []uint8) *Cartridge {
	banks := uint8(1)
	if len(prg) > 16*1024 {
		banks = 2
	}
	return &Cartridge{prg: prg, mapper: NewNROM(banks)}
}

func (c *Cartridge) Read(addr uint16) uint8 {
	off, ok := c.mapper.MapRead(addr)
	if !ok || int(off) >= len(c.prg) {
		return 0
	}
	return c.prg[off]
}

func (c *Cartridge) Write(addr uint16, v uint8) {
	// no-op: PRG-ROM
}
