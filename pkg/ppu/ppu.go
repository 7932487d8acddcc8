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

// Package ppu stubs out the 2C02's 8-register CPU-visible window. Full
// rendering is an explicit non-goal; this exists so the bus contract has
// a second, differently-shaped device to exercise besides flat RAM.
package ppu

// PPU is the CPU-facing register window: 8 registers mirrored every 8
// bytes across its mapped range, the way the real chip is wired.
type PPU struct {
	reg     [8]uint8
	touched [8]bool
}

// New returns a PPU with all registers zeroed.
func New() *PPU {
	return &PPU{}
}

func (p *PPU) Read(addr uint16) uint8 {
	i := addr & 0x0007
	p.touched[i] = true
	return p.reg[i]
}

func (p *PPU) Write(addr uint16, v uint8) {
	i := addr & 0x0007
	p.reg[i] = v
	p.touched[i] = true
}

// Touched reports whether register i (0-7) has been read or written
// since the PPU was created or ResetTouched was called. Used by tests
// that want to confirm a dummy cycle actually reached the device.
func (p *PPU) Touched(i int) bool {
	return p.touched[i]
}

// ResetTouched clears the touched bits.
func (p *PPU) ResetTouched() {
	p.touched = [8]bool{}
}
