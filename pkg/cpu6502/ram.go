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

package cpu6502

// RAM is a flat, byte-addressable memory device. It does its own
// mirroring, per Device's contract that devices own any masking below
// their mapping: every address is taken modulo the RAM's size.
type RAM struct {
	mem []uint8
}

// NewRAM returns a RAM device of the given size, initialized to zero.
func NewRAM(size int) *RAM {
	return &RAM{mem: make([]uint8, size)}
}

// Read returns the byte at addr modulo the RAM's size, so a RAM smaller
// than its mapped range mirrors automatically (used for the NES's 2KB
// internal RAM mapped across an 8KB CPU window).
func (r *RAM) Read(addr uint16) uint8 {
	return r.mem[int(addr)%len(r.mem)]
}

// Write stores v at addr modulo the RAM's size.
func (r *RAM) Write(addr uint16, v uint8) {
	r.mem[int(addr)%len(r.mem)] = v
}

// LoadAt copies data into RAM starting at addr, wrapping via the same
// modulo rule as Read/Write.
func (r *RAM) LoadAt(addr uint16, data []uint8) {
	for i, b := range data {
		r.mem[(int(addr)+i)%len(r.mem)] = b
	}
}
