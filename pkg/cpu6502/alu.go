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

// Decimal mode is explicitly out of scope; ADC/SBC always run in binary
// mode regardless of FlagDecimal, matching the NES 2A03's wired-off BCD.

func (c *CPU) adc(v uint8) {
	carry := uint16(0)
	if c.getFlag(FlagCarry) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.setFlag(FlagCarry, sum > 0xFF)
	c.setFlag(FlagOverflow, (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) sbc(v uint8) {
	c.adc(v ^ 0xFF)
}

func (c *CPU) and(v uint8) {
	c.A &= v
	c.setZN(c.A)
}

func (c *CPU) ora(v uint8) {
	c.A |= v
	c.setZN(c.A)
}

func (c *CPU) eor(v uint8) {
	c.A ^= v
	c.setZN(c.A)
}

func (c *CPU) bit(v uint8) {
	c.setFlag(FlagZero, c.A&v == 0)
	c.setFlag(FlagOverflow, v&0x40 != 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
}

func (c *CPU) cmp(reg, v uint8) {
	diff := uint16(reg) - uint16(v)
	c.setFlag(FlagCarry, reg >= v)
	c.setZN(uint8(diff))
}

func (c *CPU) asl(v uint8) uint8 {
	c.setFlag(FlagCarry, v&0x80 != 0)
	r := v << 1
	c.setZN(r)
	return r
}

func (c *CPU) lsr(v uint8) uint8 {
	c.setFlag(FlagCarry, v&0x01 != 0)
	r := v >> 1
	c.setZN(r)
	return r
}

func (c *CPU) rol(v uint8) uint8 {
	oldCarry := uint8(0)
	if c.getFlag(FlagCarry) {
		oldCarry = 1
	}
	c.setFlag(FlagCarry, v&0x80 != 0)
	r := (v << 1) | oldCarry
	c.setZN(r)
	return r
}

func (c *CPU) ror(v uint8) uint8 {
	oldCarry := uint8(0)
	if c.getFlag(FlagCarry) {
		oldCarry = 0x80
	}
	c.setFlag(FlagCarry, v&0x01 != 0)
	r := (v >> 1) | oldCarry
	c.setZN(r)
	return r
}

func (c *CPU) dec(v uint8) uint8 {
	r := v - 1
	c.setZN(r)
	return r
}

func (c *CPU) inc(v uint8) uint8 {
	r := v + 1
	c.setZN(r)
	return r
}
