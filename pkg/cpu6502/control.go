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

const stackBase uint16 = 0x0100

func (c *CPU) push(v uint8) error {
	err := c.bus.Write(stackBase+uint16(c.S), v)
	c.S--
	return err
}

func (c *CPU) pull() (uint8, error) {
	c.S++
	return c.bus.Read(stackBase + uint16(c.S))
}

func (c *CPU) buildPush(value func(c *CPU) uint8) []step {
	return []step{
		func(c *CPU) error {
			// dummy read of next opcode byte before the push
			_, err := c.bus.Read(c.PC)
			return err
		},
		func(c *CPU) error {
			return c.push(value(c))
		},
	}
}

func (c *CPU) buildPull(apply func(c *CPU, v uint8)) []step {
	return []step{
		func(c *CPU) error {
			_, err := c.bus.Read(c.PC)
			return err
		},
		func(c *CPU) error {
			// dummy read of the stack at the pre-increment S
			_, err := c.bus.Read(stackBase + uint16(c.S))
			return err
		},
		func(c *CPU) error {
			v, err := c.pull()
			if err != nil {
				return err
			}
			apply(c, v)
			return nil
		},
	}
}

func branchTaken(c *CPU, op Op) bool {
	switch op {
	case OpBCC:
		return !c.getFlag(FlagCarry)
	case OpBCS:
		return c.getFlag(FlagCarry)
	case OpBEQ:
		return c.getFlag(FlagZero)
	case OpBNE:
		return !c.getFlag(FlagZero)
	case OpBMI:
		return c.getFlag(FlagNegative)
	case OpBPL:
		return !c.getFlag(FlagNegative)
	case OpBVC:
		return !c.getFlag(FlagOverflow)
	case OpBVS:
		return c.getFlag(FlagOverflow)
	}
	return false
}

// buildBranch: one cycle reads the offset byte; if untaken, the
// instruction is already complete. If taken, one extra cycle adds the
// offset with the PC's low byte; if that carries into a new page, a
// further cycle fixes up the high byte.
func (c *CPU) buildBranch(op Op) []step {
	return []step{
		func(c *CPU) error {
			offset, err := c.fetchByte()
			if err != nil {
				return err
			}
			c.branchOffset = offset
			c.branchTaken = branchTaken(c, op)
			if !c.branchTaken {
				c.queue = nil
			}
			return nil
		},
		func(c *CPU) error {
			// speculative dummy fetch of the following opcode byte,
			// taken on faith by real hardware before the PC is fixed
			if _, err := c.bus.Read(c.PC); err != nil {
				return err
			}
			oldPC := c.PC
			signed := int16(int8(c.branchOffset))
			target := uint16(int32(oldPC) + int32(signed))
			c.PC = (oldPC & 0xFF00) | (target & 0x00FF)
			c.branchTarget = target
			c.branchPageCrossed = (target & 0xFF00) != (oldPC & 0xFF00)
			if !c.branchPageCrossed {
				c.queue = nil
			}
			return nil
		},
		func(c *CPU) error {
			// dummy fetch at the not-yet-corrected target (old page, new
			// low byte); only after it does the high byte get fixed up.
			if _, err := c.bus.Read(c.PC); err != nil {
				return err
			}
			c.PC = c.branchTarget
			return nil
		},
	}
}

// buildJSR: push the return address (PC of the last operand byte) high
// then low byte, with the internal stack-peek cycle the reference
// hardware spends between reading the low operand byte and the high one.
func (c *CPU) buildJSR() []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			_, err := c.bus.Read(stackBase + uint16(c.S))
			return err
		},
		func(c *CPU) error {
			return c.push(uint8(c.PC >> 8))
		},
		func(c *CPU) error {
			return c.push(uint8(c.PC))
		},
		func(c *CPU) error {
			hi, err := c.fetchByte()
			if err != nil {
				return err
			}
			c.PC = uint16(hi)<<8 | c.buf
			return nil
		},
	}
}

func (c *CPU) buildRTS() []step {
	return []step{
		func(c *CPU) error {
			_, err := c.bus.Read(c.PC)
			return err
		},
		func(c *CPU) error {
			_, err := c.bus.Read(stackBase + uint16(c.S))
			return err
		},
		func(c *CPU) error {
			lo, err := c.pull()
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			hi, err := c.pull()
			if err != nil {
				return err
			}
			c.PC = uint16(hi)<<8 | uint16(c.addrLo)
			return nil
		},
		func(c *CPU) error {
			_, err := c.bus.Read(c.PC)
			if err != nil {
				return err
			}
			c.PC++
			return nil
		},
	}
}

func (c *CPU) buildRTI() []step {
	return []step{
		func(c *CPU) error {
			_, err := c.bus.Read(c.PC)
			return err
		},
		func(c *CPU) error {
			_, err := c.bus.Read(stackBase + uint16(c.S))
			return err
		},
		func(c *CPU) error {
			p, err := c.pull()
			if err != nil {
				return err
			}
			c.P = (p &^ FlagBreak) | FlagUnused
			return nil
		},
		func(c *CPU) error {
			lo, err := c.pull()
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			hi, err := c.pull()
			if err != nil {
				return err
			}
			c.PC = uint16(hi)<<8 | uint16(c.addrLo)
			return nil
		},
	}
}

// buildBRK builds the software-interrupt sequence. NMI/IRQ/RESET follow
// the same push/vector shape but are built separately in interrupt.go,
// since BRK always reads its vector from 0xFFFE/0xFFFF, always sets
// FlagBreak in the pushed status, and advances PC past its padding byte.
func (c *CPU) buildBRK() []step {
	return []step{
		func(c *CPU) error {
			// the padding byte BRK consumes and discards
			_, err := c.fetchByte()
			return err
		},
		func(c *CPU) error {
			return c.push(uint8(c.PC >> 8))
		},
		func(c *CPU) error {
			return c.push(uint8(c.PC))
		},
		func(c *CPU) error {
			return c.push(c.P | FlagBreak | FlagUnused)
		},
		func(c *CPU) error {
			lo, err := c.bus.Read(0xFFFE)
			c.addrLo = lo
			if err == nil {
				c.setFlag(FlagInterrupt, true)
			}
			return err
		},
		func(c *CPU) error {
			hi, err := c.bus.Read(0xFFFF)
			if err != nil {
				return err
			}
			c.PC = uint16(hi)<<8 | uint16(c.addrLo)
			return nil
		},
	}
}
