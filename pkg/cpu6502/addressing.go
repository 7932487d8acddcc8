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

// Every step performs exactly one bus transaction; the final step of an
// operand-reading sequence also applies the ALU/register effect once the
// last byte is in hand.

// fetchByte reads the byte at PC and advances PC, consuming the cycle.
func (c *CPU) fetchByte() (uint8, error) {
	v, err := c.bus.Read(c.PC)
	if err != nil {
		return 0, err
	}
	c.PC++
	return v, nil
}

// buildMicroOps constructs the remaining steps of the current instruction,
// i.e. everything after the opcode fetch that already happened this tick.
func (c *CPU) buildMicroOps(e opcodeEntry) []step {
	switch e.op {
	case OpUndoc:
		// undocumented opcode: the fetch cycle was the whole instruction
		return nil
	case OpBRK:
		return c.buildBRK()
	case OpJSR:
		return c.buildJSR()
	case OpRTS:
		return c.buildRTS()
	case OpRTI:
		return c.buildRTI()
	case OpPHA:
		return c.buildPush(func(c *CPU) uint8 { return c.A })
	case OpPHP:
		return c.buildPush(func(c *CPU) uint8 { return c.P | FlagBreak | FlagUnused })
	case OpPLA:
		return c.buildPull(func(c *CPU, v uint8) { c.A = v; c.setZN(v) })
	case OpPLP:
		return c.buildPull(func(c *CPU, v uint8) { c.P = (v &^ FlagBreak) | FlagUnused })
	case OpJMP:
		if e.mode == ModeABS {
			return c.buildJMPAbs()
		}
		return c.buildJMPInd()
	case OpBCC, OpBCS, OpBEQ, OpBMI, OpBNE, OpBPL, OpBVC, OpBVS:
		return c.buildBranch(e.op)
	}

	if e.mode == ModeIMP && e.access == AccessNone {
		return c.buildImpliedOp(e.op)
	}

	switch e.access {
	case KindRead:
		return c.buildReadOp(e.mode, e.op)
	case KindWrite:
		return c.buildWriteOp(e.mode, e.op)
	case KindRMW:
		return c.buildRMWOp(e.mode, e.op)
	}
	return nil
}

// buildImpliedOp covers the single-cycle register/flag instructions and
// the accumulator forms of the shift/rotate ops. The one extra cycle is
// the architectural "read next opcode byte, discard it" dummy access.
func (c *CPU) buildImpliedOp(op Op) []step {
	return []step{func(c *CPU) error {
		if _, err := c.bus.Read(c.PC); err != nil {
			return err
		}
		c.applyImplied(op)
		return nil
	}}
}

func (c *CPU) applyImplied(op Op) {
	switch op {
	case OpCLC:
		c.setFlag(FlagCarry, false)
	case OpCLD:
		c.setFlag(FlagDecimal, false)
	case OpCLI:
		c.setFlag(FlagInterrupt, false)
	case OpCLV:
		c.setFlag(FlagOverflow, false)
	case OpSEC:
		c.setFlag(FlagCarry, true)
	case OpSED:
		c.setFlag(FlagDecimal, true)
	case OpSEI:
		c.setFlag(FlagInterrupt, true)
	case OpDEX:
		c.X--
		c.setZN(c.X)
	case OpDEY:
		c.Y--
		c.setZN(c.Y)
	case OpINX:
		c.X++
		c.setZN(c.X)
	case OpINY:
		c.Y++
		c.setZN(c.Y)
	case OpTAX:
		c.X = c.A
		c.setZN(c.X)
	case OpTAY:
		c.Y = c.A
		c.setZN(c.Y)
	case OpTSX:
		c.X = c.S
		c.setZN(c.X)
	case OpTXA:
		c.A = c.X
		c.setZN(c.A)
	case OpTXS:
		c.S = c.X
	case OpTYA:
		c.A = c.Y
		c.setZN(c.A)
	case OpNOP:
		// no effect
	case OpASL:
		c.A = c.asl(c.A)
	case OpLSR:
		c.A = c.lsr(c.A)
	case OpROL:
		c.A = c.rol(c.A)
	case OpROR:
		c.A = c.ror(c.A)
	}
}

func (c *CPU) applyRead(op Op, v uint8) {
	switch op {
	case OpADC:
		c.adc(v)
	case OpSBC:
		c.sbc(v)
	case OpAND:
		c.and(v)
	case OpORA:
		c.ora(v)
	case OpEOR:
		c.eor(v)
	case OpBIT:
		c.bit(v)
	case OpCMP:
		c.cmp(c.A, v)
	case OpCPX:
		c.cmp(c.X, v)
	case OpCPY:
		c.cmp(c.Y, v)
	case OpLDA:
		c.A = v
		c.setZN(c.A)
	case OpLDX:
		c.X = v
		c.setZN(c.X)
	case OpLDY:
		c.Y = v
		c.setZN(c.Y)
	}
}

func (c *CPU) storeValue(op Op) uint8 {
	switch op {
	case OpSTA:
		return c.A
	case OpSTX:
		return c.X
	case OpSTY:
		return c.Y
	}
	return 0
}

func (c *CPU) applyRMW(op Op, v uint8) uint8 {
	switch op {
	case OpASL:
		return c.asl(v)
	case OpLSR:
		return c.lsr(v)
	case OpROL:
		return c.rol(v)
	case OpROR:
		return c.ror(v)
	case OpINC:
		return c.inc(v)
	case OpDEC:
		return c.dec(v)
	}
	return v
}

// --- read-operand addressing ---

func (c *CPU) buildReadOp(mode AddrMode, op Op) []step {
	switch mode {
	case ModeIMM:
		return []step{func(c *CPU) error {
			v, err := c.fetchByte()
			if err != nil {
				return err
			}
			c.applyRead(op, v)
			return nil
		}}
	case ModeZP0:
		return []step{
			func(c *CPU) error {
				lo, err := c.fetchByte()
				c.addr = uint16(lo)
				return err
			},
			func(c *CPU) error {
				v, err := c.bus.Read(c.addr)
				if err != nil {
					return err
				}
				c.applyRead(op, v)
				return nil
			},
		}
	case ModeZPX, ModeZPY:
		return append(c.buildZeroPageIndexed(mode), func(c *CPU) error {
			v, err := c.bus.Read(c.addr)
			if err != nil {
				return err
			}
			c.applyRead(op, v)
			return nil
		})
	case ModeABS:
		return append(c.buildAbsolute(), func(c *CPU) error {
			v, err := c.bus.Read(c.addr)
			if err != nil {
				return err
			}
			c.applyRead(op, v)
			return nil
		})
	case ModeABX:
		return c.buildAbsoluteIndexedRead(c.X, op)
	case ModeABY:
		return c.buildAbsoluteIndexedRead(c.Y, op)
	case ModeIZX:
		return append(c.buildIndexedIndirect(), func(c *CPU) error {
			v, err := c.bus.Read(c.addr)
			if err != nil {
				return err
			}
			c.applyRead(op, v)
			return nil
		})
	case ModeIZY:
		return c.buildIndirectIndexedRead(op)
	}
	return nil
}

func (c *CPU) buildWriteOp(mode AddrMode, op Op) []step {
	final := func(c *CPU) error {
		return c.bus.Write(c.addr, c.storeValue(op))
	}
	switch mode {
	case ModeZP0:
		return []step{
			func(c *CPU) error {
				lo, err := c.fetchByte()
				c.addr = uint16(lo)
				return err
			},
			final,
		}
	case ModeZPX, ModeZPY:
		return append(c.buildZeroPageIndexed(mode), final)
	case ModeABS:
		return append(c.buildAbsolute(), final)
	case ModeABX:
		return append(c.buildAbsoluteIndexedWrite(c.X), final)
	case ModeABY:
		return append(c.buildAbsoluteIndexedWrite(c.Y), final)
	case ModeIZX:
		return append(c.buildIndexedIndirect(), final)
	case ModeIZY:
		return append(c.buildIndirectIndexedWrite(), final)
	}
	return nil
}

func (c *CPU) buildRMWOp(mode AddrMode, op Op) []step {
	var addrSteps []step
	switch mode {
	case ModeZP0:
		addrSteps = []step{func(c *CPU) error {
			lo, err := c.fetchByte()
			c.addr = uint16(lo)
			return err
		}}
	case ModeZPX:
		addrSteps = c.buildZeroPageIndexed(ModeZPX)
	case ModeABS:
		addrSteps = c.buildAbsolute()
	case ModeABX:
		addrSteps = c.buildAbsoluteIndexedWrite(c.X) // RMW always pays the page-cross cycle
	}
	readStep := func(c *CPU) error {
		v, err := c.bus.Read(c.addr)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	dummyWriteStep := func(c *CPU) error {
		// the 6502 writes the unmodified value back before the real
		// write, per the read-modify-write double-write contract.
		return c.bus.Write(c.addr, c.val)
	}
	finalWriteStep := func(c *CPU) error {
		return c.bus.Write(c.addr, c.applyRMW(op, c.val))
	}
	steps := append([]step{}, addrSteps...)
	steps = append(steps, readStep, dummyWriteStep, finalWriteStep)
	return steps
}

// --- shared effective-address builders ---

func (c *CPU) buildZeroPageIndexed(mode AddrMode) []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			// dummy read of the unindexed zero-page address while the
			// index is added
			if _, err := c.bus.Read(c.buf); err != nil {
				return err
			}
			idx := c.X
			if mode == ModeZPY {
				idx = c.Y
			}
			c.addr = uint16(uint8(c.buf) + idx)
			return nil
		},
	}
}

func (c *CPU) buildAbsolute() []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			hi, err := c.fetchByte()
			c.addr = uint16(hi)<<8 | c.buf
			return err
		},
	}
}

// indexedAddr computes base+idx and reports whether the addition carried
// into the high byte, without the buggy truncate-then-add expression the
// reference C++ uses for (indirect),Y.
func indexedAddr(base uint16, idx uint8) (addr uint16, crossed bool) {
	lo := uint8(base) + idx
	crossed = uint16(uint8(base))+uint16(idx) > 0xFF
	hi := uint8(base >> 8)
	addr = uint16(hi)<<8 | uint16(lo)
	if crossed {
		addr += 0x100
	}
	return addr, crossed
}

// buildAbsoluteIndexedRead models the real 4-vs-5-cycle split: the
// fourth cycle always reads from the (possibly wrong-page) address
// formed by the original high byte and the indexed low byte; only when
// that guess was wrong does a fifth cycle re-read the corrected address.
// The decision is made at runtime, so the continuation is attached to
// the queue rather than returned as a fixed-length slice.
func (c *CPU) buildAbsoluteIndexedRead(idx uint8, op Op) []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			hi, err := c.fetchByte()
			if err != nil {
				return err
			}
			base := uint16(hi)<<8 | c.buf
			addr, crossed := indexedAddr(base, idx)
			c.addr = addr
			c.wrongPageAddr = uint16(hi)<<8 | uint16(uint8(addr))
			if crossed {
				c.queue = append(c.queue, c.makeDummyThenRead(op))
			} else {
				c.queue = append(c.queue, c.makeGuessRead(op))
			}
			return nil
		},
	}
}

// makeGuessRead reads from the speculative address; since no page cross
// happened, that guess already IS the effective address.
func (c *CPU) makeGuessRead(op Op) step {
	return func(c *CPU) error {
		v, err := c.bus.Read(c.wrongPageAddr)
		if err != nil {
			return err
		}
		c.applyRead(op, v)
		return nil
	}
}

// makeDummyThenRead reads the wrong-page guess (discarded), then queues
// the corrected read for the following cycle.
func (c *CPU) makeDummyThenRead(op Op) step {
	return func(c *CPU) error {
		if _, err := c.bus.Read(c.wrongPageAddr); err != nil {
			return err
		}
		c.queue = append(c.queue, func(c *CPU) error {
			v, err := c.bus.Read(c.addr)
			if err != nil {
				return err
			}
			c.applyRead(op, v)
			return nil
		})
		return nil
	}
}

// buildAbsoluteIndexedWrite always performs the dummy wrong-page read: the
// write variants (and every RMW) never take the fast path, since the
// effective address must be settled before the write/RMW sequence.
func (c *CPU) buildAbsoluteIndexedWrite(idx uint8) []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			hi, err := c.fetchByte()
			if err != nil {
				return err
			}
			base := uint16(hi)<<8 | c.buf
			addr, _ := indexedAddr(base, idx)
			c.addr = addr
			c.wrongPageAddr = uint16(hi)<<8 | uint16(uint8(addr))
			return nil
		},
		func(c *CPU) error {
			_, err := c.bus.Read(c.wrongPageAddr)
			return err
		},
	}
}

func (c *CPU) buildIndexedIndirect() []step {
	// (indirect,X)
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			if _, err := c.bus.Read(c.buf); err != nil {
				return err
			}
			c.buf = uint16(uint8(c.buf) + c.X)
			return nil
		},
		func(c *CPU) error {
			lo, err := c.bus.Read(c.buf)
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			hi, err := c.bus.Read(uint16(uint8(c.buf) + 1))
			if err != nil {
				return err
			}
			c.addr = uint16(hi)<<8 | uint16(c.addrLo)
			return nil
		},
	}
}

func (c *CPU) buildIndirectIndexedRead(op Op) []step {
	// (indirect),Y
	return []step{
		func(c *CPU) error {
			ptr, err := c.fetchByte()
			c.buf = uint16(ptr)
			return err
		},
		func(c *CPU) error {
			lo, err := c.bus.Read(c.buf)
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			hi, err := c.bus.Read(uint16(uint8(c.buf) + 1))
			if err != nil {
				return err
			}
			base := uint16(hi)<<8 | uint16(c.addrLo)
			addr, crossed := indexedAddr(base, c.Y)
			c.addr = addr
			c.wrongPageAddr = uint16(hi)<<8 | uint16(uint8(addr))
			if crossed {
				c.queue = append(c.queue, c.makeDummyThenRead(op))
			} else {
				c.queue = append(c.queue, c.makeGuessRead(op))
			}
			return nil
		},
	}
}

func (c *CPU) buildIndirectIndexedWrite() []step {
	return []step{
		func(c *CPU) error {
			ptr, err := c.fetchByte()
			c.buf = uint16(ptr)
			return err
		},
		func(c *CPU) error {
			lo, err := c.bus.Read(c.buf)
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			hi, err := c.bus.Read(uint16(uint8(c.buf) + 1))
			if err != nil {
				return err
			}
			base := uint16(hi)<<8 | uint16(c.addrLo)
			addr, _ := indexedAddr(base, c.Y)
			c.addr = addr
			c.wrongPageAddr = uint16(hi)<<8 | uint16(uint8(addr))
			return nil
		},
		func(c *CPU) error {
			_, err := c.bus.Read(c.wrongPageAddr)
			return err
		},
	}
}

// --- JMP ---

func (c *CPU) buildJMPAbs() []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
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

func (c *CPU) buildJMPInd() []step {
	return []step{
		func(c *CPU) error {
			lo, err := c.fetchByte()
			c.buf = uint16(lo)
			return err
		},
		func(c *CPU) error {
			hi, err := c.fetchByte()
			c.addr = uint16(hi)<<8 | c.buf
			return err
		},
		func(c *CPU) error {
			lo, err := c.bus.Read(c.addr)
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			// the famous page-wrap bug: the high byte is fetched from
			// (addr & 0xFF00) | ((addr+1) & 0x00FF), never crossing
			// into the next page.
			hiAddr := (c.addr & 0xFF00) | ((c.addr + 1) & 0x00FF)
			hi, err := c.bus.Read(hiAddr)
			if err != nil {
				return err
			}
			c.PC = uint16(hi)<<8 | uint16(c.addrLo)
			return nil
		},
	}
}
