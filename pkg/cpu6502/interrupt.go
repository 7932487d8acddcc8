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

// Interrupt vectors.
const (
	vectorNMI   uint16 = 0xFFFA
	vectorRESET uint16 = 0xFFFC
	vectorIRQ   uint16 = 0xFFFE
)

// TriggerRST requests a RESET sequence at the next opcode-fetch boundary.
// RESET has the highest priority of the three lines.
func (c *CPU) TriggerRST() {
	c.rstPending = true
}

// TriggerNMI latches a non-maskable interrupt edge. NMI is edge-
// triggered: once latched it is serviced exactly once, regardless of how
// long the caller keeps "asserting" it, and cannot be masked by FlagInterrupt.
func (c *CPU) TriggerNMI() {
	c.nmiPending = true
}

// TriggerIRQ latches one IRQ request. It stays pending, across ticks and
// while FlagInterrupt masks it, until it is serviced once; callers that
// want IRQ serviced again must call TriggerIRQ again. SetIRQLine offers
// a sticky line level instead.
func (c *CPU) TriggerIRQ() {
	c.irqPending = true
}

// SetIRQLine sets the sticky IRQ request line level, as a real interrupt
// source would hold it, until the device clears it itself.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

// MidInstruction reports whether the CPU is partway through executing an
// instruction. Interrupts are sampled only when this is false, i.e. at
// opcode-fetch boundaries; that is enough for single-step conformance,
// though real hardware samples after the penultimate cycle.
func (c *CPU) MidInstruction() bool {
	return len(c.queue) != 0
}

// pendingInterrupt reports the highest-priority interrupt pending at an
// opcode-fetch boundary, in RST > NMI > IRQ order.
func (c *CPU) pendingInterrupt() (vector uint16, isReset bool, ok bool) {
	if c.rstPending {
		return vectorRESET, true, true
	}
	if c.nmiPending {
		return vectorNMI, false, true
	}
	if (c.irqPending || c.irqLine) && !c.getFlag(FlagInterrupt) {
		return vectorIRQ, false, true
	}
	return 0, false, false
}

// buildInterruptSequence builds the NMI, IRQ and RESET sequences, which
// follow the same push-and-vector shape as BRK (BRK itself is built by
// buildBRK in control.go). Hardware servicing reads the byte at PC twice
// and discards it, without incrementing PC, before the three push/stack
// cycles, for 7 cycles total. RESET does not push anything, since the
// stack pointer starts in an undefined state; it only spends the
// equivalent three cycles reading (and discarding) the stack, then
// vectors.
func (c *CPU) buildInterruptSequence(vector uint16, isReset bool) []step {
	if isReset {
		return []step{
			func(c *CPU) error { _, err := c.bus.Read(c.PC); return err },
			func(c *CPU) error { _, err := c.bus.Read(c.PC); return err },
			func(c *CPU) error { _, err := c.bus.Read(stackBase + uint16(c.S)); c.S--; return err },
			func(c *CPU) error { _, err := c.bus.Read(stackBase + uint16(c.S)); c.S--; return err },
			func(c *CPU) error { _, err := c.bus.Read(stackBase + uint16(c.S)); c.S--; return err },
			func(c *CPU) error {
				c.setFlag(FlagInterrupt, true)
				lo, err := c.bus.Read(vectorRESET)
				c.addrLo = lo
				return err
			},
			func(c *CPU) error {
				hi, err := c.bus.Read(vectorRESET + 1)
				if err != nil {
					return err
				}
				c.PC = uint16(hi)<<8 | uint16(c.addrLo)
				return nil
			},
		}
	}
	return []step{
		func(c *CPU) error { _, err := c.bus.Read(c.PC); return err },
		func(c *CPU) error { _, err := c.bus.Read(c.PC); return err },
		func(c *CPU) error { return c.push(uint8(c.PC >> 8)) },
		func(c *CPU) error { return c.push(uint8(c.PC)) },
		func(c *CPU) error {
			// hardware-initiated interrupts push status with FlagBreak
			// clear, unlike software BRK.
			return c.push((c.P &^ FlagBreak) | FlagUnused)
		},
		func(c *CPU) error {
			c.setFlag(FlagInterrupt, true)
			lo, err := c.bus.Read(vector)
			c.addrLo = lo
			return err
		},
		func(c *CPU) error {
			hi, err := c.bus.Read(vector + 1)
			if err != nil {
				return err
			}
			c.PC = uint16(hi)<<8 | uint16(c.addrLo)
			return nil
		},
	}
}
