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

// Package cpu6502 implements a cycle-accurate MOS 6502 core (NES
// variant: no decimal mode) that advances exactly one bus transaction
// per Tick, verifiable against the SingleStepTests JSON corpus.
package cpu6502

// step is one resumable unit of instruction execution, performing
// exactly one bus transaction.
type step func(c *CPU) error

// CPU is the 6502 register file plus the tick-resumable micro-sequencer
// driving it. The zero value is not ready to use; call New.
type CPU struct {
	A, X, Y, S uint8
	PC         uint16
	P          uint8

	bus *Bus

	queue []step
	err   error

	opcode   uint8
	curEntry opcodeEntry

	// per-instruction addressing scratch, re-armed at each opcode fetch
	addr          uint16
	buf           uint16
	val           uint8
	addrLo        uint8
	wrongPageAddr uint16

	branchOffset      uint8
	branchTaken       bool
	branchPageCrossed bool
	branchTarget      uint16

	rstPending bool
	nmiPending bool
	irqPending bool
	irqLine    bool

	cycleCount uint64
}

// New returns a CPU with no bus attached and all registers zeroed. Call
// AttachBus and TriggerRST (or LoadState, for conformance tests) before
// ticking it.
func New() *CPU {
	return &CPU{}
}

// AttachBus wires the CPU to the bus it will issue transactions against.
func (c *CPU) AttachBus(b *Bus) {
	c.bus = b
}

// PowerUp models a cold boot: registers cleared, then a RESET sequence
// requested. The reset's three dummy stack reads decrement S by 3, which
// is what leaves it at the documented post-reset 0xFD.
func (c *CPU) PowerUp() {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0x00
	c.P = FlagUnused
	c.queue = nil
	c.cycleCount = 0
	c.TriggerRST()
}

// Tick advances the CPU by exactly one master clock cycle, performing at
// most one bus transaction. The scheduler driving the machine calls
// Bus.StartCycle first, then Tick, once per master cycle. Tick returns
// the error from the cycle's transaction, if any; once an
// UnmappedAddress error has been returned the CPU is halted and every
// subsequent Tick returns the same error immediately.
func (c *CPU) Tick() error {
	if c.err != nil {
		return c.err
	}

	if len(c.queue) == 0 {
		c.beginNext()
	}
	if len(c.queue) == 0 {
		return nil
	}

	next := c.queue[0]
	c.queue = c.queue[1:]
	if err := next(c); err != nil {
		c.err = err
		return err
	}
	c.cycleCount++
	return nil
}

func (c *CPU) beginNext() {
	if vector, isReset, ok := c.pendingInterrupt(); ok {
		if isReset {
			c.rstPending = false
		} else if vector == vectorNMI {
			c.nmiPending = false
		} else {
			c.irqPending = false
		}
		c.queue = c.buildInterruptSequence(vector, isReset)
		return
	}
	c.queue = []step{c.fetchStep}
}

func (c *CPU) fetchStep(cpu *CPU) error {
	v, err := cpu.bus.Read(cpu.PC)
	if err != nil {
		return err
	}
	cpu.opcode = v
	cpu.PC++
	cpu.addr, cpu.buf, cpu.val, cpu.addrLo, cpu.wrongPageAddr = 0, 0, 0, 0, 0
	cpu.branchOffset, cpu.branchTaken, cpu.branchPageCrossed, cpu.branchTarget = 0, false, false, 0
	entry := opcodeTable[v]
	cpu.curEntry = entry
	cpu.queue = cpu.buildMicroOps(entry)
	return nil
}

// CycleCount returns the number of cycles successfully ticked since the
// CPU was created or last reset via PowerUp.
func (c *CPU) CycleCount() uint64 {
	return c.cycleCount
}

// CurrentInstruction returns the mnemonic of the most recently fetched
// opcode, for debugger display.
func (c *CPU) CurrentInstruction() string {
	return c.curEntry.name
}

// Err returns the fatal error that halted the CPU, if any.
func (c *CPU) Err() error {
	return c.err
}

// LoadState sets the architectural register file directly, bypassing
// RESET. This is how the conformance runner seeds each test's initial
// state.
func (c *CPU) LoadState(r Registers) {
	c.A, c.X, c.Y, c.S, c.PC, c.P = r.A, r.X, r.Y, r.S, r.PC, r.P
	c.queue = nil
	c.err = nil
}

// VerifyState compares the current architectural register file against
// an expected snapshot, returning the first mismatched field.
func (c *CPU) VerifyState(want Registers) error {
	got := c.Registers()
	switch {
	case got.A != want.A:
		return &StateMismatch{Field: "A", Expected: uint64(want.A), Got: uint64(got.A)}
	case got.X != want.X:
		return &StateMismatch{Field: "X", Expected: uint64(want.X), Got: uint64(got.X)}
	case got.Y != want.Y:
		return &StateMismatch{Field: "Y", Expected: uint64(want.Y), Got: uint64(got.Y)}
	case got.S != want.S:
		return &StateMismatch{Field: "S", Expected: uint64(want.S), Got: uint64(got.S)}
	case got.PC != want.PC:
		return &StateMismatch{Field: "PC", Expected: uint64(want.PC), Got: uint64(got.PC)}
	case got.P != want.P:
		return &StateMismatch{Field: "P", Expected: uint64(want.P), Got: uint64(got.P)}
	}
	return nil
}
