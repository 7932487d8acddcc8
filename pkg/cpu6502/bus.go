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

import "fmt"

// Device is the interface every bus-mapped peripheral implements. The
// address a device receives is relative to its mapping's start; devices
// own any further mirroring/masking (a 2KB RAM under an 8KB window masks
// to its own size).
type Device interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// AccessType distinguishes a read from a write in a recorded BusAccess.
type AccessType int

const (
	AccessRead AccessType = iota
	AccessWrite
)

func (a AccessType) String() string {
	if a == AccessWrite {
		return "write"
	}
	return "read"
}

// BusAccess is one recorded bus transaction: one per tick, always.
type BusAccess struct {
	Addr uint16
	Val  uint8
	Type AccessType
}

type mapping struct {
	start, end uint16
	dev        Device
}

// Bus is the ordered address-range router the CPU drives one transaction
// per tick against. Mappings are first-match-wins, in the order they
// were added with Map, so a later caller can NOT shadow an earlier
// mapping; put overlays first.
type Bus struct {
	mappings []mapping

	// cycleCounts holds one entry per StartCycle call, incremented by
	// every Read/Write issued since: the history Verify/Analyse check
	// against the "exactly one access per cycle" invariant.
	cycleCounts []int
	log         []BusAccess
	conflicts   []BusConflict
}

// NewBus returns an empty bus with no mapped devices.
func NewBus() *Bus {
	return &Bus{}
}

// Map attaches dev to the inclusive address range [start, end].
// Overlapping ranges are legitimate: the first mapping whose range
// contains an address wins, which lets callers layer a mirror or
// override in front of a larger region.
func (b *Bus) Map(start, end uint16, dev Device) {
	b.mappings = append(b.mappings, mapping{start: start, end: end, dev: dev})
}

// StartCycle opens a new slot in the per-cycle access history. The
// scheduler calls this once per master cycle, before the CPU's Tick.
func (b *Bus) StartCycle() {
	b.cycleCounts = append(b.cycleCounts, 0)
}

// recordAccess counts one Read or Write against the current cycle's
// slot, creating one if no StartCycle has run yet (a caller driving the
// bus directly, outside the scheduler's loop). A second access within
// one cycle is a BusConflict: a CPU state-machine construction bug,
// reported through the package logger and collected, but not fatal.
func (b *Bus) recordAccess() {
	if len(b.cycleCounts) == 0 {
		b.cycleCounts = append(b.cycleCounts, 0)
	}
	i := len(b.cycleCounts) - 1
	b.cycleCounts[i]++
	if n := b.cycleCounts[i]; n > 1 {
		conflict := BusConflict{Cycle: i, Count: n}
		b.conflicts = append(b.conflicts, conflict)
		logger.Log(conflict.Error())
	}
}

func (b *Bus) find(addr uint16, write bool) (*mapping, error) {
	for i := range b.mappings {
		m := &b.mappings[i]
		if addr >= m.start && addr <= m.end {
			return m, nil
		}
	}
	return nil, &UnmappedAddress{Addr: addr, Write: write}
}

// Read performs the one bus transaction this cycle is allowed. The
// device sees the address relative to its mapping's start; the trace
// records the full bus address. Reading past UnmappedAddress returns 0
// and the error; callers that treat reads as fatal should check it.
func (b *Bus) Read(addr uint16) (uint8, error) {
	b.recordAccess()
	m, err := b.find(addr, false)
	if err != nil {
		return 0, err
	}
	v := m.dev.Read(addr - m.start)
	b.log = append(b.log, BusAccess{Addr: addr, Val: v, Type: AccessRead})
	return v, nil
}

// Write performs the one bus transaction this cycle is allowed.
func (b *Bus) Write(addr uint16, v uint8) error {
	b.recordAccess()
	m, err := b.find(addr, true)
	if err != nil {
		return err
	}
	m.dev.Write(addr-m.start, v)
	b.log = append(b.log, BusAccess{Addr: addr, Val: v, Type: AccessWrite})
	return nil
}

// AccessesThisCycle reports how many Read/Write calls have happened since
// the last StartCycle. The core invariant is that this is always exactly 1.
func (b *Bus) AccessesThisCycle() int {
	if len(b.cycleCounts) == 0 {
		return 0
	}
	return b.cycleCounts[len(b.cycleCounts)-1]
}

// Log returns the full recorded transaction trace since the bus was
// created or ResetLog was called.
func (b *Bus) Log() []BusAccess {
	return b.log
}

// ResetLog clears the recorded transaction trace, the per-cycle access
// history, and any collected conflicts.
func (b *Bus) ResetLog() {
	b.log = nil
	b.cycleCounts = nil
	b.conflicts = nil
}

// Conflicts returns every BusConflict observed since creation or
// ResetLog.
func (b *Bus) Conflicts() []BusConflict {
	return b.conflicts
}

// Verify compares the recorded trace against an expected cycle-by-cycle
// sequence, then checks the one-access-per-cycle invariant over the same
// window, returning the first mismatch found, if any.
func (b *Bus) Verify(expected []BusAccess) error {
	if len(b.log) != len(expected) {
		return fmt.Errorf("cpu6502: trace length mismatch: expected %d cycles, got %d", len(expected), len(b.log))
	}
	for i, exp := range expected {
		got := b.log[i]
		if got != exp {
			return &TraceMismatch{Cycle: i, Expected: exp, Got: got}
		}
	}
	for i, n := range b.cycleCounts {
		if n != 1 {
			return &BusConflict{Cycle: i, Count: n}
		}
	}
	return nil
}

// AnalysisReport collects every discrepancy Analyse finds, rather than
// stopping at the first one Verify would return.
type AnalysisReport struct {
	Trace        []TraceMismatch
	AccessCounts []BusConflict
}

// Analyse compares the recorded trace against an expected sequence and
// checks the one-access-per-cycle invariant, collecting every mismatch
// of both kinds instead of stopping at the first one, for diagnostic
// reporting.
func (b *Bus) Analyse(expected []BusAccess) AnalysisReport {
	var report AnalysisReport

	n := len(expected)
	if len(b.log) < n {
		n = len(b.log)
	}
	for i := 0; i < n; i++ {
		if b.log[i] != expected[i] {
			report.Trace = append(report.Trace, TraceMismatch{Cycle: i, Expected: expected[i], Got: b.log[i]})
		}
	}

	for i, c := range b.cycleCounts {
		if c != 1 {
			report.AccessCounts = append(report.AccessCounts, BusConflict{Cycle: i, Count: c})
		}
	}

	return report
}
