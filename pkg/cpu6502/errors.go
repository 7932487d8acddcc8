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

// UnmappedAddress is returned when a bus access falls outside every
// mapped device range. It is the one failure the core treats as fatal.
type UnmappedAddress struct {
	Addr  uint16
	Write bool
}

func (e *UnmappedAddress) Error() string {
	kind := "read"
	if e.Write {
		kind = "write"
	}
	return fmt.Sprintf("cpu6502: unmapped %s at $%04X", kind, e.Addr)
}

// BusConflict records a cycle where the bus performed more than one
// access (or, in a verified trace, none) instead of exactly one. It
// indicates a CPU state-machine construction bug; the bus reports it and
// the run continues.
type BusConflict struct {
	Cycle int
	Count int
}

func (e BusConflict) Error() string {
	return fmt.Sprintf("cpu6502: cycle %d performed %d bus accesses, want exactly 1", e.Cycle, e.Count)
}

// TraceMismatch records a single cycle where the observed bus transaction
// did not match an expected trace entry (conformance use only).
type TraceMismatch struct {
	Cycle    int
	Expected BusAccess
	Got      BusAccess
}

func (e *TraceMismatch) Error() string {
	return fmt.Sprintf("cpu6502: trace mismatch at cycle %d: expected %+v, got %+v", e.Cycle, e.Expected, e.Got)
}

// StateMismatch records a final-register or final-memory mismatch
// (conformance use only).
type StateMismatch struct {
	Field    string
	Expected uint64
	Got      uint64
}

func (e *StateMismatch) Error() string {
	return fmt.Sprintf("cpu6502: state mismatch on %s: expected %#x, got %#x", e.Field, e.Expected, e.Got)
}
