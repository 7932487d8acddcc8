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

package conformance

import (
	"fmt"

	"github.com/master-g/nes6502/pkg/cpu6502"
)

// Result is the outcome of running one Case.
type Result struct {
	Name string
	Err  error
}

// Passed reports whether the case matched final state, final RAM, and
// the expected bus trace exactly.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Run drives a fresh CPU and a 64KB flat-RAM bus through one Case and
// reports the first mismatch found, if any.
func Run(c Case) Result {
	bus := cpu6502.NewBus()
	ram := cpu6502.NewRAM(0x10000)
	bus.Map(0x0000, 0xFFFF, ram)

	for _, kv := range c.Initial.RAM {
		ram.Write(uint16(kv[0]), uint8(kv[1]))
	}

	cpu := cpu6502.New()
	cpu.AttachBus(bus)
	cpu.LoadState(c.Initial.registers())

	bus.ResetLog()
	for i := range c.Cycles {
		bus.StartCycle()
		if err := cpu.Tick(); err != nil {
			return Result{Name: c.Name, Err: fmt.Errorf("tick: %w", err)}
		}
		if n := bus.AccessesThisCycle(); n != 1 {
			return Result{Name: c.Name, Err: &cpu6502.BusConflict{Cycle: i, Count: n}}
		}
	}
	if cpu.MidInstruction() {
		return Result{Name: c.Name, Err: fmt.Errorf("instruction still in flight after %d cycles", len(c.Cycles))}
	}

	if err := cpu.VerifyState(c.Final.registers()); err != nil {
		return Result{Name: c.Name, Err: err}
	}

	for _, kv := range c.Final.RAM {
		addr, want := uint16(kv[0]), uint8(kv[1])
		if got := ram.Read(addr); got != want {
			return Result{Name: c.Name, Err: &cpu6502.StateMismatch{
				Field: fmt.Sprintf("RAM[$%04X]", addr), Expected: uint64(want), Got: uint64(got),
			}}
		}
	}

	if err := bus.Verify(c.ExpectedTrace()); err != nil {
		return Result{Name: c.Name, Err: err}
	}

	return Result{Name: c.Name}
}

// RunAll runs every case in cases and returns one Result per case, in
// order.
func RunAll(cases []Case) []Result {
	results := make([]Result, len(cases))
	for i, c := range cases {
		results[i] = Run(c)
	}
	return results
}

// Summary tallies a slice of Results.
type Summary struct {
	Total  int
	Passed int
	Failed []Result
}

// Summarize tallies results into a Summary.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed = append(s.Failed, r)
		}
	}
	return s
}
