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

// Package conformance loads and runs the SingleStepTests-style JSON
// corpus against pkg/cpu6502, comparing final register state, final RAM
// contents, and the cycle-by-cycle bus trace.
package conformance

import (
	"encoding/json"
	"fmt"

	"github.com/master-g/nes6502/pkg/cpu6502"
)

// jsonState is one {initial|final} object in a test case.
type jsonState struct {
	PC  uint16     `json:"pc"`
	S   uint8      `json:"s"`
	A   uint8      `json:"a"`
	X   uint8      `json:"x"`
	Y   uint8      `json:"y"`
	P   uint8      `json:"p"`
	RAM [][2]int64 `json:"ram"`
}

func (s jsonState) registers() cpu6502.Registers {
	return cpu6502.Registers{A: s.A, X: s.X, Y: s.Y, S: s.S, PC: s.PC, P: s.P}
}

// jsonCycle is one [addr, val, "read"|"write"] triple.
type jsonCycle struct {
	Addr uint16
	Val  uint8
	Kind string
}

func (jc *jsonCycle) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &jc.Addr); err != nil {
		return fmt.Errorf("cycle addr: %w", err)
	}
	if err := json.Unmarshal(raw[1], &jc.Val); err != nil {
		return fmt.Errorf("cycle val: %w", err)
	}
	if err := json.Unmarshal(raw[2], &jc.Kind); err != nil {
		return fmt.Errorf("cycle kind: %w", err)
	}
	return nil
}

func (jc jsonCycle) access() cpu6502.BusAccess {
	t := cpu6502.AccessRead
	if jc.Kind == "write" {
		t = cpu6502.AccessWrite
	}
	return cpu6502.BusAccess{Addr: jc.Addr, Val: jc.Val, Type: t}
}

// Case is one decoded test case: a named initial/final state pair and
// the expected cycle-by-cycle bus trace.
type Case struct {
	Name    string      `json:"name"`
	Initial jsonState   `json:"initial"`
	Final   jsonState   `json:"final"`
	Cycles  []jsonCycle `json:"cycles"`
}

// ExpectedTrace converts the case's cycle list into the BusAccess slice
// Bus.Verify/Analyse expects.
func (c Case) ExpectedTrace() []cpu6502.BusAccess {
	trace := make([]cpu6502.BusAccess, len(c.Cycles))
	for i, jc := range c.Cycles {
		trace[i] = jc.access()
	}
	return trace
}

// DecodeCases parses a corpus JSON file's contents (a top-level array of
// test case objects).
func DecodeCases(data []byte) ([]Case, error) {
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}
