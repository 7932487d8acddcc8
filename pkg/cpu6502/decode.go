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

// AddrMode names one of the thirteen 6502 addressing modes.
type AddrMode int

const (
	ModeIMP AddrMode = iota // implied / accumulator
	ModeIMM                 // immediate
	ModeZP0                 // zero page
	ModeZPX                 // zero page, X
	ModeZPY                 // zero page, Y
	ModeABS                 // absolute
	ModeABX                 // absolute, X
	ModeABY                 // absolute, Y
	ModeIND                 // indirect (JMP only)
	ModeIZX                 // (indirect, X)
	ModeIZY                 // (indirect), Y
	ModeREL                 // relative (branches)
)

// AccessKind tells the micro-op builder whether the operand is read,
// written, or read-modified-written, which determines the dummy-cycle
// shape of indexed and zero-page-indexed modes.
type AccessKind int

const (
	AccessNone AccessKind = iota
	KindRead
	KindWrite
	KindRMW
)

// Op names the operation an opcode dispatches to, independent of its
// addressing mode.
type Op int

const (
	// OpUndoc is the dispatch target for the 105 undocumented opcodes:
	// a 1-cycle no-op (the fetch itself), since their real behavior is
	// chip-revision-dependent and out of scope.
	OpUndoc Op = iota
	OpADC
	OpAND
	OpASL
	OpBCC
	OpBCS
	OpBEQ
	OpBIT
	OpBMI
	OpBNE
	OpBPL
	OpBRK
	OpBVC
	OpBVS
	OpCLC
	OpCLD
	OpCLI
	OpCLV
	OpCMP
	OpCPX
	OpCPY
	OpDEC
	OpDEX
	OpDEY
	OpEOR
	OpINC
	OpINX
	OpINY
	OpJMP
	OpJSR
	OpLDA
	OpLDX
	OpLDY
	OpLSR
	OpNOP
	OpORA
	OpPHA
	OpPHP
	OpPLA
	OpPLP
	OpROL
	OpROR
	OpRTI
	OpRTS
	OpSBC
	OpSEC
	OpSED
	OpSEI
	OpSTA
	OpSTX
	OpSTY
	OpTAX
	OpTAY
	OpTSX
	OpTXA
	OpTXS
	OpTYA
)

// opcodeEntry is one row of the 256-entry dispatch table: mnemonic for
// disassembly/logging, addressing mode, operation, and access kind.
type opcodeEntry struct {
	name   string
	mode   AddrMode
	op     Op
	access AccessKind
}

var opcodeTable [256]opcodeEntry

func entry(opcode uint8, name string, mode AddrMode, op Op, access AccessKind) {
	opcodeTable[opcode] = opcodeEntry{name: name, mode: mode, op: op, access: access}
}

func init() {
	for i := range opcodeTable {
		opcodeTable[i] = opcodeEntry{name: "???", mode: ModeIMP, op: OpUndoc, access: AccessNone}
	}

	// ADC
	entry(0x69, "ADC", ModeIMM, OpADC, KindRead)
	entry(0x65, "ADC", ModeZP0, OpADC, KindRead)
	entry(0x75, "ADC", ModeZPX, OpADC, KindRead)
	entry(0x6D, "ADC", ModeABS, OpADC, KindRead)
	entry(0x7D, "ADC", ModeABX, OpADC, KindRead)
	entry(0x79, "ADC", ModeABY, OpADC, KindRead)
	entry(0x61, "ADC", ModeIZX, OpADC, KindRead)
	entry(0x71, "ADC", ModeIZY, OpADC, KindRead)

	// AND
	entry(0x29, "AND", ModeIMM, OpAND, KindRead)
	entry(0x25, "AND", ModeZP0, OpAND, KindRead)
	entry(0x35, "AND", ModeZPX, OpAND, KindRead)
	entry(0x2D, "AND", ModeABS, OpAND, KindRead)
	entry(0x3D, "AND", ModeABX, OpAND, KindRead)
	entry(0x39, "AND", ModeABY, OpAND, KindRead)
	entry(0x21, "AND", ModeIZX, OpAND, KindRead)
	entry(0x31, "AND", ModeIZY, OpAND, KindRead)

	// ASL
	entry(0x0A, "ASL", ModeIMP, OpASL, AccessNone) // accumulator
	entry(0x06, "ASL", ModeZP0, OpASL, KindRMW)
	entry(0x16, "ASL", ModeZPX, OpASL, KindRMW)
	entry(0x0E, "ASL", ModeABS, OpASL, KindRMW)
	entry(0x1E, "ASL", ModeABX, OpASL, KindRMW)

	// branches
	entry(0x90, "BCC", ModeREL, OpBCC, AccessNone)
	entry(0xB0, "BCS", ModeREL, OpBCS, AccessNone)
	entry(0xF0, "BEQ", ModeREL, OpBEQ, AccessNone)
	entry(0x30, "BMI", ModeREL, OpBMI, AccessNone)
	entry(0xD0, "BNE", ModeREL, OpBNE, AccessNone)
	entry(0x10, "BPL", ModeREL, OpBPL, AccessNone)
	entry(0x50, "BVC", ModeREL, OpBVC, AccessNone)
	entry(0x70, "BVS", ModeREL, OpBVS, AccessNone)

	// BIT
	entry(0x24, "BIT", ModeZP0, OpBIT, KindRead)
	entry(0x2C, "BIT", ModeABS, OpBIT, KindRead)

	// BRK
	entry(0x00, "BRK", ModeIMP, OpBRK, AccessNone)

	// flag ops
	entry(0x18, "CLC", ModeIMP, OpCLC, AccessNone)
	entry(0xD8, "CLD", ModeIMP, OpCLD, AccessNone)
	entry(0x58, "CLI", ModeIMP, OpCLI, AccessNone)
	entry(0xB8, "CLV", ModeIMP, OpCLV, AccessNone)
	entry(0x38, "SEC", ModeIMP, OpSEC, AccessNone)
	entry(0xF8, "SED", ModeIMP, OpSED, AccessNone)
	entry(0x78, "SEI", ModeIMP, OpSEI, AccessNone)

	// CMP
	entry(0xC9, "CMP", ModeIMM, OpCMP, KindRead)
	entry(0xC5, "CMP", ModeZP0, OpCMP, KindRead)
	entry(0xD5, "CMP", ModeZPX, OpCMP, KindRead)
	entry(0xCD, "CMP", ModeABS, OpCMP, KindRead)
	entry(0xDD, "CMP", ModeABX, OpCMP, KindRead)
	entry(0xD9, "CMP", ModeABY, OpCMP, KindRead)
	entry(0xC1, "CMP", ModeIZX, OpCMP, KindRead)
	entry(0xD1, "CMP", ModeIZY, OpCMP, KindRead)

	// CPX / CPY
	entry(0xE0, "CPX", ModeIMM, OpCPX, KindRead)
	entry(0xE4, "CPX", ModeZP0, OpCPX, KindRead)
	entry(0xEC, "CPX", ModeABS, OpCPX, KindRead)
	entry(0xC0, "CPY", ModeIMM, OpCPY, KindRead)
	entry(0xC4, "CPY", ModeZP0, OpCPY, KindRead)
	entry(0xCC, "CPY", ModeABS, OpCPY, KindRead)

	// DEC / INC
	entry(0xC6, "DEC", ModeZP0, OpDEC, KindRMW)
	entry(0xD6, "DEC", ModeZPX, OpDEC, KindRMW)
	entry(0xCE, "DEC", ModeABS, OpDEC, KindRMW)
	entry(0xDE, "DEC", ModeABX, OpDEC, KindRMW)
	entry(0xE6, "INC", ModeZP0, OpINC, KindRMW)
	entry(0xF6, "INC", ModeZPX, OpINC, KindRMW)
	entry(0xEE, "INC", ModeABS, OpINC, KindRMW)
	entry(0xFE, "INC", ModeABX, OpINC, KindRMW)

	entry(0xCA, "DEX", ModeIMP, OpDEX, AccessNone)
	entry(0x88, "DEY", ModeIMP, OpDEY, AccessNone)
	entry(0xE8, "INX", ModeIMP, OpINX, AccessNone)
	entry(0xC8, "INY", ModeIMP, OpINY, AccessNone)

	// EOR
	entry(0x49, "EOR", ModeIMM, OpEOR, KindRead)
	entry(0x45, "EOR", ModeZP0, OpEOR, KindRead)
	entry(0x55, "EOR", ModeZPX, OpEOR, KindRead)
	entry(0x4D, "EOR", ModeABS, OpEOR, KindRead)
	entry(0x5D, "EOR", ModeABX, OpEOR, KindRead)
	entry(0x59, "EOR", ModeABY, OpEOR, KindRead)
	entry(0x41, "EOR", ModeIZX, OpEOR, KindRead)
	entry(0x51, "EOR", ModeIZY, OpEOR, KindRead)

	// JMP / JSR
	entry(0x4C, "JMP", ModeABS, OpJMP, AccessNone)
	entry(0x6C, "JMP", ModeIND, OpJMP, AccessNone)
	entry(0x20, "JSR", ModeABS, OpJSR, AccessNone)

	// LDA / LDX / LDY
	entry(0xA9, "LDA", ModeIMM, OpLDA, KindRead)
	entry(0xA5, "LDA", ModeZP0, OpLDA, KindRead)
	entry(0xB5, "LDA", ModeZPX, OpLDA, KindRead)
	entry(0xAD, "LDA", ModeABS, OpLDA, KindRead)
	entry(0xBD, "LDA", ModeABX, OpLDA, KindRead)
	entry(0xB9, "LDA", ModeABY, OpLDA, KindRead)
	entry(0xA1, "LDA", ModeIZX, OpLDA, KindRead)
	entry(0xB1, "LDA", ModeIZY, OpLDA, KindRead)

	entry(0xA2, "LDX", ModeIMM, OpLDX, KindRead)
	entry(0xA6, "LDX", ModeZP0, OpLDX, KindRead)
	entry(0xB6, "LDX", ModeZPY, OpLDX, KindRead)
	entry(0xAE, "LDX", ModeABS, OpLDX, KindRead)
	entry(0xBE, "LDX", ModeABY, OpLDX, KindRead)

	entry(0xA0, "LDY", ModeIMM, OpLDY, KindRead)
	entry(0xA4, "LDY", ModeZP0, OpLDY, KindRead)
	entry(0xB4, "LDY", ModeZPX, OpLDY, KindRead)
	entry(0xAC, "LDY", ModeABS, OpLDY, KindRead)
	entry(0xBC, "LDY", ModeABX, OpLDY, KindRead)

	// LSR
	entry(0x4A, "LSR", ModeIMP, OpLSR, AccessNone) // accumulator
	entry(0x46, "LSR", ModeZP0, OpLSR, KindRMW)
	entry(0x56, "LSR", ModeZPX, OpLSR, KindRMW)
	entry(0x4E, "LSR", ModeABS, OpLSR, KindRMW)
	entry(0x5E, "LSR", ModeABX, OpLSR, KindRMW)

	// NOP
	entry(0xEA, "NOP", ModeIMP, OpNOP, AccessNone)

	// ORA
	entry(0x09, "ORA", ModeIMM, OpORA, KindRead)
	entry(0x05, "ORA", ModeZP0, OpORA, KindRead)
	entry(0x15, "ORA", ModeZPX, OpORA, KindRead)
	entry(0x0D, "ORA", ModeABS, OpORA, KindRead)
	entry(0x1D, "ORA", ModeABX, OpORA, KindRead)
	entry(0x19, "ORA", ModeABY, OpORA, KindRead)
	entry(0x01, "ORA", ModeIZX, OpORA, KindRead)
	entry(0x11, "ORA", ModeIZY, OpORA, KindRead)

	// stack
	entry(0x48, "PHA", ModeIMP, OpPHA, AccessNone)
	entry(0x08, "PHP", ModeIMP, OpPHP, AccessNone)
	entry(0x68, "PLA", ModeIMP, OpPLA, AccessNone)
	entry(0x28, "PLP", ModeIMP, OpPLP, AccessNone)

	// ROL / ROR
	entry(0x2A, "ROL", ModeIMP, OpROL, AccessNone)
	entry(0x26, "ROL", ModeZP0, OpROL, KindRMW)
	entry(0x36, "ROL", ModeZPX, OpROL, KindRMW)
	entry(0x2E, "ROL", ModeABS, OpROL, KindRMW)
	entry(0x3E, "ROL", ModeABX, OpROL, KindRMW)

	entry(0x6A, "ROR", ModeIMP, OpROR, AccessNone)
	entry(0x66, "ROR", ModeZP0, OpROR, KindRMW)
	entry(0x76, "ROR", ModeZPX, OpROR, KindRMW)
	entry(0x6E, "ROR", ModeABS, OpROR, KindRMW)
	entry(0x7E, "ROR", ModeABX, OpROR, KindRMW)

	// RTI / RTS
	entry(0x40, "RTI", ModeIMP, OpRTI, AccessNone)
	entry(0x60, "RTS", ModeIMP, OpRTS, AccessNone)

	// SBC
	entry(0xE9, "SBC", ModeIMM, OpSBC, KindRead)
	entry(0xE5, "SBC", ModeZP0, OpSBC, KindRead)
	entry(0xF5, "SBC", ModeZPX, OpSBC, KindRead)
	entry(0xED, "SBC", ModeABS, OpSBC, KindRead)
	entry(0xFD, "SBC", ModeABX, OpSBC, KindRead)
	entry(0xF9, "SBC", ModeABY, OpSBC, KindRead)
	entry(0xE1, "SBC", ModeIZX, OpSBC, KindRead)
	entry(0xF1, "SBC", ModeIZY, OpSBC, KindRead)

	// STA / STX / STY
	entry(0x85, "STA", ModeZP0, OpSTA, KindWrite)
	entry(0x95, "STA", ModeZPX, OpSTA, KindWrite)
	entry(0x8D, "STA", ModeABS, OpSTA, KindWrite)
	entry(0x9D, "STA", ModeABX, OpSTA, KindWrite)
	entry(0x99, "STA", ModeABY, OpSTA, KindWrite)
	entry(0x81, "STA", ModeIZX, OpSTA, KindWrite)
	entry(0x91, "STA", ModeIZY, OpSTA, KindWrite)

	entry(0x86, "STX", ModeZP0, OpSTX, KindWrite)
	entry(0x96, "STX", ModeZPY, OpSTX, KindWrite)
	entry(0x8E, "STX", ModeABS, OpSTX, KindWrite)

	entry(0x84, "STY", ModeZP0, OpSTY, KindWrite)
	entry(0x94, "STY", ModeZPX, OpSTY, KindWrite)
	entry(0x8C, "STY", ModeABS, OpSTY, KindWrite)

	// transfers
	entry(0xAA, "TAX", ModeIMP, OpTAX, AccessNone)
	entry(0xA8, "TAY", ModeIMP, OpTAY, AccessNone)
	entry(0xBA, "TSX", ModeIMP, OpTSX, AccessNone)
	entry(0x8A, "TXA", ModeIMP, OpTXA, AccessNone)
	entry(0x9A, "TXS", ModeIMP, OpTXS, AccessNone)
	entry(0x98, "TYA", ModeIMP, OpTYA, AccessNone)
}
