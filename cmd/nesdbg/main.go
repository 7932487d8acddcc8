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

// Command nesdbg is a live register/bus-trace inspector: it loads a flat
// binary image into RAM at a chosen origin, ticks a CPU+Bus machine, and
// renders registers, flags, and the last few bus transactions in a
// termui dashboard.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	cli "github.com/urfave/cli/v2"

	"github.com/master-g/nes6502/pkg/cpu6502"
)

var (
	cpu *cpu6502.CPU
	bus *cpu6502.Bus
	ram *cpu6502.RAM

	paragraphCPU   *widgets.Paragraph
	paragraphTrace *widgets.Paragraph
	paragraphRAM   *widgets.Paragraph
)

func flagCell(name string, set bool) string {
	color := "red"
	if set {
		color = "green"
	}
	return fmt.Sprintf("[%s](fg:%s)", name, color)
}

func renderCPU(p *widgets.Paragraph) {
	r := cpu.Registers()
	sb := &strings.Builder{}
	sb.WriteString(flagCell("N", r.P&cpu6502.FlagNegative != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("V", r.P&cpu6502.FlagOverflow != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("U", r.P&cpu6502.FlagUnused != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("B", r.P&cpu6502.FlagBreak != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("D", r.P&cpu6502.FlagDecimal != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("I", r.P&cpu6502.FlagInterrupt != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("Z", r.P&cpu6502.FlagZero != 0))
	sb.WriteRune(' ')
	sb.WriteString(flagCell("C", r.P&cpu6502.FlagCarry != 0))
	sb.WriteRune('\n')
	fmt.Fprintf(sb, "PC: $%04X  S: $%02X\n", r.PC, r.S)
	fmt.Fprintf(sb, "A: $%02X  X: $%02X  Y: $%02X\n", r.A, r.X, r.Y)
	fmt.Fprintf(sb, "cycle: %d  op: %s", cpu.CycleCount(), cpu.CurrentInstruction())
	p.Text = sb.String()
}

func renderTrace(p *widgets.Paragraph) {
	trace := bus.Log()
	sb := &strings.Builder{}
	start := 0
	if len(trace) > 12 {
		start = len(trace) - 12
	}
	for _, a := range trace[start:] {
		fmt.Fprintf(sb, "%-5s $%04X = $%02X\n", a.Type, a.Addr, a.Val)
	}
	p.Text = sb.String()
}

func renderRAM(p *widgets.Paragraph, addr uint16, numRow, numCol int) {
	cur := addr
	sb := &strings.Builder{}
	for row := 0; row < numRow; row++ {
		fmt.Fprintf(sb, "$%04X:", cur)
		for col := 0; col < numCol; col++ {
			fmt.Fprintf(sb, " %02X", ram.Read(cur))
			cur++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func draw(origin uint16) {
	renderCPU(paragraphCPU)
	renderTrace(paragraphTrace)
	renderRAM(paragraphRAM, origin, 16, 16)
	ui.Render(paragraphCPU, paragraphTrace, paragraphRAM)
}

func initLayout() {
	paragraphCPU = widgets.NewParagraph()
	paragraphCPU.Title = "CPU"
	paragraphCPU.SetRect(0, 0, 40, 7)

	paragraphTrace = widgets.NewParagraph()
	paragraphTrace.Title = "Bus Trace"
	paragraphTrace.SetRect(40, 0, 80, 16)

	paragraphRAM = widgets.NewParagraph()
	paragraphRAM.Title = "RAM"
	paragraphRAM.SetRect(0, 7, 40, 25)
}

func loadMachine(romPath string, origin uint16) error {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	ram = cpu6502.NewRAM(0x10000)
	ram.LoadAt(origin, data)
	ram.Write(0xFFFC, uint8(origin))
	ram.Write(0xFFFD, uint8(origin>>8))

	bus = cpu6502.NewBus()
	bus.Map(0x0000, 0xFFFF, ram)

	cpu = cpu6502.New()
	cpu.AttachBus(bus)
	cpu.PowerUp()
	return nil
}

func main() {
	app := &cli.App{
		Name:    "nesdbg",
		Usage:   "step a 6502 program one cycle at a time in a terminal dashboard",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rom",
				Aliases:  []string{"r"},
				Usage:    "flat binary image to load",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "origin",
				Aliases: []string{"o"},
				Usage:   "address (hex) to load the image at, and to set the reset vector to",
				Value:   "8000",
			},
		},
		Action: func(c *cli.Context) error {
			origin, err := strconv.ParseUint(c.String("origin"), 16, 16)
			if err != nil {
				return fmt.Errorf("bad origin %q: %w", c.String("origin"), err)
			}
			return runDashboard(c.String("rom"), uint16(origin))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runDashboard(romPath string, origin uint16) error {
	if err := loadMachine(romPath, origin); err != nil {
		return err
	}

	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	initLayout()
	draw(origin)

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "<C-c>":
			return nil
		case "<Space>":
			bus.StartCycle()
			cpu.Tick()
			draw(origin)
		}
	}
	return nil
}
