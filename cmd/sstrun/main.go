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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v2"

	"github.com/master-g/nes6502/pkg/conformance"
	"github.com/master-g/nes6502/pkg/cpu6502"
)

// stderrLogger routes the core's non-fatal diagnostics (bus conflicts)
// to stderr so they show up alongside the summary.
type stderrLogger struct{}

func (stderrLogger) Log(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

func main() {
	cpu6502.SetLogger(stderrLogger{})
	app := &cli.App{
		Name:    "sstrun",
		Usage:   "run a SingleStepTests-style 6502 JSON corpus against pkg/cpu6502",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "corpus",
				Aliases:  []string{"c"},
				Usage:    "directory of corpus JSON files",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "strict",
				Aliases: []string{"s"},
				Usage:   "exit non-zero on the first failing case instead of reporting a summary",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.String("corpus"), c.Bool("strict"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir string, strict bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var total, passed int
	var failures []string

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		cases, err := conformance.DecodeCases(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}

		results := conformance.RunAll(cases)
		summary := conformance.Summarize(results)
		total += summary.Total
		passed += summary.Passed
		for _, f := range summary.Failed {
			msg := fmt.Sprintf("%s/%s: %v", e.Name(), f.Name, f.Err)
			failures = append(failures, msg)
			if strict {
				return errors.New(msg)
			}
		}
	}

	fmt.Printf("%d/%d cases passed\n", passed, total)
	for _, f := range failures {
		fmt.Println("  FAIL", f)
	}
	if passed != total {
		return cli.Exit("", 1)
	}
	return nil
}
