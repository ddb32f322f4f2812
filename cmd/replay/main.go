//go:build !tinygo

// Command replay runs the reflex firmware against scripted button presses on a simulated
// board and checks the outcome. It exits 1 if any expectation fails.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	var vcdPath string
	var quiet bool
	flag.StringVar(&vcdPath, "vcd", "", "Write a VCD trace of the port (single script only).")
	flag.BoolVar(&quiet, "quiet", false, "Print only failures and the summary.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: replay [flags] script.yaml...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if vcdPath != "" && len(paths) > 1 {
		fmt.Fprintln(os.Stderr, "error: -vcd takes a single script")
		os.Exit(2)
	}

	failed := 0
	for _, path := range paths {
		ok, err := run(os.Stdout, path, vcdPath, quiet)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d scripts failed\n", failed, len(paths))
		os.Exit(1)
	}
}

// run replays one script, writing its transcript to w, and reports whether every
// expectation held.
func run(w io.Writer, path, vcdPath string, quiet bool) (bool, error) {
	s, err := loadScript(path)
	if err != nil {
		return false, err
	}

	var trace io.Writer
	if vcdPath != "" {
		f, err := os.Create(vcdPath)
		if err != nil {
			return false, fmt.Errorf("create trace: %w", err)
		}
		defer func() { _ = f.Close() }()
		trace = f
	}

	res, err := replay(s, trace)
	if err != nil {
		return false, fmt.Errorf("%s: %w", s.Name, err)
	}
	if !quiet {
		for _, line := range res.lines {
			fmt.Fprintln(w, line)
		}
	}

	failures := check(s, res)
	for _, f := range failures {
		fmt.Fprintf(w, "FAIL %s: %s\n", s.Name, f)
	}
	status := "ok"
	if len(failures) > 0 {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%-4s %s: %d ticks, state %s, stage %d, %d sleeps\n",
		status, s.Name, res.ticks, res.state, res.stage, res.sleeps)
	return len(failures) == 0, nil
}
