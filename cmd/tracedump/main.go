package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/xranby/apitrace/trace"
)

func main() {
	var (
		color       = flag.String("color", "auto", "Colorize output: auto, always, never")
		noArgNames  = flag.Bool("no-arg-names", false, "Don't print argument names")
		threadIDs   = flag.Bool("threads", false, "Print thread ids")
		verbose     = flag.Bool("verbose", false, "Include verbose calls (e.g. glGetError() == GL_NO_ERROR)")
		from        = flag.Uint("from", 0, "First call number to print")
		count       = flag.Uint("count", 0, "Number of calls to print (0 = all)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		debug       = flag.Bool("debug", false, "Log decoder diagnostics to stderr")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tracedump [options] <trace>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	if *debug {
		logger, err := zap.NewDevelopment()
		if err == nil {
			trace.SetLogger(logger)
		}
	}

	if *interactive {
		if err := runInteractive(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := dump(path, *color, *noArgNames, *threadIDs, *verbose, *from, *count); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dump(path, color string, noArgNames, threadIDs, verbose bool, from, count uint) error {
	var flags trace.DumpFlags
	switch color {
	case "always":
	case "never":
		flags |= trace.DumpFlagNoColor
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			flags |= trace.DumpFlagNoColor
		}
	}
	if noArgNames {
		flags |= trace.DumpFlagNoArgNames
	}
	if threadIDs {
		flags |= trace.DumpFlagThreadIDs
	}

	p := trace.NewParser()
	if err := p.Open(path); err != nil {
		return err
	}
	defer p.Close()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	printed := uint(0)
	for {
		call, err := p.ParseCall(trace.FullParse)
		if err != nil {
			return err
		}
		if call == nil {
			return nil
		}
		if uint(call.No) < from {
			continue
		}
		if !verbose && call.Flags.Has(trace.CallFlagVerbose) {
			continue
		}
		trace.DumpCall(call, w, flags)
		printed++
		if count > 0 && printed >= count {
			return nil
		}
	}
}
