package main

import (
	"os"

	"github.com/remotefs/symauth/internal/exitcodes"
	"github.com/remotefs/symauth/internal/speed"
	"github.com/remotefs/symauth/internal/tlog"
)

func main() {
	// Parse all command-line options (i.e. arguments starting with "-")
	// into "args".
	args, err := parseCliOpts(os.Args)
	if err != nil {
		tlog.Fatal.Println(err)
		exitcodes.Exit(err)
	}
	if args.debug {
		tlog.Debug.Enabled = true
	}
	if args.version {
		printVersion()
		os.Exit(0)
	}
	if args.quiet && !args.debug {
		tlog.Info.Enabled = false
	}
	if args.wpanic {
		tlog.Warn.Wpanic = true
		tlog.Debug.Printf("Panicking on warnings")
	}
	tlog.Debug.Printf("cli: %s", prettyArgs())
	switch {
	case args.speed:
		speed.Run()
	case args.info:
		info(&args)
	case args.selftest:
		err = selftest(args._backend)
		if err != nil {
			tlog.Fatal.Println(err)
			exitcodes.Exit(err)
		}
		tlog.Info.Printf("%sselftest passed%s", tlog.ColorGreen, tlog.ColorReset)
	default:
		helpShort()
		os.Exit(exitcodes.Usage)
	}
}
