package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/integrii/flaggy"

	"github.com/remotefs/symauth/internal/exitcodes"
	"github.com/remotefs/symauth/internal/symauth"
	"github.com/remotefs/symauth/internal/tlog"
)

// argContainer stores the parsed CLI options and arguments
type argContainer struct {
	debug, quiet, wpanic, version, speed, info, json, selftest bool
	backend string
	// Helper variables that are NOT cli options all start with an underscore
	// _backend is the parsed "-backend" value
	_backend symauth.BackendTypeEnum
}

// newParser returns a flaggy parser with all our options registered to
// "args".
func newParser(args *argContainer) *flaggy.Parser {
	p := flaggy.NewParser(tlog.ProgramName)
	p.Description = "authenticated AES-256-CBC session encryption"
	p.ShowVersionWithVersionFlag = false

	p.Bool(&args.debug, "d", "", "")
	p.Bool(&args.debug, "debug", "", "Enable debug output")
	p.Bool(&args.quiet, "q", "", "")
	p.Bool(&args.quiet, "quiet", "", "Quiet - silence informational messages")
	p.Bool(&args.wpanic, "wpanic", "", "When encountering a warning, panic and exit immediately")
	p.Bool(&args.version, "version", "", "Print version and exit")
	p.Bool(&args.speed, "speed", "", "Run crypto speed test")
	p.Bool(&args.info, "info", "", "Display CPU and backend information")
	p.Bool(&args.json, "json", "", "Print -info output as JSON")
	p.Bool(&args.selftest, "selftest", "", "Run known-answer and interoperability tests")
	args.backend = "auto"
	p.String(&args.backend, "backend", "", "AES backend: auto, software or aesni")
	return p
}

// parseCliOpts - parse command line options. "osArgs" includes the program
// name, like os.Args.
func parseCliOpts(osArgs []string) (args argContainer, err error) {
	p := newParser(&args)
	if len(osArgs) > 0 {
		osArgs = osArgs[1:]
	}
	err = p.ParseArgs(osArgs)
	if err != nil {
		return args, exitcodes.NewErr(fmt.Sprintf("Invalid command line: %v. Try '%s -help'.", err, tlog.ProgramName), exitcodes.Usage)
	}
	args._backend, err = parseBackend(args.backend)
	if err != nil {
		return args, err
	}
	if n := countOpFlags(&args); n > 1 {
		return args, exitcodes.NewErr("At most one of -version, -speed, -info and -selftest can be passed", exitcodes.Usage)
	}
	if args.json && !args.info {
		return args, exitcodes.NewErr("-json only works together with -info", exitcodes.Usage)
	}
	if args.debug && args.quiet {
		tlog.Warn.Printf("-d and -q were both passed, debug output wins")
	}
	return args, nil
}

// parseBackend converts the "-backend" string.
func parseBackend(s string) (symauth.BackendTypeEnum, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return symauth.BackendAuto, nil
	case "software", "go":
		return symauth.BackendSoftware, nil
	case "aesni", "aes-ni", "hardware":
		return symauth.BackendHardware, nil
	}
	return 0, exitcodes.NewErr(fmt.Sprintf("Invalid \"-backend\" setting %q", s), exitcodes.Usage)
}

// prettyArgs pretty-prints the command-line arguments.
func prettyArgs() string {
	pa := fmt.Sprintf("%v", os.Args)
	// Get rid of "[" and "]"
	pa = pa[1 : len(pa)-1]
	return pa
}

// countOpFlags counts the number of operation flags we were passed.
func countOpFlags(args *argContainer) int {
	var count int
	if args.version {
		count++
	}
	if args.speed {
		count++
	}
	if args.info {
		count++
	}
	if args.selftest {
		count++
	}
	return count
}
