package main

import (
	"fmt"

	"github.com/remotefs/symauth/internal/tlog"
)

const tUsage = "" +
	"Usage: " + tlog.ProgramName + " -speed|-info|-selftest|-version [OPTIONS]\n"

// helpShort is what gets displayed when no operation is passed.
func helpShort() {
	printVersion()
	fmt.Printf("\n")
	fmt.Printf(tUsage)
	fmt.Printf(`
Operations:
  -info              Display CPU features and the backend in use
  -selftest          Run known-answer and backend interoperability tests
  -speed             Run crypto speed test
  -version           Print version information

Options:
  -backend           AES backend: auto (default), software or aesni
  -d, -debug         Enable debug output
  -h, -help          This help text
  -json              Print -info output as JSON
  -q, -quiet         Silence informational messages
  -wpanic            Panic on warnings
`)
}
