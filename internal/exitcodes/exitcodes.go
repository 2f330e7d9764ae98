// Package exitcodes contains all well-defined exit codes that symauth
// can return.
package exitcodes

import (
	"errors"
	"os"
)

const (
	// Usage - usage error like wrong cli syntax, wrong number of parameters.
	Usage = 1
	// 2 is reserved because it is used by Go panic

	// SelfTest means that "-selftest" found a mismatch. The binary must not
	// be used on this machine.
	SelfTest = 3
	// NoHardware means AES-NI was requested with "-backend" but the CPU
	// does not have it.
	NoHardware = 4
	// Other error - please inspect the message
	Other = 11
)

// Err wraps an error with an associated numeric exit code
type Err struct {
	error
	code int
}

// NewErr returns an error containing "msg" and the exit code "code".
func NewErr(msg string, code int) Err {
	return Err{
		error: errors.New(msg),
		code:  code,
	}
}

// Code returns the exit code that belongs to "err". Errors that do not
// carry one map to Other, nil maps to 0.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var err2 Err
	if errors.As(err, &err2) {
		return err2.code
	}
	return Other
}

// Exit extracts the numeric exit code from "err" (if available) and exits the
// application.
func Exit(err error) {
	os.Exit(Code(err))
}
