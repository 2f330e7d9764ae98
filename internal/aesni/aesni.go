// Package aesni implements AES-256 CBC on top of the x86-64 AES instructions
// (AESENC, AESDEC, AESIMC).
//
// The output is bit-identical to the table implementation in package
// aescore, which means two peers can talk to each other no matter which
// backend each of them picked. Only 256-bit keys are supported.
//
// Call HasHardwareSupport before using a Schedule for encryption or
// decryption. On CPUs or builds without AES instructions the CBC functions
// panic.
package aesni

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/remotefs/symauth/internal/aescore"
)

const (
	// BlockSize is the AES block size in bytes.
	BlockSize = aescore.BlockSize
	// KeyLen is the only supported key length. 32 for AES-256.
	KeyLen = 32
	// Rounds is the AES-256 round count.
	Rounds = 14
)

// HasHardwareSupport tells you if the CPU we are running on has AES
// instructions that this package can use.
//
// The answer comes from golang.org/x/sys/cpu, which probes the CPU once at
// program start, so calling this is cheap and safe from any goroutine.
func HasHardwareSupport() bool {
	return haveAsm && runtime.GOARCH == "amd64" && cpu.X86.HasAES
}
