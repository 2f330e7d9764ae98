// Package aescore is a table driven software implementation of the AES block
// cipher (Rijndael with 16-byte blocks) for 128, 192 and 256-bit keys, plus
// CBC chaining on top of it.
//
// It exists so that the session protocol can run on CPUs without AES
// instructions while producing exactly the same bytes as the hardware
// backend in package aesni.
package aescore

import (
	"errors"
	"strconv"
)

// BlockSize is the AES block size in bytes.
const BlockSize = 16

// ErrInvalidArgument is matched by all errors returned from the schedule
// constructors.
var ErrInvalidArgument = errors.New("aescore: invalid argument")

// KeySizeError is returned for keys that are not 16, 24 or 32 bytes long.
// A missing (nil) key reports size 0.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "aescore: invalid key size " + strconv.Itoa(int(k))
}

// Unwrap lets errors.Is(err, ErrInvalidArgument) succeed.
func (k KeySizeError) Unwrap() error {
	return ErrInvalidArgument
}

// Rounds returns the number of rounds for a key of keyLen bytes, or 0 if the
// length is not supported.
func Rounds(keyLen int) int {
	switch keyLen {
	case 16:
		return 10
	case 24:
		return 12
	case 32:
		return 14
	}
	return 0
}
