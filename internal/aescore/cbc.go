package aescore

import (
	"log"

	"github.com/lukechampine/fastxor"
)

func (s *Schedule) checkCBC(dst, src []byte, decrypt bool) {
	if s.rounds == 0 {
		log.Panic("BUG: tried to use a wiped key schedule")
	}
	if s.decrypt != decrypt {
		log.Panicf("BUG: CBC direction mismatch, schedule decrypt=%v", s.decrypt)
	}
	if len(src)%BlockSize != 0 {
		log.Panicf("aescore: CBC input length %d is not a multiple of %d", len(src), BlockSize)
	}
	if dst != nil && len(dst) < len(src) {
		log.Panicf("aescore: CBC output too short (%d < %d)", len(dst), len(src))
	}
}

// CBCEncrypt encrypts src in CBC mode, chaining from *iv, and writes the
// result to dst. On return *iv holds the last ciphertext block, ready for
// the next call.
//
// If dst is nil nothing is written but *iv is advanced exactly as if it had
// been. This turns the cipher into a CBC-MAC.
//
// dst and src may overlap entirely but not partially.
func (s *Schedule) CBCEncrypt(dst, src []byte, iv *[BlockSize]byte) {
	s.checkCBC(dst, src, false)
	var buf [BlockSize]byte
	chain := *iv
	for i := 0; i < len(src); i += BlockSize {
		fastxor.Bytes(buf[:], src[i:i+BlockSize], chain[:])
		encryptBlock(s, chain[:], buf[:])
		if dst != nil {
			copy(dst[i:i+BlockSize], chain[:])
		}
	}
	*iv = chain
}

// CBCDecrypt decrypts src in CBC mode, chaining from *iv, and writes the
// plaintext to dst. On return *iv holds the last ciphertext block.
//
// dst and src may overlap entirely but not partially.
func (s *Schedule) CBCDecrypt(dst, src []byte, iv *[BlockSize]byte) {
	if dst == nil {
		log.Panic("aescore: CBC decryption needs an output buffer")
	}
	s.checkCBC(dst, src, true)
	var tmp, next [BlockSize]byte
	chain := *iv
	for i := 0; i < len(src); i += BlockSize {
		// Save the ciphertext block before dst overwrites it
		copy(next[:], src[i:i+BlockSize])
		decryptBlock(s, tmp[:], next[:])
		fastxor.Bytes(dst[i:i+BlockSize], tmp[:], chain[:])
		chain = next
	}
	*iv = chain
}
