package aesni

import (
	"log"
)

func checkCBC(dst, src []byte) {
	if len(src)%BlockSize != 0 {
		log.Panicf("aesni: CBC input length %d is not a multiple of %d", len(src), BlockSize)
	}
	if dst != nil && len(dst) < len(src) {
		log.Panicf("aesni: CBC output too short (%d < %d)", len(dst), len(src))
	}
	if !HasHardwareSupport() {
		log.Panic("BUG: aesni used on a CPU without AES instructions")
	}
}

// CBCEncrypt encrypts src in CBC mode, chaining from *iv, and writes the
// result to dst. On return *iv holds the last ciphertext block.
//
// A nil dst runs all rounds and advances *iv without writing anything,
// which is how the cipher is used as a CBC-MAC.
func (s *Schedule) CBCEncrypt(dst, src []byte, iv *[BlockSize]byte) {
	checkCBC(dst, src)
	if len(src) == 0 {
		return
	}
	if dst == nil {
		encryptCBCAsm(&s.rk[0][0], nil, &src[0], len(src), &iv[0], true)
		return
	}
	encryptCBCAsm(&s.rk[0][0], &dst[0], &src[0], len(src), &iv[0], false)
}

// CBCDecrypt decrypts src in CBC mode, chaining from *iv, and writes the
// plaintext to dst. On return *iv holds the last ciphertext block.
func (s *Schedule) CBCDecrypt(dst, src []byte, iv *[BlockSize]byte) {
	if dst == nil {
		log.Panic("aesni: CBC decryption needs an output buffer")
	}
	checkCBC(dst, src)
	if len(src) == 0 {
		return
	}
	decryptCBCAsm(&s.rk[0][0], &dst[0], &src[0], len(src), &iv[0])
}
