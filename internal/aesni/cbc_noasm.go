//go:build !amd64 || !gc || purego
// +build !amd64 !gc purego

package aesni

import (
	"log"
)

const haveAsm = false

func encryptCBCAsm(_ *byte, _ *byte, _ *byte, _ int, _ *byte, _ bool) {
	log.Panic("aesni: compiled without AES-NI support")
}

func decryptCBCAsm(_ *byte, _ *byte, _ *byte, _ int, _ *byte) {
	log.Panic("aesni: compiled without AES-NI support")
}

func invMixColumnsAsm(_ *byte, _ *byte) {
	log.Panic("aesni: compiled without AES-NI support")
}
