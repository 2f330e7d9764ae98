package symauth

import (
	"log"

	"github.com/remotefs/symauth/internal/aescore"
	"github.com/remotefs/symauth/internal/aesni"
)

// BackendTypeEnum indicates the AES implementation behind a Session.
type BackendTypeEnum int

const (
	_ = iota // Skip zero
	// BackendAuto picks BackendHardware if the CPU supports it and
	// BackendSoftware otherwise.
	BackendAuto BackendTypeEnum = iota
	// BackendSoftware is the table-driven AES in internal/aescore.
	BackendSoftware BackendTypeEnum = iota
	// BackendHardware uses the AES-NI instructions (internal/aesni).
	BackendHardware BackendTypeEnum = iota
)

func (b BackendTypeEnum) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendSoftware:
		return "software"
	case BackendHardware:
		return "AES-NI"
	}
	return "unknown"
}

// resolve turns BackendAuto into a concrete backend.
func (b BackendTypeEnum) resolve() BackendTypeEnum {
	switch b {
	case BackendAuto:
		if aesni.HasHardwareSupport() {
			return BackendHardware
		}
		return BackendSoftware
	case BackendSoftware:
		return b
	case BackendHardware:
		if !aesni.HasHardwareSupport() {
			log.Panic("symauth: AES-NI backend requested but the CPU does not support it")
		}
		return b
	}
	log.Panicf("symauth: unknown backend %d", int(b))
	return 0
}

// cbcKey is one key schedule driven in CBC mode. Both *aescore.Schedule and
// *aesni.Schedule satisfy it.
type cbcKey interface {
	CBCEncrypt(dst, src []byte, iv *[BlockSize]byte)
	CBCDecrypt(dst, src []byte, iv *[BlockSize]byte)
	Wipe()
}

var (
	_ cbcKey = &aescore.Schedule{}
	_ cbcKey = &aesni.Schedule{}
)

// newKey expands "key" for the given backend. The software backend needs
// a separate schedule for decryption, the hardware schedule serves both.
func newKey(backend BackendTypeEnum, key []byte, decrypt bool) cbcKey {
	var k cbcKey
	var err error
	switch backend {
	case BackendHardware:
		k, err = aesni.NewSchedule(key)
	case BackendSoftware:
		if decrypt {
			k, err = aescore.NewDecryptSchedule(key)
		} else {
			k, err = aescore.NewEncryptSchedule(key)
		}
	default:
		log.Panicf("BUG: unresolved backend %v", backend)
	}
	if err != nil {
		log.Panic(err)
	}
	return k
}
