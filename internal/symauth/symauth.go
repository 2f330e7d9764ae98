// Package symauth implements the authenticated encryption used on a remote
// session transport. Two peers share two 32-byte secrets. Each side
// encrypts with AES-256-CBC and appends a 16-byte tag that is computed by
// CBC-MAC'ing the ciphertext, keyed with the SHA-256 of the secrets and
// seeded from a SHA-256 digest over the IV and the ciphertext boundaries.
//
// The server and the client are constructed from the same two secrets and
// get mirrored keys, so what one side encrypts the other side decrypts.
package symauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"log"

	"github.com/remotefs/symauth/internal/aescore"
	"github.com/remotefs/symauth/internal/tlog"
)

const (
	// BlockSize is the AES block size. Payloads are a multiple of it.
	BlockSize = aescore.BlockSize
	// KeyLen is the length of each shared secret. 32 for AES-256.
	KeyLen = 32
	// DigestSize is the SHA-256 output length.
	DigestSize = sha256.Size
	// TagLen is the length of the authentication tag.
	TagLen = BlockSize

	sessionMagic = 0x542c72f2
)

// Session holds the four directional keys of one end of a connection.
// The keys are read-only after New, so a Session can be used by several
// goroutines at once as long as each one drives its own IV.
type Session struct {
	// magic is sessionMagic while the Session is usable
	magic    uint32
	backend  BackendTypeEnum
	enc      cbcKey
	dec      cbcKey
	authsend cbcKey
	authrecv cbcKey
}

// New returns a Session using the fastest backend available on this CPU.
// Both secrets must be KeyLen bytes long.
func New(isServer bool, secretA []byte, secretB []byte) *Session {
	return NewWithBackend(isServer, secretA, secretB, BackendAuto)
}

// NewWithBackend is New with an explicit backend choice. Asking for
// BackendHardware on a CPU without AES-NI panics.
func NewWithBackend(isServer bool, secretA []byte, secretB []byte, backend BackendTypeEnum) *Session {
	if len(secretA) != KeyLen || len(secretB) != KeyLen {
		log.Panicf("symauth: secrets must be %d bytes long (have %d and %d)", KeyLen, len(secretA), len(secretB))
	}
	backend = backend.resolve()
	hashA := sha256.Sum256(secretA)
	hashB := sha256.Sum256(secretB)
	defer wipe(hashA[:])
	defer wipe(hashB[:])

	encKey, decKey := secretA, secretB
	sendKey, recvKey := hashA[:], hashB[:]
	if !isServer {
		encKey, decKey = decKey, encKey
		sendKey, recvKey = recvKey, sendKey
	}
	s := &Session{
		magic:    sessionMagic,
		backend:  backend,
		enc:      newKey(backend, encKey, false),
		dec:      newKey(backend, decKey, true),
		authsend: newKey(backend, sendKey, false),
		authrecv: newKey(backend, recvKey, false),
	}
	tlog.Debug.Printf("symauth: new session, server=%v backend=%v", isServer, backend)
	return s
}

// Backend returns the backend selected at construction, either
// BackendSoftware or BackendHardware.
func (s *Session) Backend() BackendTypeEnum {
	s.check("Backend")
	return s.backend
}

// HardwareAccelerated tells if the Session runs on AES-NI.
func (s *Session) HardwareAccelerated() bool {
	return s.Backend() == BackendHardware
}

// Encrypt encrypts "plaintext" into "dst" chaining from *iv and returns the
// authentication tag. len(dst) must equal len(plaintext), which must be a
// non-zero multiple of BlockSize. dst may be plaintext itself.
//
// On return *iv holds the last ciphertext block, so consecutive messages
// can be chained by passing the same iv again.
func (s *Session) Encrypt(dst, plaintext []byte, iv *[BlockSize]byte) (tag [TagLen]byte) {
	s.check("Encrypt")
	checkLen(dst, plaintext)
	ivOrig := *iv
	s.enc.CBCEncrypt(dst, plaintext, iv)
	return computeTag(s.authsend, &ivOrig, dst)
}

// Decrypt verifies "tag" and decrypts "ciphertext" into "dst", chaining
// from *iv. It returns false if the tag does not match.
//
// The plaintext is written to dst even if the tag is wrong. Callers must
// not use or forward it in that case. Verifying before decrypting would be
// the safer construction, but the peer expects this behavior.
//
// On return *iv holds the last ciphertext block.
func (s *Session) Decrypt(dst, ciphertext []byte, tag *[TagLen]byte, iv *[BlockSize]byte) bool {
	s.check("Decrypt")
	checkLen(dst, ciphertext)
	// dst may alias ciphertext, so the tag has to be computed first
	want := computeTag(s.authrecv, iv, ciphertext)
	s.dec.CBCDecrypt(dst, ciphertext, iv)
	return subtle.ConstantTimeCompare(want[:], tag[:]) == 1
}

// Free erases the keys. The Session must not be used afterwards, doing so
// is a fatal programming error. Free must only be called after all
// in-flight Encrypt and Decrypt calls have returned.
func (s *Session) Free() {
	s.check("Free")
	for _, k := range []cbcKey{s.enc, s.dec, s.authsend, s.authrecv} {
		k.Wipe()
	}
	*s = Session{}
}

// computeTag returns the authentication tag of ciphertext "ct" that was
// encrypted starting from chain value "iv".
func computeTag(key cbcKey, iv *[BlockSize]byte, ct []byte) (tag [TagLen]byte) {
	// The synthetic block is E(iv) under the auth key, started from a zero
	// chain.
	var synth [BlockSize]byte
	key.CBCEncrypt(nil, iv[:], &synth)

	var in [4 * BlockSize]byte
	copy(in[0:], iv[:])
	copy(in[BlockSize:], ct[:BlockSize])
	copy(in[2*BlockSize:], ct[len(ct)-BlockSize:])
	copy(in[3*BlockSize:], synth[:])
	digest := sha256.Sum256(in[:])

	copy(tag[:], digest[:BlockSize])
	key.CBCEncrypt(nil, ct, &tag)
	key.CBCEncrypt(nil, digest[BlockSize:], &tag)
	return tag
}

func checkLen(dst, src []byte) {
	if len(src) == 0 || len(src)%BlockSize != 0 {
		log.Panicf("symauth: payload length %d is not a positive multiple of %d", len(src), BlockSize)
	}
	if len(dst) != len(src) {
		log.Panicf("symauth: output length %d does not match input length %d", len(dst), len(src))
	}
}

// check panics if the Session has been freed or was never initialized.
func (s *Session) check(op string) {
	if s == nil || s.magic != sessionMagic {
		tlog.Fatal.Printf("symauth: %s called on a freed or corrupted session", op)
		log.Panicf("BUG: symauth: %s on invalid session", op)
	}
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
