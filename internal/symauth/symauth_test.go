package symauth

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/remotefs/symauth/internal/aesni"
)

// Get "n" random bytes from /dev/urandom or panic
func randBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		log.Panic("Failed to read random bytes: " + err.Error())
	}
	return b
}

func randIV() (iv [BlockSize]byte) {
	copy(iv[:], randBytes(BlockSize))
	return iv
}

// backends returns the backends that work on this machine.
func backends() []BackendTypeEnum {
	b := []BackendTypeEnum{BackendSoftware}
	if aesni.HasHardwareSupport() {
		b = append(b, BackendHardware)
	}
	return b
}

func expectPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("The code did not panic")
		}
	}()
	f()
}

func seq(start, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(start + i)
	}
	return b
}

// Known-answer test. The ciphertext is plain AES-256-CBC and can be checked
// with
//
//	openssl enc -aes-256-cbc -nopad -K 0001..1f -iv f0f1..ff
func TestKnownAnswer(t *testing.T) {
	secretA := seq(0, KeyLen)
	secretB := seq(32, KeyLen)
	pt := append([]byte("symauth known answer test vector"), seq(0, 32)...)
	testTable := []struct {
		server bool
		ct     string
		tag    string
	}{
		{
			server: true,
			ct: "1fad50a976dda5cd8d21ad1cb52b904309b2ddf254d1c3def7ea73373c4e0737" +
				"437b08561034c27e90b8549f9fdd037eb3f0f9ba4f6dd54b07f1c2e3d7e10c2b",
			tag: "2b7a4f66a547a39d1430c670aa5d91b5",
		},
		{
			server: false,
			ct: "2bcba74a2e0dc66d14dffb8549b8a9c28a848b749e4ffdd6506b5992846060e3" +
				"2420da22148c62115a91ee92c6adc9a20e814b432ae6aae696375b6c01f1cd6f",
			tag: "3198850d4e4a02961bc0f399e409c434",
		},
	}
	for _, b := range backends() {
		for _, v := range testTable {
			s := NewWithBackend(v.server, secretA, secretB, b)
			var iv [BlockSize]byte
			copy(iv[:], seq(0xf0, BlockSize))
			ct := make([]byte, len(pt))
			tag := s.Encrypt(ct, pt, &iv)
			if have := hex.EncodeToString(ct); have != v.ct {
				t.Errorf("%v server=%v: ciphertext\nwant=%s\nhave=%s", b, v.server, v.ct, have)
			}
			if have := hex.EncodeToString(tag[:]); have != v.tag {
				t.Errorf("%v server=%v: tag want=%s have=%s", b, v.server, v.tag, have)
			}
			if !bytes.Equal(iv[:], ct[len(ct)-BlockSize:]) {
				t.Errorf("%v server=%v: iv is not the last ciphertext block", b, v.server)
			}
			s.Free()
		}
	}
}

// A server and a client built from the same secrets must understand each
// other, in both directions, over a chain of messages, and no matter which
// backend each side uses.
func TestMirroring(t *testing.T) {
	for _, bs := range backends() {
		for _, bc := range backends() {
			t.Run(fmt.Sprintf("%v-%v", bs, bc), func(t *testing.T) {
				a := randBytes(KeyLen)
				b := randBytes(KeyLen)
				server := NewWithBackend(true, a, b, bs)
				client := NewWithBackend(false, a, b, bc)
				defer server.Free()
				defer client.Free()
				pairs := []struct {
					name     string
					from, to *Session
				}{
					{"server->client", server, client},
					{"client->server", client, server},
				}
				for _, p := range pairs {
					sendIV := randIV()
					recvIV := sendIV
					for i := 1; i < 20; i++ {
						pt := randBytes(i * BlockSize)
						ct := make([]byte, len(pt))
						tag := p.from.Encrypt(ct, pt, &sendIV)
						out := make([]byte, len(ct))
						if !p.to.Decrypt(out, ct, &tag, &recvIV) {
							t.Fatalf("%s message %d: tag mismatch", p.name, i)
						}
						if !bytes.Equal(pt, out) {
							t.Fatalf("%s message %d: plaintext differs", p.name, i)
						}
						if sendIV != recvIV {
							t.Fatalf("%s message %d: chain state differs", p.name, i)
						}
					}
				}
			})
		}
	}
}

// Two sessions with the same role use different keys for sending and
// receiving and must reject each other's messages.
func TestNonMirroring(t *testing.T) {
	a := randBytes(KeyLen)
	b := randBytes(KeyLen)
	for _, server := range []bool{true, false} {
		s1 := New(server, a, b)
		s2 := New(server, a, b)
		pt := randBytes(4 * BlockSize)
		ct := make([]byte, len(pt))
		iv := randIV()
		iv2 := iv
		tag := s1.Encrypt(ct, pt, &iv)
		out := make([]byte, len(ct))
		if s2.Decrypt(out, ct, &tag, &iv2) {
			t.Errorf("server=%v: same-role session accepted the message", server)
		}
		if bytes.Equal(pt, out) {
			t.Errorf("server=%v: same-role session recovered the plaintext", server)
		}
	}
	// Swapped secrets with opposite roles is the same as equal roles
	s1 := New(true, a, b)
	s2 := New(false, b, a)
	pt := randBytes(BlockSize)
	ct := make([]byte, len(pt))
	iv := randIV()
	iv2 := iv
	tag := s1.Encrypt(ct, pt, &iv)
	if s2.Decrypt(make([]byte, len(ct)), ct, &tag, &iv2) {
		t.Error("session with swapped secrets accepted the message")
	}
}

// Flipping any bit of the ciphertext or the tag must be detected.
func TestTamper(t *testing.T) {
	a := randBytes(KeyLen)
	b := randBytes(KeyLen)
	server := New(true, a, b)
	client := New(false, a, b)
	pt := randBytes(5 * BlockSize)
	ct := make([]byte, len(pt))
	iv := randIV()
	ivStart := iv
	tag := server.Encrypt(ct, pt, &iv)
	out := make([]byte, len(ct))

	for i := 0; i < len(ct)*8; i++ {
		ct[i/8] ^= 1 << uint(i%8)
		iv = ivStart
		if client.Decrypt(out, ct, &tag, &iv) {
			t.Fatalf("ciphertext bit %d flipped: tag still valid", i)
		}
		ct[i/8] ^= 1 << uint(i%8)
	}
	for i := 0; i < TagLen*8; i++ {
		tag[i/8] ^= 1 << uint(i%8)
		iv = ivStart
		if client.Decrypt(out, ct, &tag, &iv) {
			t.Fatalf("tag bit %d flipped: tag still valid", i)
		}
		tag[i/8] ^= 1 << uint(i%8)
	}
	// A different IV must be detected as well
	for i := 0; i < BlockSize*8; i++ {
		iv = ivStart
		iv[i/8] ^= 1 << uint(i%8)
		if client.Decrypt(out, ct, &tag, &iv) {
			t.Fatalf("iv bit %d flipped: tag still valid", i)
		}
	}
	// Untouched message still passes
	iv = ivStart
	if !client.Decrypt(out, ct, &tag, &iv) || !bytes.Equal(out, pt) {
		t.Error("original message rejected")
	}
}

// Decrypt writes the plaintext even when the tag is wrong.
func TestDecryptOnMismatch(t *testing.T) {
	a := randBytes(KeyLen)
	b := randBytes(KeyLen)
	server := New(true, a, b)
	client := New(false, a, b)
	pt := randBytes(3 * BlockSize)
	ct := make([]byte, len(pt))
	iv := randIV()
	iv2 := iv
	tag := server.Encrypt(ct, pt, &iv)
	tag[0] ^= 0xff
	out := make([]byte, len(ct))
	if client.Decrypt(out, ct, &tag, &iv2) {
		t.Fatal("bad tag accepted")
	}
	if !bytes.Equal(out, pt) {
		t.Error("plaintext was not written")
	}
	if iv != iv2 {
		t.Error("iv did not advance")
	}
}

func TestInPlace(t *testing.T) {
	for _, backend := range backends() {
		a := randBytes(KeyLen)
		b := randBytes(KeyLen)
		server := NewWithBackend(true, a, b, backend)
		client := NewWithBackend(false, a, b, backend)
		pt := randBytes(8 * BlockSize)
		buf := append([]byte{}, pt...)
		iv := randIV()
		iv2 := iv
		tag := server.Encrypt(buf, buf, &iv)
		if bytes.Equal(buf, pt) {
			t.Fatalf("%v: buffer not encrypted", backend)
		}
		if !client.Decrypt(buf, buf, &tag, &iv2) {
			t.Fatalf("%v: in-place decryption rejected the tag", backend)
		}
		if !bytes.Equal(buf, pt) {
			t.Fatalf("%v: in-place round trip failed", backend)
		}
	}
}

func TestBackend(t *testing.T) {
	s := NewWithBackend(true, randBytes(KeyLen), randBytes(KeyLen), BackendSoftware)
	if s.Backend() != BackendSoftware || s.HardwareAccelerated() {
		t.Errorf("want software backend, have %v", s.Backend())
	}
	s = New(true, randBytes(KeyLen), randBytes(KeyLen))
	if s.HardwareAccelerated() != aesni.HasHardwareSupport() {
		t.Errorf("auto mode picked %v, AES-NI=%v", s.Backend(), aesni.HasHardwareSupport())
	}
	if s.Backend() == BackendAuto {
		t.Error("auto was not resolved")
	}
	if !aesni.HasHardwareSupport() {
		expectPanic(t, func() {
			NewWithBackend(true, randBytes(KeyLen), randBytes(KeyLen), BackendHardware)
		})
	}
}

func TestUseAfterFree(t *testing.T) {
	s := New(true, randBytes(KeyLen), randBytes(KeyLen))
	s.Free()
	buf := make([]byte, BlockSize)
	var iv [BlockSize]byte
	var tag [TagLen]byte
	expectPanic(t, func() { s.Encrypt(buf, buf, &iv) })
	expectPanic(t, func() { s.Decrypt(buf, buf, &tag, &iv) })
	expectPanic(t, func() { s.Backend() })
	expectPanic(t, func() { s.Free() })
	var zero Session
	expectPanic(t, func() { zero.Encrypt(buf, buf, &iv) })
}

func TestBadArguments(t *testing.T) {
	expectPanic(t, func() { New(true, make([]byte, 16), make([]byte, KeyLen)) })
	expectPanic(t, func() { New(true, make([]byte, KeyLen), nil) })

	s := New(true, randBytes(KeyLen), randBytes(KeyLen))
	var iv [BlockSize]byte
	var tag [TagLen]byte
	testTable := []struct {
		name   string
		dstLen int
		srcLen int
	}{
		{"empty", 0, 0},
		{"partialBlock", 17, 17},
		{"shortOutput", 16, 32},
		{"longOutput", 48, 32},
	}
	for _, v := range testTable {
		t.Run(v.name, func(t *testing.T) {
			dst := make([]byte, v.dstLen)
			src := make([]byte, v.srcLen)
			expectPanic(t, func() { s.Encrypt(dst, src, &iv) })
			expectPanic(t, func() { s.Decrypt(dst, src, &tag, &iv) })
		})
	}
}

// One Session can serve several goroutines as long as each has its own
// IV chain.
func TestConcurrent(t *testing.T) {
	a := randBytes(KeyLen)
	b := randBytes(KeyLen)
	server := New(true, a, b)
	client := New(false, a, b)
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			sendIV := randIV()
			recvIV := sendIV
			for i := 1; i <= 50; i++ {
				pt := randBytes(i * BlockSize)
				ct := make([]byte, len(pt))
				tag := server.Encrypt(ct, pt, &sendIV)
				if !client.Decrypt(ct, ct, &tag, &recvIV) {
					return fmt.Errorf("message %d: tag mismatch", i)
				}
				if !bytes.Equal(pt, ct) {
					return fmt.Errorf("message %d: plaintext differs", i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestHexDump(t *testing.T) {
	testTable := []struct {
		f    int
		msg  string
		in   []byte
		want string
	}{
		{
			2, "hdr", seq(0, 36),
			"hdr 00 01 \n" +
				"02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f 10 11   12 13 14 15 16 17 18 19 1a 1b 1c 1d 1e 1f 20 21   \n" +
				"22 23 \n" +
				"----------------\n",
		},
		{4, "x", seq(0, 3), "x 00 01 02 \n----------------\n"},
		{0, "empty", nil, "empty \n----------------\n"},
	}
	for _, v := range testTable {
		if have := HexDump(v.f, v.msg, v.in); have != v.want {
			t.Errorf("f=%d msg=%q:\nwant=%q\nhave=%q", v.f, v.msg, v.want, have)
		}
	}
}

func BenchmarkEncrypt(b *testing.B) {
	for _, backend := range backends() {
		b.Run(backend.String(), func(b *testing.B) {
			s := NewWithBackend(true, randBytes(KeyLen), randBytes(KeyLen), backend)
			buf := make([]byte, 4096)
			var iv [BlockSize]byte
			b.SetBytes(int64(len(buf)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Encrypt(buf, buf, &iv)
			}
		})
	}
}
