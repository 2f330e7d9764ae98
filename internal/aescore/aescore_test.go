package aescore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"testing"

	"github.com/rfjakob/eme"
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

func unhex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		log.Panic(err)
	}
	return b
}

// FIPS-197 Appendix C example vectors
var fipsVectors = []struct {
	key    string
	rounds int
	out    string
}{
	{"000102030405060708090a0b0c0d0e0f", 10, "69c4e0d86a7b0430d8cdb78070b4c55a"},
	{"000102030405060708090a0b0c0d0e0f1011121314151617", 12, "dda97ca4864cdfe06eaf70a0ec0d7191"},
	{"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", 14, "8ea2b7ca516745bfeafc49904b496089"},
}

func TestFIPS197(t *testing.T) {
	in := unhex("00112233445566778899aabbccddeeff")
	for _, v := range fipsVectors {
		key := unhex(v.key)
		enc, err := NewEncryptSchedule(key)
		if err != nil {
			t.Fatal(err)
		}
		if enc.Rounds() != v.rounds {
			t.Errorf("%d-bit key: want %d rounds, have %d", len(key)*8, v.rounds, enc.Rounds())
		}
		out := make([]byte, BlockSize)
		enc.EncryptBlock(out, in)
		if have := hex.EncodeToString(out); have != v.out {
			t.Errorf("%d-bit key:\nwant=%s\nhave=%s", len(key)*8, v.out, have)
		}
		dec, err := NewDecryptSchedule(key)
		if err != nil {
			t.Fatal(err)
		}
		dec.DecryptBlock(out, out)
		if !bytes.Equal(out, in) {
			t.Errorf("%d-bit key: decryption gave %x", len(key)*8, out)
		}
	}
}

func TestRounds(t *testing.T) {
	testTable := []struct {
		keyLen int
		want   int
	}{
		{0, 0}, {15, 0}, {16, 10}, {20, 0}, {24, 12}, {32, 14}, {64, 0},
	}
	for _, v := range testTable {
		if have := Rounds(v.keyLen); have != v.want {
			t.Errorf("keyLen=%d want=%d have=%d", v.keyLen, v.want, have)
		}
	}
}

func TestInvalidKeySize(t *testing.T) {
	for _, n := range []int{1, 8, 15, 17, 23, 31, 33, 48} {
		key := make([]byte, n)
		_, err := NewEncryptSchedule(key)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("encrypt schedule, %d bytes: have err=%v", n, err)
		}
		_, err = NewDecryptSchedule(key)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("decrypt schedule, %d bytes: have err=%v", n, err)
		}
		var kse KeySizeError
		if !errors.As(err, &kse) || int(kse) != n {
			t.Errorf("want KeySizeError(%d), have %v", n, err)
		}
	}
	// A missing key is an invalid argument as well
	if _, err := NewEncryptSchedule(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil key: have err=%v", err)
	}
}

// Our implementation must produce exactly the same results as Go's
// crypto/aes for all key sizes.
func TestCompareStdlib(t *testing.T) {
	for _, keyLen := range []int{16, 24, 32} {
		for i := 0; i < 200; i++ {
			key := randBytes(keyLen)
			in := randBytes(BlockSize)
			ref, err := aes.NewCipher(key)
			if err != nil {
				t.Fatal(err)
			}
			enc, _ := NewEncryptSchedule(key)
			dec, _ := NewDecryptSchedule(key)

			want := make([]byte, BlockSize)
			have := make([]byte, BlockSize)
			ref.Encrypt(want, in)
			enc.EncryptBlock(have, in)
			if !bytes.Equal(want, have) {
				t.Fatalf("encrypt, key=%x in=%x: want=%x have=%x", key, in, want, have)
			}
			ref.Decrypt(want, in)
			dec.DecryptBlock(have, in)
			if !bytes.Equal(want, have) {
				t.Fatalf("decrypt, key=%x in=%x: want=%x have=%x", key, in, want, have)
			}
			// Round trip
			enc.EncryptBlock(have, in)
			dec.DecryptBlock(have, have)
			if !bytes.Equal(in, have) {
				t.Fatalf("round trip failed, key=%x", key)
			}
		}
	}
}

// NIST SP 800-38A F.2.5 CBC-AES256.Encrypt
func TestCBCVector(t *testing.T) {
	key := unhex("603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")
	pt := unhex("6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e51" +
		"30c81c46a35ce411e5fbc1191a0a52eff69f2445df4f9b17ad2b417be66c3710")
	want := unhex("f58c4c04d6e5f1ba779eabfb5f7bfbd69cfc4e967edb808d679f777bc6702c7d" +
		"39f23369a9d9bacfa530e26304231461b2eb05e2c39be9fcda6c19078c6a9d1b")
	var iv [BlockSize]byte
	copy(iv[:], unhex("000102030405060708090a0b0c0d0e0f"))
	ivStart := iv

	enc, _ := NewEncryptSchedule(key)
	have := make([]byte, len(pt))
	enc.CBCEncrypt(have, pt, &iv)
	if !bytes.Equal(want, have) {
		t.Fatalf("want=%x\nhave=%x", want, have)
	}
	if !bytes.Equal(iv[:], want[len(want)-BlockSize:]) {
		t.Errorf("iv after encryption is not the last ciphertext block: %x", iv)
	}

	dec, _ := NewDecryptSchedule(key)
	iv = ivStart
	dec.CBCDecrypt(have, have, &iv)
	if !bytes.Equal(pt, have) {
		t.Errorf("in-place decryption failed: %x", have)
	}
	if !bytes.Equal(iv[:], want[len(want)-BlockSize:]) {
		t.Errorf("iv after decryption is not the last input block: %x", iv)
	}
}

// CBC must match crypto/cipher's CBC for every key size and for a range of
// buffer lengths, including chaining across several calls.
func TestCBCCompareStdlib(t *testing.T) {
	for _, keyLen := range []int{16, 24, 32} {
		key := randBytes(keyLen)
		ref, _ := aes.NewCipher(key)
		enc, _ := NewEncryptSchedule(key)
		dec, _ := NewDecryptSchedule(key)
		for blocks := 1; blocks < 40; blocks++ {
			in := randBytes(blocks * BlockSize)
			var iv [BlockSize]byte
			copy(iv[:], randBytes(BlockSize))

			want := make([]byte, len(in))
			cipher.NewCBCEncrypter(ref, iv[:]).CryptBlocks(want, in)

			// Encrypt in two calls to check that the iv carries the chain
			have := make([]byte, len(in))
			encIV := iv
			half := (blocks / 2) * BlockSize
			enc.CBCEncrypt(have[:half], in[:half], &encIV)
			enc.CBCEncrypt(have[half:], in[half:], &encIV)
			if !bytes.Equal(want, have) {
				t.Fatalf("keyLen=%d blocks=%d: ciphertext differs", keyLen, blocks)
			}

			decIV := iv
			dec.CBCDecrypt(have, want, &decIV)
			if !bytes.Equal(in, have) {
				t.Fatalf("keyLen=%d blocks=%d: plaintext differs", keyLen, blocks)
			}
			if encIV != decIV {
				t.Fatalf("keyLen=%d blocks=%d: chain state differs", keyLen, blocks)
			}
		}
	}
}

// A nil destination runs the cipher as a CBC-MAC: the iv advances as usual
// and nothing else changes.
func TestCBCMACMode(t *testing.T) {
	enc, _ := NewEncryptSchedule(randBytes(32))
	in := randBytes(7 * BlockSize)
	inCopy := append([]byte{}, in...)
	var iv1, iv2 [BlockSize]byte
	copy(iv1[:], randBytes(BlockSize))
	iv2 = iv1

	out := make([]byte, len(in))
	enc.CBCEncrypt(out, in, &iv1)
	enc.CBCEncrypt(nil, in, &iv2)
	if iv1 != iv2 {
		t.Errorf("want=%x have=%x", iv1, iv2)
	}
	if !bytes.Equal(in, inCopy) {
		t.Error("MAC mode modified its input")
	}
}

func TestCBCEmpty(t *testing.T) {
	enc, _ := NewEncryptSchedule(randBytes(16))
	var iv [BlockSize]byte
	copy(iv[:], randBytes(BlockSize))
	ivStart := iv
	enc.CBCEncrypt(nil, nil, &iv)
	if iv != ivStart {
		t.Error("empty input changed the iv")
	}
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

func TestPanics(t *testing.T) {
	key := randBytes(32)
	enc, _ := NewEncryptSchedule(key)
	dec, _ := NewDecryptSchedule(key)
	buf := make([]byte, 2*BlockSize)
	var iv [BlockSize]byte

	t.Run("wrongDirectionBlock", func(t *testing.T) {
		expectPanic(t, func() { dec.EncryptBlock(buf, buf) })
		expectPanic(t, func() { enc.DecryptBlock(buf, buf) })
	})
	t.Run("wrongDirectionCBC", func(t *testing.T) {
		expectPanic(t, func() { dec.CBCEncrypt(buf, buf, &iv) })
		expectPanic(t, func() { enc.CBCDecrypt(buf, buf, &iv) })
	})
	t.Run("shortBlock", func(t *testing.T) {
		expectPanic(t, func() { enc.EncryptBlock(buf, buf[:15]) })
		expectPanic(t, func() { enc.EncryptBlock(buf[:15], buf) })
	})
	t.Run("partialBlock", func(t *testing.T) {
		expectPanic(t, func() { enc.CBCEncrypt(buf, buf[:17], &iv) })
	})
	t.Run("shortOutput", func(t *testing.T) {
		expectPanic(t, func() { enc.CBCEncrypt(buf[:16], buf, &iv) })
	})
	t.Run("nilDecryptOutput", func(t *testing.T) {
		expectPanic(t, func() { dec.CBCDecrypt(nil, buf, &iv) })
	})
	t.Run("wiped", func(t *testing.T) {
		s, _ := NewEncryptSchedule(key)
		s.Wipe()
		for _, w := range s.RoundKeyWords() {
			if w != 0 {
				t.Fatal("round keys not wiped")
			}
		}
		expectPanic(t, func() { s.EncryptBlock(buf, buf) })
	})
}

// The cipher.Block adapter must be usable by third-party modes and give the
// same results as crypto/aes. EME is a wide-block mode that calls Encrypt
// and Decrypt many times per message.
func TestCipherBlockEME(t *testing.T) {
	for _, keyLen := range []int{16, 24, 32} {
		key := randBytes(keyLen)
		ref, _ := aes.NewCipher(key)
		our, err := NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}
		if our.BlockSize() != ref.BlockSize() {
			t.Fatal("different BlockSize")
		}
		tweak := randBytes(BlockSize)
		in := randBytes(32 * BlockSize)
		want := eme.Transform(ref, tweak, in, eme.DirectionEncrypt)
		have := eme.Transform(our, tweak, in, eme.DirectionEncrypt)
		if !bytes.Equal(want, have) {
			t.Fatalf("keyLen=%d: EME encryption differs", keyLen)
		}
		back := eme.Transform(our, tweak, have, eme.DirectionDecrypt)
		if !bytes.Equal(in, back) {
			t.Fatalf("keyLen=%d: EME round trip failed", keyLen)
		}
	}
	if _, err := NewCipher(make([]byte, 10)); err == nil {
		t.Error("NewCipher accepted a 10-byte key")
	}
}

func BenchmarkEncryptBlock(b *testing.B) {
	enc, _ := NewEncryptSchedule(randBytes(32))
	buf := make([]byte, BlockSize)
	b.SetBytes(BlockSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc.EncryptBlock(buf, buf)
	}
}

func BenchmarkCBCEncrypt(b *testing.B) {
	enc, _ := NewEncryptSchedule(randBytes(32))
	in := make([]byte, 4096)
	var iv [BlockSize]byte
	b.SetBytes(int64(len(in)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc.CBCEncrypt(in, in, &iv)
	}
}
