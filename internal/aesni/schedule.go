package aesni

import (
	"github.com/remotefs/symauth/internal/aescore"
)

// scheduleBlocks is 15 forward round keys plus 13 InvMixColumns round keys
// for decryption.
const scheduleBlocks = Rounds + 1 + Rounds - 1

// Schedule is an AES-256 key schedule in the layout the AES instructions
// want: round keys as raw 16-byte blocks.
//
//	rk[0..14]   forward round keys k0..k14
//	rk[15..27]  InvMixColumns(k13) .. InvMixColumns(k1)
//
// The same Schedule is used for encryption and decryption. It is read-only
// after NewSchedule returns.
type Schedule struct {
	rk [scheduleBlocks][BlockSize]byte
}

// NewSchedule expands a 32-byte key.
func NewSchedule(key []byte) (*Schedule, error) {
	if len(key) != KeyLen {
		return nil, aescore.KeySizeError(len(key))
	}
	s := &Schedule{}
	copy(s.rk[0][:], key[:16])
	copy(s.rk[1][:], key[16:])
	var rc byte = 0x01
	for i := 2; i <= Rounds; i++ {
		prev := &s.rk[i-1]
		// Last word of the previous block
		t := [4]byte{prev[12], prev[13], prev[14], prev[15]}
		if i%2 == 0 {
			t = [4]byte{sbox[t[1]] ^ rc, sbox[t[2]], sbox[t[3]], sbox[t[0]]}
			rc = xtime(rc)
		} else {
			t = [4]byte{sbox[t[0]], sbox[t[1]], sbox[t[2]], sbox[t[3]]}
		}
		src := &s.rk[i-2]
		dst := &s.rk[i]
		for w := 0; w < 16; w += 4 {
			for b := 0; b < 4; b++ {
				t[b] ^= src[w+b]
				dst[w+b] = t[b]
			}
		}
	}
	for i := 1; i < Rounds; i++ {
		invMixColumns(&s.rk[Rounds+i], &s.rk[Rounds-i])
	}
	return s, nil
}

// RoundKey returns a copy of schedule block i (0..27).
func (s *Schedule) RoundKey(i int) [BlockSize]byte {
	return s.rk[i]
}

// Wipe overwrites the round keys with zeros.
func (s *Schedule) Wipe() {
	for i := range s.rk {
		for j := range s.rk[i] {
			s.rk[i][j] = 0
		}
	}
}

func invMixColumns(dst, src *[BlockSize]byte) {
	if HasHardwareSupport() {
		invMixColumnsAsm(&dst[0], &src[0])
		return
	}
	invMixColumnsGeneric(dst, src)
}

// xtime multiplies by x in GF(2^8).
func xtime(b byte) byte {
	if b&0x80 != 0 {
		return b<<1 ^ 0x1b
	}
	return b << 1
}

func gmul(a, b byte) (p byte) {
	for b != 0 {
		if b&1 != 0 {
			p ^= a
		}
		a = xtime(a)
		b >>= 1
	}
	return p
}

// invMixColumnsGeneric is what AESIMC computes, for CPUs without it.
func invMixColumnsGeneric(dst, src *[BlockSize]byte) {
	var out [BlockSize]byte
	for c := 0; c < 16; c += 4 {
		a0, a1, a2, a3 := src[c], src[c+1], src[c+2], src[c+3]
		out[c] = gmul(a0, 14) ^ gmul(a1, 11) ^ gmul(a2, 13) ^ gmul(a3, 9)
		out[c+1] = gmul(a0, 9) ^ gmul(a1, 14) ^ gmul(a2, 11) ^ gmul(a3, 13)
		out[c+2] = gmul(a0, 13) ^ gmul(a1, 9) ^ gmul(a2, 14) ^ gmul(a3, 11)
		out[c+3] = gmul(a0, 11) ^ gmul(a1, 13) ^ gmul(a2, 9) ^ gmul(a3, 14)
	}
	*dst = out
}
