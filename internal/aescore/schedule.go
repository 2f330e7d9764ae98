package aescore

import (
	"encoding/binary"
	"log"
)

// maxRounds is the round count for 256-bit keys.
const maxRounds = 14

// Schedule is an expanded AES key. A Schedule is built for one direction,
// encryption or decryption, and is read-only afterwards, so it can be shared
// between goroutines.
type Schedule struct {
	rk      [4 * (maxRounds + 1)]uint32
	rounds  int
	decrypt bool
}

// NewEncryptSchedule expands "key" (16, 24 or 32 bytes) for encryption.
func NewEncryptSchedule(key []byte) (*Schedule, error) {
	s := &Schedule{}
	if err := s.expand(key); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDecryptSchedule expands "key" (16, 24 or 32 bytes) for decryption.
//
// This is the encryption schedule with the round keys in reverse order and
// all but the first and last round key run through InvMixColumns, which is
// what the Td tables expect.
func NewDecryptSchedule(key []byte) (*Schedule, error) {
	s := &Schedule{}
	if err := s.expand(key); err != nil {
		return nil, err
	}
	rk := s.rk[:]
	for i, j := 0, 4*s.rounds; i < j; i, j = i+4, j-4 {
		for n := 0; n < 4; n++ {
			rk[i+n], rk[j+n] = rk[j+n], rk[i+n]
		}
	}
	for i := 4; i < 4*s.rounds; i++ {
		rk[i] = invMixColumn(rk[i])
	}
	s.decrypt = true
	return s, nil
}

// invMixColumn applies InvMixColumns to one column. te1 carries the plain
// S-box value in its low byte, and td0..td3 apply InvSubBytes before the
// inverse mix, so sbox followed by td cancels out the substitution.
func invMixColumn(w uint32) uint32 {
	return td0[te1[w>>24]&0xff] ^
		td1[te1[w>>16&0xff]&0xff] ^
		td2[te1[w>>8&0xff]&0xff] ^
		td3[te1[w&0xff]&0xff]
}

// subRot is RotWord followed by SubWord, built from the masked Te tables.
func subRot(w uint32) uint32 {
	return te2[w>>16&0xff]&0xff000000 ^
		te3[w>>8&0xff]&0x00ff0000 ^
		te0[w&0xff]&0x0000ff00 ^
		te1[w>>24]&0x000000ff
}

// sub is SubWord without rotation.
func sub(w uint32) uint32 {
	return te2[w>>24]&0xff000000 ^
		te3[w>>16&0xff]&0x00ff0000 ^
		te0[w>>8&0xff]&0x0000ff00 ^
		te1[w&0xff]&0x000000ff
}

// expand runs the Rijndael key expansion into s.rk.
func (s *Schedule) expand(key []byte) error {
	s.rounds = Rounds(len(key))
	if s.rounds == 0 {
		return KeySizeError(len(key))
	}
	nk := len(key) / 4
	rk := s.rk[:]
	for i := 0; i < nk; i++ {
		rk[i] = binary.BigEndian.Uint32(key[4*i:])
	}
	switch nk {
	case 4:
		for i := 0; i < 10; i++ {
			rk[4] = rk[0] ^ subRot(rk[3]) ^ rcon[i]
			rk[5] = rk[1] ^ rk[4]
			rk[6] = rk[2] ^ rk[5]
			rk[7] = rk[3] ^ rk[6]
			rk = rk[4:]
		}
	case 6:
		// 8 iterations of 6 words give 52 words, the last iteration
		// stops after the 4 words that complete round key 12.
		for i := 0; ; i++ {
			rk[6] = rk[0] ^ subRot(rk[5]) ^ rcon[i]
			rk[7] = rk[1] ^ rk[6]
			rk[8] = rk[2] ^ rk[7]
			rk[9] = rk[3] ^ rk[8]
			if i == 7 {
				break
			}
			rk[10] = rk[4] ^ rk[9]
			rk[11] = rk[5] ^ rk[10]
			rk = rk[6:]
		}
	case 8:
		for i := 0; ; i++ {
			rk[8] = rk[0] ^ subRot(rk[7]) ^ rcon[i]
			rk[9] = rk[1] ^ rk[8]
			rk[10] = rk[2] ^ rk[9]
			rk[11] = rk[3] ^ rk[10]
			if i == 6 {
				break
			}
			rk[12] = rk[4] ^ sub(rk[11])
			rk[13] = rk[5] ^ rk[12]
			rk[14] = rk[6] ^ rk[13]
			rk[15] = rk[7] ^ rk[14]
			rk = rk[8:]
		}
	default:
		log.Panicf("BUG: unhandled key word count %d", nk)
	}
	return nil
}

// Rounds returns the number of cipher rounds, 10, 12 or 14.
func (s *Schedule) Rounds() int {
	return s.rounds
}

// Decrypting tells if this is a decryption schedule.
func (s *Schedule) Decrypting() bool {
	return s.decrypt
}

// RoundKeyWords returns a copy of the 4*(Rounds()+1) round key words.
func (s *Schedule) RoundKeyWords() []uint32 {
	return append([]uint32{}, s.rk[:4*(s.rounds+1)]...)
}

// Wipe overwrites the round keys with zeros. The Schedule must not be used
// afterwards.
func (s *Schedule) Wipe() {
	for i := range s.rk {
		s.rk[i] = 0
	}
	s.rounds = 0
}
