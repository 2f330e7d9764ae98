package aescore

import (
	"encoding/binary"
	"log"
)

func (s *Schedule) check(dst, src []byte, decrypt bool) {
	if s.rounds == 0 {
		log.Panic("BUG: tried to use a wiped key schedule")
	}
	if s.decrypt != decrypt {
		if decrypt {
			log.Panic("BUG: decryption with an encryption key schedule")
		}
		log.Panic("BUG: encryption with a decryption key schedule")
	}
	if len(src) < BlockSize {
		log.Panic("aescore: input not full block")
	}
	if len(dst) < BlockSize {
		log.Panic("aescore: output not full block")
	}
}

// EncryptBlock encrypts the first 16 bytes of src into dst. dst and src may
// be the same slice.
func (s *Schedule) EncryptBlock(dst, src []byte) {
	s.check(dst, src, false)
	encryptBlock(s, dst, src)
}

// DecryptBlock decrypts the first 16 bytes of src into dst. dst and src may
// be the same slice.
func (s *Schedule) DecryptBlock(dst, src []byte) {
	s.check(dst, src, true)
	decryptBlock(s, dst, src)
}

func encryptBlock(s *Schedule, dst, src []byte) {
	rk := s.rk[:]
	s0 := binary.BigEndian.Uint32(src[0:4]) ^ rk[0]
	s1 := binary.BigEndian.Uint32(src[4:8]) ^ rk[1]
	s2 := binary.BigEndian.Uint32(src[8:12]) ^ rk[2]
	s3 := binary.BigEndian.Uint32(src[12:16]) ^ rk[3]

	// Two rounds per iteration, the second half of the last iteration is
	// replaced by the final round below.
	var t0, t1, t2, t3 uint32
	for r := s.rounds >> 1; ; {
		t0 = te0[s0>>24] ^ te1[s1>>16&0xff] ^ te2[s2>>8&0xff] ^ te3[s3&0xff] ^ rk[4]
		t1 = te0[s1>>24] ^ te1[s2>>16&0xff] ^ te2[s3>>8&0xff] ^ te3[s0&0xff] ^ rk[5]
		t2 = te0[s2>>24] ^ te1[s3>>16&0xff] ^ te2[s0>>8&0xff] ^ te3[s1&0xff] ^ rk[6]
		t3 = te0[s3>>24] ^ te1[s0>>16&0xff] ^ te2[s1>>8&0xff] ^ te3[s2&0xff] ^ rk[7]
		rk = rk[8:]
		r--
		if r == 0 {
			break
		}
		s0 = te0[t0>>24] ^ te1[t1>>16&0xff] ^ te2[t2>>8&0xff] ^ te3[t3&0xff] ^ rk[0]
		s1 = te0[t1>>24] ^ te1[t2>>16&0xff] ^ te2[t3>>8&0xff] ^ te3[t0&0xff] ^ rk[1]
		s2 = te0[t2>>24] ^ te1[t3>>16&0xff] ^ te2[t0>>8&0xff] ^ te3[t1&0xff] ^ rk[2]
		s3 = te0[t3>>24] ^ te1[t0>>16&0xff] ^ te2[t1>>8&0xff] ^ te3[t2&0xff] ^ rk[3]
	}

	// Final round: SubBytes and ShiftRows only, no MixColumns.
	s0 = te2[t0>>24]&0xff000000 ^ te3[t1>>16&0xff]&0x00ff0000 ^ te0[t2>>8&0xff]&0x0000ff00 ^ te1[t3&0xff]&0x000000ff ^ rk[0]
	s1 = te2[t1>>24]&0xff000000 ^ te3[t2>>16&0xff]&0x00ff0000 ^ te0[t3>>8&0xff]&0x0000ff00 ^ te1[t0&0xff]&0x000000ff ^ rk[1]
	s2 = te2[t2>>24]&0xff000000 ^ te3[t3>>16&0xff]&0x00ff0000 ^ te0[t0>>8&0xff]&0x0000ff00 ^ te1[t1&0xff]&0x000000ff ^ rk[2]
	s3 = te2[t3>>24]&0xff000000 ^ te3[t0>>16&0xff]&0x00ff0000 ^ te0[t1>>8&0xff]&0x0000ff00 ^ te1[t2&0xff]&0x000000ff ^ rk[3]

	binary.BigEndian.PutUint32(dst[0:4], s0)
	binary.BigEndian.PutUint32(dst[4:8], s1)
	binary.BigEndian.PutUint32(dst[8:12], s2)
	binary.BigEndian.PutUint32(dst[12:16], s3)
}

func decryptBlock(s *Schedule, dst, src []byte) {
	rk := s.rk[:]
	s0 := binary.BigEndian.Uint32(src[0:4]) ^ rk[0]
	s1 := binary.BigEndian.Uint32(src[4:8]) ^ rk[1]
	s2 := binary.BigEndian.Uint32(src[8:12]) ^ rk[2]
	s3 := binary.BigEndian.Uint32(src[12:16]) ^ rk[3]

	var t0, t1, t2, t3 uint32
	for r := s.rounds >> 1; ; {
		t0 = td0[s0>>24] ^ td1[s3>>16&0xff] ^ td2[s2>>8&0xff] ^ td3[s1&0xff] ^ rk[4]
		t1 = td0[s1>>24] ^ td1[s0>>16&0xff] ^ td2[s3>>8&0xff] ^ td3[s2&0xff] ^ rk[5]
		t2 = td0[s2>>24] ^ td1[s1>>16&0xff] ^ td2[s0>>8&0xff] ^ td3[s3&0xff] ^ rk[6]
		t3 = td0[s3>>24] ^ td1[s2>>16&0xff] ^ td2[s1>>8&0xff] ^ td3[s0&0xff] ^ rk[7]
		rk = rk[8:]
		r--
		if r == 0 {
			break
		}
		s0 = td0[t0>>24] ^ td1[t3>>16&0xff] ^ td2[t2>>8&0xff] ^ td3[t1&0xff] ^ rk[0]
		s1 = td0[t1>>24] ^ td1[t0>>16&0xff] ^ td2[t3>>8&0xff] ^ td3[t2&0xff] ^ rk[1]
		s2 = td0[t2>>24] ^ td1[t1>>16&0xff] ^ td2[t0>>8&0xff] ^ td3[t3&0xff] ^ rk[2]
		s3 = td0[t3>>24] ^ td1[t2>>16&0xff] ^ td2[t1>>8&0xff] ^ td3[t0&0xff] ^ rk[3]
	}

	s0 = uint32(td4[t0>>24])<<24 ^ uint32(td4[t3>>16&0xff])<<16 ^ uint32(td4[t2>>8&0xff])<<8 ^ uint32(td4[t1&0xff]) ^ rk[0]
	s1 = uint32(td4[t1>>24])<<24 ^ uint32(td4[t0>>16&0xff])<<16 ^ uint32(td4[t3>>8&0xff])<<8 ^ uint32(td4[t2&0xff]) ^ rk[1]
	s2 = uint32(td4[t2>>24])<<24 ^ uint32(td4[t1>>16&0xff])<<16 ^ uint32(td4[t0>>8&0xff])<<8 ^ uint32(td4[t3&0xff]) ^ rk[2]
	s3 = uint32(td4[t3>>24])<<24 ^ uint32(td4[t2>>16&0xff])<<16 ^ uint32(td4[t1>>8&0xff])<<8 ^ uint32(td4[t0&0xff]) ^ rk[3]

	binary.BigEndian.PutUint32(dst[0:4], s0)
	binary.BigEndian.PutUint32(dst[4:8], s1)
	binary.BigEndian.PutUint32(dst[8:12], s2)
	binary.BigEndian.PutUint32(dst[12:16], s3)
}
