package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/remotefs/symauth/internal/aescore"
	"github.com/remotefs/symauth/internal/aesni"
	"github.com/remotefs/symauth/internal/exitcodes"
	"github.com/remotefs/symauth/internal/symauth"
	"github.com/remotefs/symauth/internal/tlog"
)

// FIPS-197 Appendix C
var selftestBlockVectors = []struct {
	key string
	out string
}{
	{"000102030405060708090a0b0c0d0e0f", "69c4e0d86a7b0430d8cdb78070b4c55a"},
	{"000102030405060708090a0b0c0d0e0f1011121314151617", "dda97ca4864cdfe06eaf70a0ec0d7191"},
	{"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", "8ea2b7ca516745bfeafc49904b496089"},
}

const (
	selftestBlockIn = "00112233445566778899aabbccddeeff"
	// Server side of a session with secretA=00..1f, secretB=20..3f,
	// iv=f0..ff
	selftestSessionPt = "73796d61757468206b6e6f776e20616e73776572207465737420766563746f72" +
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	selftestSessionCt = "1fad50a976dda5cd8d21ad1cb52b904309b2ddf254d1c3def7ea73373c4e0737" +
		"437b08561034c27e90b8549f9fdd037eb3f0f9ba4f6dd54b07f1c2e3d7e10c2b"
	selftestSessionTag = "2b7a4f66a547a39d1430c670aa5d91b5"
)

func selftestErr(format string, v ...interface{}) error {
	return exitcodes.NewErr("selftest: "+fmt.Sprintf(format, v...), exitcodes.SelfTest)
}

func mustUnhex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func seq(start, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(start + i)
	}
	return b
}

// selftestBackends returns the backends to check. "requested" must be
// usable on this machine.
func selftestBackends(requested symauth.BackendTypeEnum) ([]symauth.BackendTypeEnum, error) {
	hw := aesni.HasHardwareSupport()
	switch requested {
	case symauth.BackendSoftware:
		return []symauth.BackendTypeEnum{symauth.BackendSoftware}, nil
	case symauth.BackendHardware:
		if !hw {
			return nil, exitcodes.NewErr("AES-NI backend requested, but the CPU does not support it", exitcodes.NoHardware)
		}
		return []symauth.BackendTypeEnum{symauth.BackendHardware}, nil
	}
	if hw {
		return []symauth.BackendTypeEnum{symauth.BackendSoftware, symauth.BackendHardware}, nil
	}
	return []symauth.BackendTypeEnum{symauth.BackendSoftware}, nil
}

// selftest checks the block cipher against FIPS-197, the session layer
// against a known answer, and that server and client interoperate across
// backends. This is called when you pass the "-selftest" option.
func selftest(requested symauth.BackendTypeEnum) error {
	backends, err := selftestBackends(requested)
	if err != nil {
		return err
	}
	if err := selftestBlock(); err != nil {
		return err
	}
	tlog.Info.Printf("block cipher: %sok%s", tlog.ColorGreen, tlog.ColorReset)
	for _, b := range backends {
		if err := selftestSession(b); err != nil {
			return err
		}
		tlog.Info.Printf("session %v: %sok%s", b, tlog.ColorGreen, tlog.ColorReset)
	}
	// Every backend pair, both directions
	for _, bs := range backends {
		for _, bc := range backends {
			if err := selftestInterop(bs, bc); err != nil {
				return err
			}
			tlog.Info.Printf("server %v <-> client %v: %sok%s", bs, bc, tlog.ColorGreen, tlog.ColorReset)
		}
	}
	return nil
}

func selftestBlock() error {
	in := mustUnhex(selftestBlockIn)
	out := make([]byte, aescore.BlockSize)
	for _, v := range selftestBlockVectors {
		key := mustUnhex(v.key)
		enc, err := aescore.NewEncryptSchedule(key)
		if err != nil {
			return selftestErr("%v", err)
		}
		dec, err := aescore.NewDecryptSchedule(key)
		if err != nil {
			return selftestErr("%v", err)
		}
		enc.EncryptBlock(out, in)
		if hex.EncodeToString(out) != v.out {
			return selftestErr("AES-%d encryption: want=%s have=%x", len(key)*8, v.out, out)
		}
		dec.DecryptBlock(out, out)
		if !bytes.Equal(out, in) {
			return selftestErr("AES-%d decryption: have=%x", len(key)*8, out)
		}
	}
	return nil
}

func selftestSession(backend symauth.BackendTypeEnum) error {
	s := symauth.NewWithBackend(true, seq(0, symauth.KeyLen), seq(32, symauth.KeyLen), backend)
	defer s.Free()
	pt := mustUnhex(selftestSessionPt)
	var iv [symauth.BlockSize]byte
	copy(iv[:], seq(0xf0, symauth.BlockSize))
	ct := make([]byte, len(pt))
	tag := s.Encrypt(ct, pt, &iv)
	tlog.Debug.Printf("%s", symauth.HexDump(0, "ciphertext", ct))
	tlog.Debug.Printf("%s", symauth.HexDump(symauth.TagLen, "tag", tag[:]))
	if hex.EncodeToString(ct) != selftestSessionCt {
		return selftestErr("%v: wrong ciphertext", backend)
	}
	if hex.EncodeToString(tag[:]) != selftestSessionTag {
		return selftestErr("%v: wrong tag %x", backend, tag)
	}
	return nil
}

func selftestInterop(bs, bc symauth.BackendTypeEnum) error {
	secretA := make([]byte, symauth.KeyLen)
	secretB := make([]byte, symauth.KeyLen)
	var iv [symauth.BlockSize]byte
	for _, b := range [][]byte{secretA, secretB, iv[:]} {
		if _, err := rand.Read(b); err != nil {
			return selftestErr("%v", err)
		}
	}
	server := symauth.NewWithBackend(true, secretA, secretB, bs)
	client := symauth.NewWithBackend(false, secretA, secretB, bc)
	defer server.Free()
	defer client.Free()
	for _, dir := range []struct {
		name     string
		from, to *symauth.Session
	}{
		{"server->client", server, client},
		{"client->server", client, server},
	} {
		sendIV, recvIV := iv, iv
		for n := 1; n <= 8; n++ {
			pt := seq(n, n*symauth.BlockSize)
			ct := make([]byte, len(pt))
			tag := dir.from.Encrypt(ct, pt, &sendIV)
			out := make([]byte, len(ct))
			start := recvIV
			if !dir.to.Decrypt(out, ct, &tag, &recvIV) || !bytes.Equal(out, pt) {
				return selftestErr("%v/%v %s: message %d rejected", bs, bc, dir.name, n)
			}
			// A flipped tag bit must be rejected
			tag[n%symauth.TagLen] ^= 1
			if dir.to.Decrypt(out, ct, &tag, &start) {
				return selftestErr("%v/%v %s: modified tag accepted", bs, bc, dir.name)
			}
		}
	}
	return nil
}
