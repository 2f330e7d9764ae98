// Package speed implements the "-speed" command-line option,
// similar to "openssl speed".
// It benchmarks the symauth backends next to the AEADs of the Go
// ecosystem.
package speed

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"log"
	"runtime"
	"testing"

	"github.com/jacobsa/crypto/siv"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/sync/errgroup"

	"github.com/remotefs/symauth/internal/aesni"
	"github.com/remotefs/symauth/internal/symauth"
)

// Typical size of one forwarded terminal or channel packet
const blockSize = 4096

// Associated data for the reference AEADs. symauth has none.
const adLen = 24

// Run - run the speed the test and print the results.
func Run() {
	cpu := cpuModelName()
	if cpu == "" {
		cpu = "unknown"
	}
	accel := "without"
	if aesni.HasHardwareSupport() {
		accel = "with"
	}
	fmt.Printf("cpu: %s; %s AES-NI acceleration\n", cpu, accel)

	auto := symauth.BackendSoftware
	if aesni.HasHardwareSupport() {
		auto = symauth.BackendHardware
	}
	bTable := []struct {
		name      string
		f         func(*testing.B)
		preferred bool
	}{
		{name: "symauth-AES-NI", f: bSymauthHardware, preferred: auto == symauth.BackendHardware},
		{name: "symauth-Go", f: bSymauthSoftware, preferred: auto == symauth.BackendSoftware},
		{name: "symauth-parallel", f: bSymauthParallel, preferred: false},
		{name: "AES-CBC-256-Go", f: bGoCBC, preferred: false},
		{name: "AES-GCM-256-Go", f: bGoGCM, preferred: false},
		{name: "AES-SIV-512-Go", f: bAESSIV, preferred: false},
		{name: "XChaCha20-Poly1305-Go", f: bXchacha20poly1305, preferred: false},
	}
	for _, b := range bTable {
		fmt.Printf("%-22s\t", b.name)
		mbs := mbPerSec(testing.Benchmark(b.f))
		if mbs > 0 {
			fmt.Printf("%8.2f MB/s", mbs)
		} else {
			fmt.Printf("     N/A")
		}
		if b.preferred {
			fmt.Printf("\t(selected in auto mode)\n")
		} else {
			fmt.Printf("\t\n")
		}
	}
}

func mbPerSec(r testing.BenchmarkResult) float64 {
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

// Get "n" random bytes from /dev/urandom or panic
func randBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		log.Panic("Failed to read random bytes: " + err.Error())
	}
	return b
}

func bSymauth(b *testing.B, backend symauth.BackendTypeEnum) {
	s := symauth.NewWithBackend(true, randBytes(symauth.KeyLen), randBytes(symauth.KeyLen), backend)
	defer s.Free()
	in := make([]byte, blockSize)
	out := make([]byte, blockSize)
	var iv [symauth.BlockSize]byte
	b.SetBytes(int64(len(in)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Encrypt(out, in, &iv)
	}
}

// bSymauthHardware benchmarks symauth on AES-NI
func bSymauthHardware(b *testing.B) {
	if !aesni.HasHardwareSupport() {
		b.Skip("CPU has no AES-NI")
	}
	bSymauth(b, symauth.BackendHardware)
}

// bSymauthSoftware benchmarks symauth on the table-driven AES
func bSymauthSoftware(b *testing.B) {
	bSymauth(b, symauth.BackendSoftware)
}

// bSymauthParallel runs one IV chain per CPU through a shared Session
func bSymauthParallel(b *testing.B) {
	s := symauth.New(true, randBytes(symauth.KeyLen), randBytes(symauth.KeyLen))
	defer s.Free()
	workers := runtime.NumCPU()
	b.SetBytes(blockSize)

	b.ResetTimer()
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		n := b.N / workers
		if w < b.N%workers {
			n++
		}
		g.Go(func() error {
			buf := make([]byte, blockSize)
			var iv [symauth.BlockSize]byte
			for i := 0; i < n; i++ {
				s.Encrypt(buf, buf, &iv)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.Fatal(err)
	}
}

// bGoCBC benchmarks Go stdlib AES-256-CBC without authentication
func bGoCBC(b *testing.B) {
	key := randBytes(32)
	iv := randBytes(aes.BlockSize)
	in := make([]byte, blockSize)
	b.SetBytes(int64(len(in)))

	gAES, err := aes.NewCipher(key)
	if err != nil {
		b.Fatal(err)
	}
	enc := cipher.NewCBCEncrypter(gAES, iv)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc.CryptBlocks(in, in)
	}
}

// bGoGCM benchmarks Go stdlib GCM
func bGoGCM(b *testing.B) {
	key := randBytes(32)
	authData := randBytes(adLen)
	iv := randBytes(16)
	in := make([]byte, blockSize)
	b.SetBytes(int64(len(in)))

	gAES, err := aes.NewCipher(key)
	if err != nil {
		b.Fatal(err)
	}
	gGCM, err := cipher.NewGCMWithNonceSize(gAES, 16)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Encrypt and append to nonce
		gGCM.Seal(iv, iv, in, authData)
	}
}

// bAESSIV benchmarks AES-SIV from github.com/jacobsa/crypto/siv
func bAESSIV(b *testing.B) {
	key := randBytes(64)
	authData := randBytes(adLen)
	iv := randBytes(16)
	in := make([]byte, blockSize)
	b.SetBytes(int64(len(in)))
	// RFC 5297 section 3: the nonce goes last in the associated data
	associated := [][]byte{authData, iv}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Encrypt and append to nonce
		_, err := siv.Encrypt(iv, key, in, associated)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// bXchacha20poly1305 benchmarks XChaCha20 from golang.org/x/crypto/chacha20poly1305
func bXchacha20poly1305(b *testing.B) {
	key := randBytes(32)
	authData := randBytes(adLen)
	iv := randBytes(chacha20poly1305.NonceSizeX)
	in := make([]byte, blockSize)
	b.SetBytes(int64(len(in)))
	c, _ := chacha20poly1305.NewX(key)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Encrypt and append to nonce
		c.Seal(iv, iv, in, authData)
	}
}
