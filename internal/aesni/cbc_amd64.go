//go:build amd64 && gc && !purego
// +build amd64,gc,!purego

package aesni

const haveAsm = true

// defined in cbc_amd64.s

//go:noescape
func encryptCBCAsm(xk *byte, dst *byte, src *byte, n int, iv *byte, discard bool)

//go:noescape
func decryptCBCAsm(xk *byte, dst *byte, src *byte, n int, iv *byte)

//go:noescape
func invMixColumnsAsm(dst *byte, src *byte)
