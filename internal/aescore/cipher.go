package aescore

import (
	"crypto/cipher"
)

type aesCipher struct {
	enc *Schedule
	dec *Schedule
}

// Verify that we satisfy the cipher.Block interface
var _ cipher.Block = &aesCipher{}

// NewCipher returns a cipher.Block backed by the table implementation, so
// the core can be plugged into modes written against crypto/cipher.
func NewCipher(key []byte) (cipher.Block, error) {
	enc, err := NewEncryptSchedule(key)
	if err != nil {
		return nil, err
	}
	dec, err := NewDecryptSchedule(key)
	if err != nil {
		return nil, err
	}
	return &aesCipher{enc: enc, dec: dec}, nil
}

func (c *aesCipher) BlockSize() int { return BlockSize }

func (c *aesCipher) Encrypt(dst, src []byte) { c.enc.EncryptBlock(dst, src) }

func (c *aesCipher) Decrypt(dst, src []byte) { c.dec.DecryptBlock(dst, src) }
