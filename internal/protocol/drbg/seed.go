package drbg

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// DeriveSeed runs the SP 800-90A Hash_df derivation function over SHA-256
// on the concatenation of inputs and returns the leftmost seedLen bits as an
// integer. For instantiation the inputs are entropy, nonce and
// personalization string, in that order.
func DeriveSeed(seedLen uint, inputs ...[]byte) *big.Int {
	outLen := uint(sha256.Size * 8)
	blocks := (seedLen + outLen - 1) / outLen

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(seedLen))

	temp := make([]byte, 0, blocks*sha256.Size)
	for counter := uint(1); counter <= blocks; counter++ {
		h := sha256.New()
		h.Write([]byte{byte(counter)})
		h.Write(lenBuf[:])
		for _, in := range inputs {
			h.Write(in)
		}
		temp = h.Sum(temp)
	}

	seed := new(big.Int).SetBytes(temp)
	return seed.Rsh(seed, uint(len(temp))*8-seedLen)
}
