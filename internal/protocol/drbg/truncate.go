package drbg

import (
	"fmt"
	"math/big"
)

// Truncation describes how an x-coordinate becomes generator output: the
// value is treated as Bits wide and its top Drop bits are discarded.
type Truncation struct {
	Bits uint
	Drop uint
}

// DefaultTruncation is the P-256 setting: 256-bit coordinates, 16 bits
// dropped, 240 bits of output per step.
var DefaultTruncation = Truncation{Bits: 256, Drop: 16}

// OutLen returns the number of output bits per step.
func (t Truncation) OutLen() uint {
	return t.Bits - t.Drop
}

// Bound returns 2^OutLen, the exclusive upper bound of an output.
func (t Truncation) Bound() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), t.OutLen())
}

// Mask returns 2^OutLen - 1.
func (t Truncation) Mask() *big.Int {
	m := t.Bound()
	return m.Sub(m, big.NewInt(1))
}

// Apply keeps the low OutLen bits of x.
func (t Truncation) Apply(x *big.Int) *big.Int {
	return new(big.Int).And(x, t.Mask())
}

func (t Truncation) validate() error {
	if t.Drop >= t.Bits {
		return fmt.Errorf("drbg: truncation drops %d of %d bits", t.Drop, t.Bits)
	}
	return nil
}

func (t Truncation) String() string {
	return fmt.Sprintf("%d/%d", t.OutLen(), t.Bits)
}

// Truncate applies DefaultTruncation.
func Truncate(x *big.Int) *big.Int {
	return DefaultTruncation.Apply(x)
}
