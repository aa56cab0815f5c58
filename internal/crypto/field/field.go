// Package field implements arithmetic in the prime field GF(p) on top of
// math/big. Every result is normalized into [0, p).
package field

import (
	"errors"
	"math/big"
)

var (
	// ErrNonInvertible is returned when an element shares a factor with p.
	ErrNonInvertible = errors.New("field: element is not invertible")

	// ErrUnsupportedModulus is returned by Sqrt when p mod 4 != 3.
	ErrUnsupportedModulus = errors.New("field: square root requires p = 3 (mod 4)")

	// ErrNonResidue is returned by Sqrt when the input has no square root.
	ErrNonResidue = errors.New("field: element is not a quadratic residue")
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// Field is GF(p) for an odd prime p. Primality is the caller's
// responsibility and is never checked.
type Field struct {
	p *big.Int

	// (p-1)/2, the Euler criterion exponent
	eulerExp *big.Int

	// (p+1)/4, nil unless p = 3 (mod 4)
	sqrtExp *big.Int
}

// New returns the field of integers modulo p.
func New(p *big.Int) *Field {
	f := &Field{p: new(big.Int).Set(p)}

	f.eulerExp = new(big.Int).Sub(f.p, one)
	f.eulerExp.Rsh(f.eulerExp, 1)

	if new(big.Int).Mod(f.p, four).Cmp(three) == 0 {
		f.sqrtExp = new(big.Int).Add(f.p, one)
		f.sqrtExp.Rsh(f.sqrtExp, 2)
	}
	return f
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// SupportsSqrt reports whether Sqrt can be used in this field.
func (f *Field) SupportsSqrt() bool {
	return f.sqrtExp != nil
}

// Reduce returns a mod p. big.Int.Mod is Euclidean, so negative inputs land
// in [0, p) as well.
func (f *Field) Reduce(a *big.Int) *big.Int {
	return new(big.Int).Mod(a, f.p)
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	z := new(big.Int).Add(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	z := new(big.Int).Sub(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	z := new(big.Int).Mul(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Neg(a *big.Int) *big.Int {
	z := new(big.Int).Neg(a)
	return z.Mod(z, f.p)
}

func (f *Field) Square(a *big.Int) *big.Int {
	return f.Mul(a, a)
}

// Exp computes a^e mod p for e >= 0.
func (f *Field) Exp(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(f.Reduce(a), e, f.p)
}

// Inverse computes a^-1 mod p.
func (f *Field) Inverse(a *big.Int) (*big.Int, error) {
	r := f.Reduce(a)
	if r.Sign() == 0 {
		return nil, ErrNonInvertible
	}
	inv := new(big.Int).ModInverse(r, f.p)
	if inv == nil {
		return nil, ErrNonInvertible
	}
	return inv, nil
}

// IsQuadraticResidue applies Euler's criterion. Zero counts as a residue.
func (f *Field) IsQuadraticResidue(a *big.Int) bool {
	r := f.Reduce(a)
	if r.Sign() == 0 {
		return true
	}
	return new(big.Int).Exp(r, f.eulerExp, f.p).Cmp(one) == 0
}

// Sqrt returns both square roots of a, r1 = a^((p+1)/4) and r2 = p - r1.
// Only moduli p = 3 (mod 4) are supported; there is no Tonelli-Shanks
// fallback.
func (f *Field) Sqrt(a *big.Int) (*big.Int, *big.Int, error) {
	if f.sqrtExp == nil {
		return nil, nil, ErrUnsupportedModulus
	}
	r := f.Reduce(a)
	r1 := new(big.Int).Exp(r, f.sqrtExp, f.p)
	if f.Square(r1).Cmp(r) != 0 {
		return nil, nil, ErrNonResidue
	}
	return r1, f.Neg(r1), nil
}
