// Package curves implements affine point arithmetic on short Weierstrass
// curves y^2 = x^3 + ax + b over a prime field.
package curves

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/smallyu/go-dualec/internal/crypto/field"
)

var (
	// ErrCurveMismatch is returned when an operation mixes points of
	// different curves.
	ErrCurveMismatch = errors.New("curves: point belongs to a different curve")

	// ErrNonInvertible is returned when a slope denominator is zero, which
	// only happens for malformed input.
	ErrNonInvertible = errors.New("curves: slope denominator is not invertible")

	// ErrNoPoint is returned by LiftX when x^3 + ax + b is not a square.
	ErrNoPoint = errors.New("curves: no point with the given x-coordinate")
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
	b27   = big.NewInt(27)
)

// Curve is the immutable tuple (a, b, p).
type Curve struct {
	// Name is informational only; it does not take part in Equal.
	Name string

	a, b  *big.Int
	field *field.Field
}

// New returns the curve y^2 = x^3 + ax + b over GF(p). p must be an odd
// prime; this is not verified.
func New(a, b, p *big.Int) *Curve {
	f := field.New(p)
	return &Curve{
		a:     f.Reduce(a),
		b:     f.Reduce(b),
		field: f,
	}
}

// A returns a copy of the a coefficient.
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// B returns a copy of the b coefficient.
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }

// P returns a copy of the field modulus.
func (c *Curve) P() *big.Int { return c.field.Modulus() }

// Field returns the underlying prime field.
func (c *Curve) Field() *field.Field { return c.field }

// Equal compares the defining parameters of two curves.
func (c *Curve) Equal(o *Curve) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.a.Cmp(o.a) == 0 && c.b.Cmp(o.b) == 0 && c.P().Cmp(o.P()) == 0
}

// IsSingular reports whether 4a^3 + 27b^2 = 0 (mod p).
func (c *Curve) IsSingular() bool {
	f := c.field
	a3 := f.Mul(f.Square(c.a), c.a)
	d := f.Add(f.Mul(four, a3), f.Mul(b27, f.Square(c.b)))
	return d.Sign() == 0
}

// RHS evaluates x^3 + ax + b mod p.
func (c *Curve) RHS(x *big.Int) *big.Int {
	f := c.field
	x3 := f.Mul(f.Square(x), x)
	return f.Add(f.Add(x3, f.Mul(c.a, x)), c.b)
}

// LiftX returns the two points (x, y) and (x, -y) on the curve. It needs
// p = 3 (mod 4).
func (c *Curve) LiftX(x *big.Int) (*Affine, *Affine, error) {
	z := c.RHS(x)
	if !c.field.IsQuadraticResidue(z) {
		return nil, nil, ErrNoPoint
	}
	y1, y2, err := c.field.Sqrt(z)
	if err != nil {
		return nil, nil, err
	}
	xr := c.field.Reduce(x)
	return &Affine{curve: c, x: xr, y: y1}, &Affine{curve: c, x: new(big.Int).Set(xr), y: y2}, nil
}

// IsOnCurve reports whether p satisfies the curve equation. Infinity is on
// every curve; an affine point bound to another curve is not.
func (c *Curve) IsOnCurve(p Point) bool {
	switch pt := p.(type) {
	case Infinity:
		return true
	case *Affine:
		if !c.Equal(pt.curve) {
			return false
		}
		return c.field.Square(pt.y).Cmp(c.RHS(pt.x)) == 0
	default:
		panic(fmt.Sprintf("curves: unknown point type %T", p))
	}
}

// Negate returns -p.
func (c *Curve) Negate(p Point) Point {
	switch pt := p.(type) {
	case Infinity:
		return pt
	case *Affine:
		return &Affine{curve: pt.curve, x: new(big.Int).Set(pt.x), y: c.field.Neg(pt.y)}
	default:
		panic(fmt.Sprintf("curves: unknown point type %T", p))
	}
}

func (c *Curve) affine(p Point) (*Affine, bool, error) {
	switch pt := p.(type) {
	case Infinity:
		return nil, true, nil
	case *Affine:
		if !c.Equal(pt.curve) {
			return nil, false, ErrCurveMismatch
		}
		return pt, false, nil
	default:
		panic(fmt.Sprintf("curves: unknown point type %T", p))
	}
}

// Add returns p + q.
func (c *Curve) Add(p, q Point) (Point, error) {
	pa, pInf, err := c.affine(p)
	if err != nil {
		return nil, err
	}
	qa, qInf, err := c.affine(q)
	if err != nil {
		return nil, err
	}
	if pInf {
		return q, nil
	}
	if qInf {
		return p, nil
	}

	f := c.field

	// p and q are inverses
	if pa.x.Cmp(qa.x) == 0 && f.Add(pa.y, qa.y).Sign() == 0 {
		return Infinity{}, nil
	}

	var num, den *big.Int
	if pa.x.Cmp(qa.x) == 0 && pa.y.Cmp(qa.y) == 0 {
		// tangent: (3x^2 + a) / 2y
		num = f.Add(f.Mul(three, f.Square(pa.x)), c.a)
		den = f.Mul(two, pa.y)
	} else {
		// chord: (y2 - y1) / (x2 - x1)
		num = f.Sub(qa.y, pa.y)
		den = f.Sub(qa.x, pa.x)
	}
	inv, err := f.Inverse(den)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNonInvertible, err)
	}
	slope := f.Mul(num, inv)

	x3 := f.Sub(f.Sub(f.Square(slope), pa.x), qa.x)
	y3 := f.Sub(f.Mul(slope, f.Sub(pa.x, x3)), pa.y)

	return &Affine{curve: pa.curve, x: x3, y: y3}, nil
}

// Double returns 2p.
func (c *Curve) Double(p Point) (Point, error) {
	return c.Add(p, p)
}

// ScalarMult returns k*p by LSB-first double-and-add.
//
// k is reduced modulo the field prime p, not the group order, which
// reproduces the reference Dual_EC output sequences.
func (c *Curve) ScalarMult(p Point, k *big.Int) (Point, error) {
	if _, _, err := c.affine(p); err != nil {
		return nil, err
	}
	if k.Sign() == 0 || p.IsInfinity() {
		return Infinity{}, nil
	}
	if k.Cmp(one) == 0 {
		return p, nil
	}

	k = c.field.Reduce(k)

	var (
		result  Point = Infinity{}
		current       = p
		err     error
	)
	n := k.BitLen()
	for i := 0; i < n; i++ {
		if k.Bit(i) == 1 {
			result, err = c.Add(result, current)
			if err != nil {
				return nil, err
			}
		}
		// the doubling after the top bit is never used
		if i == n-1 {
			break
		}
		current, err = c.Double(current)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
