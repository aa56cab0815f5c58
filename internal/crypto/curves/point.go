package curves

import (
	"fmt"
	"math/big"
)

// Point is an element of the group of a short Weierstrass curve.
// It has exactly two variants: Infinity (the group identity) and *Affine.
// The interface is sealed; arithmetic switches on the concrete type.
type Point interface {
	// IsInfinity reports whether the point is the group identity.
	IsInfinity() bool

	// Equal reports whether both points are the same group element.
	// Points on different curves are never equal.
	Equal(other Point) bool

	String() string

	point()
}

// Infinity is the point at infinity.
type Infinity struct{}

func (Infinity) IsInfinity() bool { return true }

func (Infinity) Equal(other Point) bool {
	_, ok := other.(Infinity)
	return ok
}

func (Infinity) String() string { return "Infinity" }

func (Infinity) point() {}

// Affine is a finite point (x, y) bound to one curve.
// Membership on the curve is not checked at construction.
type Affine struct {
	curve *Curve
	x, y  *big.Int
}

// NewPoint returns the affine point (x, y) on c. Coordinates are copied and
// reduced modulo p.
func NewPoint(c *Curve, x, y *big.Int) *Affine {
	return &Affine{
		curve: c,
		x:     c.field.Reduce(x),
		y:     c.field.Reduce(y),
	}
}

// Curve returns the curve the point belongs to.
func (p *Affine) Curve() *Curve { return p.curve }

// X returns a copy of the x-coordinate.
func (p *Affine) X() *big.Int { return new(big.Int).Set(p.x) }

// Y returns a copy of the y-coordinate.
func (p *Affine) Y() *big.Int { return new(big.Int).Set(p.y) }

func (p *Affine) IsInfinity() bool { return false }

func (p *Affine) Equal(other Point) bool {
	o, ok := other.(*Affine)
	if !ok {
		return false
	}
	return p.curve.Equal(o.curve) && p.x.Cmp(o.x) == 0 && p.y.Cmp(o.y) == 0
}

func (p *Affine) String() string {
	return fmt.Sprintf("(%#x, %#x)", p.x, p.y)
}

func (*Affine) point() {}
