// Package drbg implements the Dual_EC_DRBG generator over an arbitrary
// short Weierstrass curve.
package drbg

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
)

var (
	ErrPointNotOnCurve     = errors.New("drbg: point is not on the curve")
	ErrNotValidated        = errors.New("drbg: generator has not been validated")
	ErrInvalidState        = errors.New("drbg: state update produced the point at infinity")
	ErrInvalidOutput       = errors.New("drbg: output step produced the point at infinity")
	ErrTruncationInvariant = errors.New("drbg: truncated output exceeds its bit width")
	ErrUnalignedOutput     = errors.New("drbg: output width is not a whole number of bytes")
)

// Status is the lifecycle stage of a Generator.
type Status int

const (
	StatusUninitialized Status = iota
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusActive:
		return "active"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Generator is a Dual_EC_DRBG instance: a curve, the public points P and Q,
// and the secret state s.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	curve *curves.Curve
	p, q  curves.Point
	trunc Truncation

	state  *big.Int
	status Status

	// number of outputs produced so far
	outputs uint64

	// bytes of the last output not yet returned by Read
	pending []byte
}

// New returns an unvalidated generator with the default truncation.
func New(seed *big.Int, p, q curves.Point, curve *curves.Curve) *Generator {
	return NewWithTruncation(seed, p, q, curve, DefaultTruncation)
}

// NewWithTruncation returns an unvalidated generator that truncates outputs
// according to t.
func NewWithTruncation(seed *big.Int, p, q curves.Point, curve *curves.Curve, t Truncation) *Generator {
	return &Generator{
		curve: curve,
		p:     p,
		q:     q,
		trunc: t,
		state: new(big.Int).Set(seed),
	}
}

// Validate checks that P and Q are affine points on the curve and moves the
// generator to StatusActive. On failure the generator stays uninitialized and
// must not be used.
func (g *Generator) Validate() error {
	if err := g.trunc.validate(); err != nil {
		return err
	}
	for _, named := range []struct {
		name string
		pt   curves.Point
	}{{"P", g.p}, {"Q", g.q}} {
		if named.pt == nil || named.pt.IsInfinity() || !g.curve.IsOnCurve(named.pt) {
			return fmt.Errorf("%w: %s = %v", ErrPointNotOnCurve, named.name, named.pt)
		}
	}
	g.status = StatusActive
	log.Debugf("Validated generator on %s (truncation %s)", g.curveName(), g.trunc)
	return nil
}

// Rand advances the state and returns the next truncated output, a value in
// [0, 2^OutLen).
func (g *Generator) Rand() (*big.Int, error) {
	if g.status != StatusActive {
		return nil, ErrNotValidated
	}

	// 1. s = x(s * P)
	sP, err := g.curve.ScalarMult(g.p, g.state)
	if err != nil {
		return nil, fmt.Errorf("drbg: state update: %w", err)
	}
	next, ok := sP.(*curves.Affine)
	if !ok {
		return nil, ErrInvalidState
	}
	g.state = next.X()

	// 2. r = x(s * Q)
	sQ, err := g.curve.ScalarMult(g.q, g.state)
	if err != nil {
		return nil, fmt.Errorf("drbg: output: %w", err)
	}
	r, ok := sQ.(*curves.Affine)
	if !ok {
		return nil, ErrInvalidOutput
	}

	// 3. drop the top bits
	out := g.trunc.Apply(r.X())
	if out.Cmp(g.trunc.Bound()) >= 0 {
		return nil, ErrTruncationInvariant
	}

	g.outputs++
	log.Tracef("Output %d: %x", g.outputs, out)
	return out, nil
}

// Read fills b with generator output. Each step contributes OutLen/8 bytes,
// big-endian; a partially consumed step is carried over to the next call.
func (g *Generator) Read(b []byte) (int, error) {
	if g.trunc.OutLen()%8 != 0 {
		return 0, ErrUnalignedOutput
	}
	blockLen := int(g.trunc.OutLen() / 8)

	n := 0
	for n < len(b) {
		if len(g.pending) == 0 {
			out, err := g.Rand()
			if err != nil {
				return n, err
			}
			g.pending = out.FillBytes(make([]byte, blockLen))
		}
		c := copy(b[n:], g.pending)
		g.pending = g.pending[c:]
		n += c
	}
	return n, nil
}

// State returns a copy of the current internal state.
func (g *Generator) State() *big.Int {
	return new(big.Int).Set(g.state)
}

func (g *Generator) Status() Status {
	return g.status
}

func (g *Generator) Truncation() Truncation {
	return g.trunc
}

// Outputs returns how many outputs Rand has produced.
func (g *Generator) Outputs() uint64 {
	return g.outputs
}

// Details returns a short description of the generator.
func (g *Generator) Details() string {
	return fmt.Sprintf("Dual_EC_DRBG on %s, %s, %d outputs", g.curveName(), g.status, g.outputs)
}

func (g *Generator) curveName() string {
	if g.curve.Name != "" {
		return g.curve.Name
	}
	return fmt.Sprintf("curve(p=%#x)", g.curve.P())
}
