// Package dualec is the public entry point to the Dual_EC_DRBG generator and
// the backdoor state-recovery attack against it.
package dualec

import (
	"context"
	"math/big"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
	"github.com/smallyu/go-dualec/internal/crypto/field"
	"github.com/smallyu/go-dualec/internal/protocol/backdoor"
	"github.com/smallyu/go-dualec/internal/protocol/drbg"
)

type (
	// Curve is a short Weierstrass curve y^2 = x^3 + ax + b over GF(p).
	Curve = curves.Curve

	// Point is either Infinity or an *Affine point.
	Point  = curves.Point
	Affine = curves.Affine

	Generator  = drbg.Generator
	Truncation = drbg.Truncation

	// Config controls a recovery run.
	Config = backdoor.Config
	Result = backdoor.Result
)

// Errors callers are expected to match with errors.Is.
var (
	ErrNonInvertible       = field.ErrNonInvertible
	ErrUnsupportedModulus  = field.ErrUnsupportedModulus
	ErrCurveMismatch       = curves.ErrCurveMismatch
	ErrPointNotOnCurve     = drbg.ErrPointNotOnCurve
	ErrNotValidated        = drbg.ErrNotValidated
	ErrInvalidState        = drbg.ErrInvalidState
	ErrInvalidOutput       = drbg.ErrInvalidOutput
	ErrTruncationInvariant = drbg.ErrTruncationInvariant
	ErrInputTooLarge       = backdoor.ErrInputTooLarge
)

// DefaultTruncation keeps 240 of 256 bits.
var DefaultTruncation = drbg.DefaultTruncation

// NewCurve returns the curve y^2 = x^3 + ax + b over GF(p). p must be an odd
// prime; it is not checked.
func NewCurve(a, b, p *big.Int) *Curve {
	return curves.New(a, b, p)
}

// NewPoint returns the affine point (x, y) on curve. Membership is not
// checked until a Generator validates it.
func NewPoint(curve *Curve, x, y *big.Int) *Affine {
	return curves.NewPoint(curve, x, y)
}

func Infinity() Point {
	return curves.Infinity{}
}

// NISTP256 returns P-256 with the standard Dual_EC_DRBG points P and Q.
func NISTP256() (*Curve, *Affine, *Affine) {
	c := curves.P256()
	p, q := curves.DualECP256Points(c)
	return c, p, q
}

// NamedCurve returns a preset curve ("p256" or "secp256k1") and its base
// point.
func NamedCurve(name string) (*Curve, *Affine, error) {
	return curves.ByName(name)
}

// NewGenerator returns an unvalidated generator seeded with seed. Validate
// must succeed before Rand is called.
func NewGenerator(seed *big.Int, p, q Point, curve *Curve) *Generator {
	return drbg.New(seed, p, q, curve)
}

// NewGeneratorWithTruncation is NewGenerator with a non-default output
// truncation.
func NewGeneratorWithTruncation(seed *big.Int, p, q Point, curve *Curve, t Truncation) *Generator {
	return drbg.NewWithTruncation(seed, p, q, curve, t)
}

// Instantiate returns a validated generator whose seed is derived from
// entropy, nonce and personalization with Hash_df.
func Instantiate(entropy, nonce, personalization []byte, p, q Point, curve *Curve, t Truncation) (*Generator, error) {
	seed := DeriveSeed(uint(curve.P().BitLen()), entropy, nonce, personalization)
	g := drbg.NewWithTruncation(seed, p, q, curve, t)
	if err := g.Validate(); err != nil {
		return nil, newFault("instantiate", err)
	}
	return g, nil
}

// DeriveSeed runs Hash_df over SHA-256 on the inputs and returns the
// leftmost seedLen bits.
func DeriveSeed(seedLen uint, inputs ...[]byte) *big.Int {
	return drbg.DeriveSeed(seedLen, inputs...)
}

// Backdoor returns P = dQ. Whoever knows d can recover the state of a
// generator built on (P, Q) from two of its outputs.
func Backdoor(curve *Curve, q Point, d *big.Int) (Point, error) {
	p, err := curve.ScalarMult(q, d)
	if err != nil {
		return nil, newFault("backdoor", err)
	}
	if p.IsInfinity() {
		return nil, newFault("backdoor", ErrInvalidState)
	}
	return p, nil
}

// Recover returns the sorted candidate states of a generator with P = dQ
// after it emitted the consecutive default-truncation outputs r1 and r2. The
// state that produced r2 is always among them.
func Recover(ctx context.Context, r1, r2, d *big.Int, q Point, curve *Curve) ([]*big.Int, error) {
	res, err := RecoverWith(ctx, r1, r2, d, q, curve, nil)
	if err != nil {
		return nil, err
	}
	return res.States, nil
}

// RecoverWith is Recover with an explicit configuration, returning the full
// scan result. A nil cfg uses the default truncation on every CPU.
func RecoverWith(ctx context.Context, r1, r2, d *big.Int, q Point, curve *Curve, cfg *Config) (*Result, error) {
	res, err := backdoor.Recover(ctx, r1, r2, d, q, curve, cfg)
	if err != nil {
		return nil, newFault("recover", err)
	}
	return res, nil
}

// Predict returns the n outputs a generator emits after reaching state.
func Predict(state *big.Int, p, q Point, curve *Curve, t Truncation, n int) ([]*big.Int, error) {
	out, err := backdoor.Predict(state, p, q, curve, t, n)
	if err != nil {
		return nil, newFault("predict", err)
	}
	return out, nil
}
