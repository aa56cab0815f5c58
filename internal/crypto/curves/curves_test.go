package curves

import (
	"crypto/elliptic"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-dualec/internal/crypto/field"
)

// textbookCurve is y^2 = x^3 + x + 1 over GF(23). Its group has 28 points.
func textbookCurve() *Curve {
	return New(big.NewInt(1), big.NewInt(1), big.NewInt(23))
}

func pt(c *Curve, x, y int64) *Affine {
	return NewPoint(c, big.NewInt(x), big.NewInt(y))
}

// allPoints enumerates every affine point of a small curve.
func allPoints(c *Curve) []Point {
	var out []Point
	p := c.P().Int64()
	for x := int64(0); x < p; x++ {
		for y := int64(0); y < p; y++ {
			candidate := pt(c, x, y)
			if c.IsOnCurve(candidate) {
				out = append(out, candidate)
			}
		}
	}
	return out
}

func mustMult(t *testing.T, c *Curve, p Point, k *big.Int) Point {
	t.Helper()
	r, err := c.ScalarMult(p, k)
	require.NoError(t, err)
	return r
}

func mustAdd(t *testing.T, c *Curve, p, q Point) Point {
	t.Helper()
	r, err := c.Add(p, q)
	require.NoError(t, err)
	return r
}

func assertPoint(t *testing.T, want, got Point) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestTextbookArithmetic(t *testing.T) {
	c := textbookCurve()
	p := pt(c, 3, 10)
	q := pt(c, 9, 7)
	require.True(t, c.IsOnCurve(p))
	require.True(t, c.IsOnCurve(q))

	assertPoint(t, pt(c, 17, 20), mustAdd(t, c, p, q))

	d, err := c.Double(p)
	require.NoError(t, err)
	assertPoint(t, pt(c, 7, 12), d)

	assert.Len(t, allPoints(c), 27)
}

func TestIdentityLaws(t *testing.T) {
	c := textbookCurve()
	for _, p := range allPoints(c) {
		assertPoint(t, p, mustAdd(t, c, Infinity{}, p))
		assertPoint(t, p, mustAdd(t, c, p, Infinity{}))
		assertPoint(t, Infinity{}, mustMult(t, c, p, big.NewInt(0)))
		assertPoint(t, p, mustMult(t, c, p, big.NewInt(1)))
	}
	assertPoint(t, Infinity{}, mustMult(t, c, Infinity{}, big.NewInt(5)))
	assertPoint(t, Infinity{}, mustAdd(t, c, Infinity{}, Infinity{}))
}

func TestInverseLaw(t *testing.T) {
	c := textbookCurve()
	for _, p := range allPoints(c) {
		neg := c.Negate(p)
		require.True(t, c.IsOnCurve(neg))
		assertPoint(t, Infinity{}, mustAdd(t, c, p, neg))
	}
	assertPoint(t, Infinity{}, c.Negate(Infinity{}))
}

func TestClosure(t *testing.T) {
	c := textbookCurve()
	points := allPoints(c)
	for _, p := range points {
		for _, q := range points {
			r := mustAdd(t, c, p, q)
			assert.True(t, c.IsOnCurve(r), "%s + %s = %s", p, q, r)
		}
	}
}

func TestScalarMultMatchesRepeatedAddition(t *testing.T) {
	c := textbookCurve()
	p := pt(c, 3, 10)

	var acc Point = Infinity{}
	for k := int64(0); k < 23; k++ {
		assertPoint(t, acc, mustMult(t, c, p, big.NewInt(k)))
		acc = mustAdd(t, c, acc, p)
	}
}

func TestScalarReducedModFieldPrime(t *testing.T) {
	c := textbookCurve()
	p := pt(c, 3, 10)

	// 23 = 0 and 24 = 1 modulo the field prime, whatever the group order.
	assertPoint(t, Infinity{}, mustMult(t, c, p, big.NewInt(23)))
	assertPoint(t, p, mustMult(t, c, p, big.NewInt(24)))
	assertPoint(t, mustMult(t, c, p, big.NewInt(5)), mustMult(t, c, p, big.NewInt(28)))
}

func TestDistributivity(t *testing.T) {
	c := P256()
	g := P256Generator(c)

	for i := 0; i < 8; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(1<<16))
		require.NoError(t, err)
		k, err := rand.Int(rand.Reader, big.NewInt(1<<16))
		require.NoError(t, err)

		sum := mustMult(t, c, g, new(big.Int).Add(j, k))
		split := mustAdd(t, c, mustMult(t, c, g, j), mustMult(t, c, g, k))
		assertPoint(t, sum, split)
		assert.True(t, c.IsOnCurve(sum))
	}
}

func TestCurveMismatch(t *testing.T) {
	c1 := textbookCurve()
	c2 := New(big.NewInt(2), big.NewInt(3), big.NewInt(23))

	_, err := c1.Add(pt(c1, 3, 10), pt(c2, 3, 10))
	assert.ErrorIs(t, err, ErrCurveMismatch)

	_, err = c1.ScalarMult(pt(c2, 3, 10), big.NewInt(2))
	assert.ErrorIs(t, err, ErrCurveMismatch)

	assert.False(t, c1.IsOnCurve(pt(c2, 3, 10)))

	// equal parameters are the same curve
	twin := textbookCurve()
	r := mustAdd(t, c1, pt(c1, 3, 10), pt(twin, 9, 7))
	assertPoint(t, pt(c1, 17, 20), r)
}

func TestNonInvertibleDenominator(t *testing.T) {
	c := textbookCurve()

	// same x, y not negated: only possible off the curve
	_, err := c.Add(pt(c, 3, 10), pt(c, 3, 5))
	assert.ErrorIs(t, err, ErrNonInvertible)
	assert.ErrorIs(t, err, field.ErrNonInvertible)
}

func TestDoublingTwoTorsion(t *testing.T) {
	// y^2 = x^3 + 1 over GF(23) has the 2-torsion point (-1, 0).
	c := New(big.NewInt(0), big.NewInt(1), big.NewInt(23))
	p := pt(c, 22, 0)
	require.True(t, c.IsOnCurve(p))

	d, err := c.Double(p)
	require.NoError(t, err)
	assert.True(t, d.IsInfinity())
}

func TestSecp256k1AgainstDecred(t *testing.T) {
	c := Secp256k1()
	g := Secp256k1Generator(c)
	require.True(t, c.IsOnCurve(g))
	require.False(t, c.IsSingular())

	ref := secp256k1.S256()
	for i := 0; i < 4; i++ {
		k, err := rand.Int(rand.Reader, ref.Params().N)
		require.NoError(t, err)

		got := mustMult(t, c, g, k)
		x, y := ref.ScalarMult(ref.Params().Gx, ref.Params().Gy, k.Bytes())
		assertPoint(t, NewPoint(c, x, y), got)
	}
}

func TestP256AgainstStdlib(t *testing.T) {
	c := P256()
	g := P256Generator(c)
	require.True(t, c.IsOnCurve(g))
	require.False(t, c.IsSingular())

	ref := elliptic.P256()
	for i := 0; i < 4; i++ {
		k, err := rand.Int(rand.Reader, ref.Params().N)
		require.NoError(t, err)

		got := mustMult(t, c, g, k)
		x, y := ref.ScalarMult(ref.Params().Gx, ref.Params().Gy, k.Bytes())
		assertPoint(t, NewPoint(c, x, y), got)
	}
}

func TestPresets(t *testing.T) {
	c := P256()
	assert.Equal(t, NameP256, c.Name)
	p, q := DualECP256Points(c)
	assert.True(t, c.IsOnCurve(p))
	assert.True(t, c.IsOnCurve(q))
	assert.False(t, p.Equal(q))

	for _, name := range []string{"p256", "P-256", "secp256k1"} {
		curve, base, err := ByName(name)
		require.NoError(t, err)
		assert.True(t, curve.IsOnCurve(base), name)
	}

	_, _, err := ByName("brainpool")
	assert.Error(t, err)

	assert.True(t, New(big.NewInt(0), big.NewInt(0), big.NewInt(23)).IsSingular())
}

func TestLiftX(t *testing.T) {
	c := textbookCurve()

	p1, p2, err := c.LiftX(big.NewInt(3))
	require.NoError(t, err)
	assert.True(t, c.IsOnCurve(p1))
	assert.True(t, c.IsOnCurve(p2))
	assertPoint(t, c.Negate(p1), p2)
	assert.True(t, p1.Equal(pt(c, 3, 10)) || p2.Equal(pt(c, 3, 10)))

	// 2^3 + 2 + 1 = 11 is not a square mod 23
	_, _, err = c.LiftX(big.NewInt(2))
	assert.ErrorIs(t, err, ErrNoPoint)

	// GF(13) has no p = 3 (mod 4) square root
	c13 := New(big.NewInt(1), big.NewInt(1), big.NewInt(13))
	_, _, err = c13.LiftX(big.NewInt(0))
	assert.ErrorIs(t, err, field.ErrUnsupportedModulus)
}

func TestAffineAccessorsCopy(t *testing.T) {
	c := textbookCurve()
	p := pt(c, 3, 10)

	x := p.X()
	x.SetInt64(99)
	assert.Equal(t, int64(3), p.X().Int64())

	// coordinates are reduced on construction
	assertPoint(t, p, pt(c, 26, -13))
}
