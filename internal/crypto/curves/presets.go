package curves

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	NameP256      = "P-256"
	NameSecp256k1 = "secp256k1"
)

// Dual_EC_DRBG point Q for P-256 (NIST SP 800-90A, Appendix A.1.1).
// The matching P is the P-256 base point.
const (
	dualECP256Qx = "c97445f45cdef9f0d3e05e1e585fc297235b82b5be8ff3efca67c59852018192"
	dualECP256Qy = "b28ef557ba31dfcbdd21ac46e2a91e3c304f44cb87058ada2cb815151e610046"
)

func fromParams(name string, a *big.Int, params *elliptic.CurveParams) *Curve {
	c := New(a, params.B, params.P)
	c.Name = name
	return c
}

// P256 returns NIST P-256 (a = -3).
func P256() *Curve {
	params := elliptic.P256().Params()
	return fromParams(NameP256, big.NewInt(-3), params)
}

// P256Generator returns the P-256 base point on c, which must be P256().
func P256Generator(c *Curve) *Affine {
	params := elliptic.P256().Params()
	return NewPoint(c, params.Gx, params.Gy)
}

// DualECP256Points returns the standard Dual_EC_DRBG points (P, Q) on c,
// which must be P256().
func DualECP256Points(c *Curve) (*Affine, *Affine) {
	qx, _ := new(big.Int).SetString(dualECP256Qx, 16)
	qy, _ := new(big.Int).SetString(dualECP256Qy, 16)
	return P256Generator(c), NewPoint(c, qx, qy)
}

// Secp256k1 returns the Koblitz curve used by Bitcoin (a = 0, b = 7).
func Secp256k1() *Curve {
	return fromParams(NameSecp256k1, big.NewInt(0), secp256k1.S256().Params())
}

// Secp256k1Generator returns the secp256k1 base point on c, which must be
// Secp256k1().
func Secp256k1Generator(c *Curve) *Affine {
	params := secp256k1.S256().Params()
	return NewPoint(c, params.Gx, params.Gy)
}

// ByName returns a named curve together with its base point.
func ByName(name string) (*Curve, *Affine, error) {
	switch strings.ToLower(name) {
	case "p256", "p-256", "secp256r1", "prime256v1":
		c := P256()
		return c, P256Generator(c), nil
	case "secp256k1":
		c := Secp256k1()
		return c, Secp256k1Generator(c), nil
	default:
		return nil, nil, fmt.Errorf("curves: unknown curve %q", name)
	}
}
