package backdoor

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
	"github.com/smallyu/go-dualec/internal/protocol/drbg"
)

// Clone returns a validated generator whose state is a recovered state.
// Its first output is the one the attacked generator emits after r2.
func Clone(state *big.Int, p, q curves.Point, curve *curves.Curve, t drbg.Truncation) (*drbg.Generator, error) {
	g := drbg.NewWithTruncation(state, p, q, curve, t)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("backdoor: clone: %w", err)
	}
	return g, nil
}

// Predict returns the next n outputs of a generator in the given state.
func Predict(state *big.Int, p, q curves.Point, curve *curves.Curve, t drbg.Truncation, n int) ([]*big.Int, error) {
	g, err := Clone(state, p, q, curve, t)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, 0, n)
	for i := 0; i < n; i++ {
		r, err := g.Rand()
		if err != nil {
			return nil, fmt.Errorf("backdoor: predict output %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
