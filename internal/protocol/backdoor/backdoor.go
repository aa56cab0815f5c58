// Package backdoor recovers the internal state of a Dual_EC_DRBG instance
// from two consecutive outputs, given the scalar d with P = dQ.
package backdoor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
	"github.com/smallyu/go-dualec/internal/crypto/field"
	"github.com/smallyu/go-dualec/internal/protocol/drbg"
)

// ErrInputTooLarge is returned when an output is wider than the truncated
// width, which means the caller passed an untruncated value.
var ErrInputTooLarge = errors.New("backdoor: output wider than the truncated width")

// Config controls a recovery run.
type Config struct {
	// Truncation must match the generator that produced the outputs.
	Truncation drbg.Truncation

	// Workers is the number of goroutines scanning the prefix space.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int
}

// DefaultConfig returns the P-256 truncation and one worker per CPU.
func DefaultConfig() *Config {
	return &Config{Truncation: drbg.DefaultTruncation}
}

// Candidate is an x-coordinate consistent with r1 whose lifted points passed
// verification against r2.
type Candidate struct {
	X *big.Int

	// Points are (X, y) and (X, -y). d*(X, -y) = -(d*(X, y)), so both yield
	// the same state.
	Points [2]*curves.Affine

	// State is x(d*R), the generator state that produced r2.
	State *big.Int
}

// Result is the outcome of a recovery run.
type Result struct {
	// States holds the distinct recovered states in ascending order.
	States []*big.Int

	Candidates []Candidate

	// Scanned counts x-candidates below p; Residues counts those that lift
	// to curve points.
	Scanned  int
	Residues int

	Elapsed time.Duration
}

// Contains reports whether s is among the recovered states.
func (r *Result) Contains(s *big.Int) bool {
	i := sort.Search(len(r.States), func(i int) bool { return r.States[i].Cmp(s) >= 0 })
	return i < len(r.States) && r.States[i].Cmp(s) == 0
}

// EnumerateCandidates returns every value whose truncation is r1:
// (prefix << OutLen) | r1 for each prefix of Drop bits.
func EnumerateCandidates(r1 *big.Int, t drbg.Truncation) ([]*big.Int, error) {
	if err := checkTruncation(t); err != nil {
		return nil, err
	}
	if err := checkOutput(r1, t); err != nil {
		return nil, err
	}
	count := uint64(1) << t.Drop
	out := make([]*big.Int, 0, count)
	for prefix := uint64(0); prefix < count; prefix++ {
		out = append(out, candidate(prefix, r1, t))
	}
	return out, nil
}

// maxDrop bounds the prefix space to something a scan can finish.
const maxDrop = 32

func checkTruncation(t drbg.Truncation) error {
	if t.Drop >= t.Bits || t.Drop > maxDrop {
		return fmt.Errorf("backdoor: cannot enumerate truncation %s (%d bits dropped)", t, t.Drop)
	}
	return nil
}

func checkOutput(r *big.Int, t drbg.Truncation) error {
	if r.Sign() < 0 || uint(r.BitLen()) > t.OutLen() {
		return fmt.Errorf("%w: %d bits, want at most %d", ErrInputTooLarge, r.BitLen(), t.OutLen())
	}
	return nil
}

func candidate(prefix uint64, r1 *big.Int, t drbg.Truncation) *big.Int {
	x := new(big.Int).SetUint64(prefix)
	x.Lsh(x, t.OutLen())
	return x.Or(x, r1)
}

// Recover returns every state consistent with the consecutive outputs r1 and
// r2 of a generator using points P = dQ and Q on curve. The true state (the
// one that produced r2) is always among them.
func Recover(ctx context.Context, r1, r2, d *big.Int, q curves.Point, curve *curves.Curve, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	t := cfg.Truncation
	if err := checkTruncation(t); err != nil {
		return nil, err
	}
	if err := checkOutput(r1, t); err != nil {
		return nil, err
	}
	if err := checkOutput(r2, t); err != nil {
		return nil, err
	}
	if !curve.Field().SupportsSqrt() {
		return nil, fmt.Errorf("backdoor: %w", field.ErrUnsupportedModulus)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	total := uint64(1) << t.Drop
	if uint64(workers) > total {
		workers = int(total)
	}

	start := time.Now()
	log.Infof("Scanning %d candidates with %d workers", total, workers)

	var (
		mu  sync.Mutex
		res = &Result{}
	)
	group, gctx := errgroup.WithContext(ctx)

	// contiguous shards of the prefix space
	chunk := (total + uint64(workers) - 1) / uint64(workers)
	for lo := uint64(0); lo < total; lo += chunk {
		hi := lo + chunk
		if hi > total {
			hi = total
		}
		lo, hi := lo, hi // per-iteration copy (go directive is < 1.22)
		s := &scanner{curve: curve, q: q, d: d, r1: r1, r2: r2, trunc: t}
		group.Go(func() error {
			if err := s.scan(gctx, lo, hi); err != nil {
				return err
			}
			mu.Lock()
			res.Candidates = append(res.Candidates, s.found...)
			res.Scanned += s.scanned
			res.Residues += s.residues
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].X.Cmp(res.Candidates[j].X) < 0
	})
	res.States = distinctStates(res.Candidates)
	res.Elapsed = time.Since(start)

	log.Infof("Scanned %d candidates (%d on the curve), %d states recovered in %v",
		res.Scanned, res.Residues, len(res.States), res.Elapsed)
	return res, nil
}

func distinctStates(cands []Candidate) []*big.Int {
	states := make([]*big.Int, 0, len(cands))
	for _, c := range cands {
		states = append(states, c.State)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Cmp(states[j]) < 0 })

	out := states[:0]
	for i, s := range states {
		if i == 0 || s.Cmp(out[len(out)-1]) != 0 {
			out = append(out, s)
		}
	}
	return out
}

// scanner owns the per-worker counters and matches; the curve, points and
// outputs it reads are shared and never written.
type scanner struct {
	curve  *curves.Curve
	q      curves.Point
	d      *big.Int
	r1, r2 *big.Int
	trunc  drbg.Truncation

	found    []Candidate
	scanned  int
	residues int
}

func (s *scanner) scan(ctx context.Context, lo, hi uint64) error {
	p := s.curve.P()
	f := s.curve.Field()

	for prefix := lo; prefix < hi; prefix++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		x := candidate(prefix, s.r1, s.trunc)
		if x.Cmp(p) >= 0 {
			continue
		}
		s.scanned++

		z := s.curve.RHS(x)
		if !f.IsQuadraticResidue(z) {
			continue
		}
		s.residues++

		y1, y2, err := f.Sqrt(z)
		if err != nil {
			return fmt.Errorf("backdoor: sqrt at x=%#x: %w", x, err)
		}
		r := curves.NewPoint(s.curve, x, y1)
		rNeg := curves.NewPoint(s.curve, x, y2)

		state, ok, err := s.verify(r)
		if err != nil {
			return fmt.Errorf("backdoor: verify x=%#x: %w", x, err)
		}
		if !ok {
			continue
		}
		log.Debugf("Candidate x=%#x matches, state %#x", x, state)
		s.found = append(s.found, Candidate{
			X:      x,
			Points: [2]*curves.Affine{r, rNeg},
			State:  state,
		})
	}
	return nil
}

// verify replays the generator's next step from R using d in place of the
// unknown state: x(d*R) is the next state, and x(Q * that) truncated must
// equal r2.
func (s *scanner) verify(r *curves.Affine) (*big.Int, bool, error) {
	dR, err := s.curve.ScalarMult(r, s.d)
	if err != nil {
		return nil, false, err
	}
	next, ok := dR.(*curves.Affine)
	if !ok {
		return nil, false, nil
	}
	state := next.X()

	product, err := s.curve.ScalarMult(s.q, state)
	if err != nil {
		return nil, false, err
	}
	out, ok := product.(*curves.Affine)
	if !ok {
		return nil, false, nil
	}
	if s.trunc.Apply(out.X()).Cmp(s.r2) != 0 {
		return nil, false, nil
	}
	return state, true, nil
}
