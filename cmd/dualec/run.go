package main

import (
	"context"
	"errors"
	"math/big"

	"github.com/davecgh/go-spew/spew"

	"github.com/smallyu/go-dualec/pkg/dualec"
)

var errNoMatch = errors.New("no recovered state predicts the generator")

// run builds a backdoored generator, observes two outputs, recovers the
// state and checks the predicted outputs against the live generator.
func run(ctx context.Context, p *params) (*report, error) {
	pub, err := dualec.Backdoor(p.curve, p.q, p.d)
	if err != nil {
		return nil, err
	}
	mainLog.Debugf("Backdoor d=%#x gives P=%v", p.d, pub)

	gen := dualec.NewGeneratorWithTruncation(p.seed, pub, p.q, p.curve, p.trunc)
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	r1, err := gen.Rand()
	if err != nil {
		return nil, err
	}
	r2, err := gen.Rand()
	if err != nil {
		return nil, err
	}
	mainLog.Infof("%s; recovering from r1=%#x", gen.Details(), r1)

	res, err := dualec.RecoverWith(ctx, r1, r2, p.d, p.q, p.curve, &dualec.Config{
		Truncation: p.trunc,
		Workers:    p.workers,
	})
	if err != nil {
		return nil, err
	}
	mainLog.Tracef("Matching candidates: %v", newLogClosure(func() string {
		return spew.Sdump(res.Candidates)
	}))

	actual := make([]*big.Int, 0, p.outputs)
	for i := 0; i < p.outputs; i++ {
		r, err := gen.Rand()
		if err != nil {
			return nil, err
		}
		actual = append(actual, r)
	}

	rep := newReport(p, pub, []*big.Int{r1, r2}, res, actual)
	for _, state := range res.States {
		predicted, err := dualec.Predict(state, pub, p.q, p.curve, p.trunc, p.outputs)
		if err != nil {
			return nil, err
		}
		if equalInts(predicted, actual) {
			rep.setMatch(state, predicted)
			break
		}
		mainLog.Debugf("State %#x does not predict the generator", state)
	}
	return rep, nil
}

func equalInts(a, b []*big.Int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}
