//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"syscall/js"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
	"github.com/smallyu/go-dualec/pkg/dualec"
)

// Active generators keyed by session ID.
var (
	sessions  = make(map[string]*session)
	nextIndex int
)

type session struct {
	gen   *dualec.Generator
	curve *dualec.Curve
	p, q  dualec.Point
	trunc dualec.Truncation
}

// paramsInput is the JSON shape shared by every export. Integers are hex
// strings so JS never sees a lossy number.
type paramsInput struct {
	Curve    string `json:"curve"`
	Seed     string `json:"seed"`
	Backdoor string `json:"backdoor"`
	Drop     uint   `json:"drop"`
	R1       string `json:"r1"`
	R2       string `json:"r2"`
	State    string `json:"state"`
	Count    int    `json:"count"`
}

func main() {
	c := make(chan struct{})

	fmt.Println("go-dualec WASM initialized")

	js.Global().Set("GoDualEC", map[string]interface{}{
		"NewGenerator": js.FuncOf(NewGenerator),
		"Rand":         js.FuncOf(Rand),
		"Recover":      js.FuncOf(Recover),
		"Predict":      js.FuncOf(Predict),
	})

	<-c
}

// NewGenerator validates a generator and stores it.
// Arguments:
// 0: JSON params {curve, seed, backdoor?, drop?}
// Returns:
// JSON {sessionID, p, details} or an error string
func NewGenerator(this js.Value, args []js.Value) interface{} {
	in, curve, q, trunc, err := parseParams(args)
	if err != nil {
		return errorString(err)
	}
	seed, err := parseHex(in.Seed, "seed")
	if err != nil {
		return errorString(err)
	}
	p, err := publicPoint(in, curve, q)
	if err != nil {
		return errorString(err)
	}

	gen := dualec.NewGeneratorWithTruncation(seed, p, q, curve, trunc)
	if err := gen.Validate(); err != nil {
		return errorString(err)
	}

	nextIndex++
	id := fmt.Sprintf("gen-%d", nextIndex)
	sessions[id] = &session{gen: gen, curve: curve, p: p, q: q, trunc: trunc}

	return marshal(map[string]interface{}{
		"sessionID": id,
		"p":         p.String(),
		"details":   gen.Details(),
	})
}

// Rand returns the next output of a stored generator as hex.
// Arguments:
// 0: Session ID
func Rand(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (sessionID)"
	}
	s, ok := sessions[args[0].String()]
	if !ok {
		return "error: session not found"
	}
	out, err := s.gen.Rand()
	if err != nil {
		return errorString(err)
	}
	return fmt.Sprintf("%#x", out)
}

// Recover runs the state recovery. This blocks the JS event loop for the
// whole scan; use a small drop in the browser.
// Arguments:
// 0: JSON params {curve, backdoor, r1, r2, drop?}
// Returns:
// JSON {states, scanned, residues}
func Recover(this js.Value, args []js.Value) interface{} {
	in, curve, q, trunc, err := parseParams(args)
	if err != nil {
		return errorString(err)
	}
	d, err := parseHex(in.Backdoor, "backdoor")
	if err != nil {
		return errorString(err)
	}
	r1, err := parseHex(in.R1, "r1")
	if err != nil {
		return errorString(err)
	}
	r2, err := parseHex(in.R2, "r2")
	if err != nil {
		return errorString(err)
	}

	res, err := dualec.RecoverWith(context.Background(), r1, r2, d, q, curve,
		&dualec.Config{Truncation: trunc, Workers: 1})
	if err != nil {
		return errorString(err)
	}
	return marshal(map[string]interface{}{
		"states":   hexInts(res.States),
		"scanned":  res.Scanned,
		"residues": res.Residues,
	})
}

// Predict returns the outputs following a recovered state.
// Arguments:
// 0: JSON params {curve, backdoor, state, count, drop?}
func Predict(this js.Value, args []js.Value) interface{} {
	in, curve, q, trunc, err := parseParams(args)
	if err != nil {
		return errorString(err)
	}
	state, err := parseHex(in.State, "state")
	if err != nil {
		return errorString(err)
	}
	p, err := publicPoint(in, curve, q)
	if err != nil {
		return errorString(err)
	}
	count := in.Count
	if count <= 0 {
		count = 1
	}

	outs, err := dualec.Predict(state, p, q, curve, trunc, count)
	if err != nil {
		return errorString(err)
	}
	return marshal(map[string]interface{}{"outputs": hexInts(outs)})
}

// Helpers

func parseParams(args []js.Value) (*paramsInput, *dualec.Curve, dualec.Point, dualec.Truncation, error) {
	var trunc dualec.Truncation
	if len(args) != 1 {
		return nil, nil, nil, trunc, fmt.Errorf("expected 1 argument (jsonParams)")
	}
	var in paramsInput
	if err := json.Unmarshal([]byte(args[0].String()), &in); err != nil {
		return nil, nil, nil, trunc, fmt.Errorf("invalid json: %w", err)
	}
	if in.Curve == "" {
		in.Curve = "p256"
	}
	curve, q, err := curves.ByName(in.Curve)
	if err != nil {
		return nil, nil, nil, trunc, err
	}
	if curve.Name == curves.NameP256 {
		_, q = curves.DualECP256Points(curve)
	}

	trunc = dualec.Truncation{Bits: uint(curve.P().BitLen()), Drop: in.Drop}
	if trunc.Drop == 0 {
		trunc.Drop = dualec.DefaultTruncation.Drop
	}
	return &in, curve, q, trunc, nil
}

// publicPoint returns dQ when a backdoor is given. Without one, P-256 keeps
// its standard P and other curves have no P.
func publicPoint(in *paramsInput, curve *dualec.Curve, q dualec.Point) (dualec.Point, error) {
	if in.Backdoor != "" {
		d, err := parseHex(in.Backdoor, "backdoor")
		if err != nil {
			return nil, err
		}
		return dualec.Backdoor(curve, q, d)
	}
	if curve.Name == curves.NameP256 {
		p, _ := curves.DualECP256Points(curve)
		return p, nil
	}
	return nil, fmt.Errorf("curve %s needs a backdoor to define P", curve.Name)
}

func parseHex(s, name string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(s), "0x"), 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid hex %s %q", name, s)
	}
	return v, nil
}

func hexInts(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprintf("%#x", v)
	}
	return out
}

func errorString(err error) string {
	return fmt.Sprintf("error: %v", err)
}

func marshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return errorString(err)
	}
	return string(b)
}
