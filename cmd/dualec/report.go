package main

import (
	"fmt"
	"io"
	"math/big"

	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-dualec/pkg/dualec"
)

// report is the outcome of one run. Integers are rendered as 0x-prefixed
// hex.
type report struct {
	Curve      string   `yaml:"curve"`
	Truncation string   `yaml:"truncation"`
	P          string   `yaml:"p"`
	Q          string   `yaml:"q"`
	Observed   []string `yaml:"observed"`
	Scanned    int      `yaml:"scanned"`
	Residues   int      `yaml:"residues"`
	States     []string `yaml:"states"`
	State      string   `yaml:"state,omitempty"`
	Predicted  []string `yaml:"predicted,omitempty"`
	Actual     []string `yaml:"actual"`
	Match      bool     `yaml:"match"`
	Elapsed    string   `yaml:"elapsed"`
}

func newReport(p *params, pub dualec.Point, observed []*big.Int, res *dualec.Result, actual []*big.Int) *report {
	return &report{
		Curve:      p.curve.Name,
		Truncation: p.trunc.String(),
		P:          pub.String(),
		Q:          p.q.String(),
		Observed:   hexInts(observed),
		Scanned:    res.Scanned,
		Residues:   res.Residues,
		States:     hexInts(res.States),
		Actual:     hexInts(actual),
		Elapsed:    res.Elapsed.String(),
	}
}

func (r *report) setMatch(state *big.Int, predicted []*big.Int) {
	r.State = fmt.Sprintf("%#x", state)
	r.Predicted = hexInts(predicted)
	r.Match = true
}

func hexInts(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprintf("%#x", v)
	}
	return out
}

// write renders the report as "yaml" or, for any other format, text.
func (r *report) write(w io.Writer, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "curve:      %s (output %s bits)\n", r.Curve, r.Truncation)
	fmt.Fprintf(w, "P:          %s\n", r.P)
	fmt.Fprintf(w, "Q:          %s\n", r.Q)
	for i, o := range r.Observed {
		fmt.Fprintf(w, "r%d:         %s\n", i+1, o)
	}
	fmt.Fprintf(w, "scanned:    %d candidates, %d on the curve, %s\n", r.Scanned, r.Residues, r.Elapsed)
	for _, s := range r.States {
		fmt.Fprintf(w, "candidate:  %s\n", s)
	}
	if !r.Match {
		_, err := fmt.Fprintf(w, "match:      false\n")
		return err
	}
	fmt.Fprintf(w, "state:      %s\n", r.State)
	for i := range r.Actual {
		fmt.Fprintf(w, "next %d:     %s\n", i+1, r.Predicted[i])
	}
	_, err := fmt.Fprintf(w, "match:      true\n")
	return err
}
