package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
	"github.com/smallyu/go-dualec/pkg/dualec"
)

const (
	defaultCurve      = "p256"
	defaultSeed       = "c49d360886e704936a6678e1139d26b7819f7e90"
	defaultOutputs    = 4
	defaultDrop       = 16
	defaultFormat     = "text"
	defaultDebugLevel = "info"
)

// config defines the command line options for dualec.
type config struct {
	Curve      string `short:"c" long:"curve" description:"Named curve {p256, secp256k1}"`
	Seed       string `short:"s" long:"seed" description:"Initial generator state in hex"`
	Entropy    string `short:"e" long:"entropy" description:"Derive the initial state from this hex entropy with Hash_df instead of --seed"`
	Backdoor   string `short:"d" long:"backdoor" description:"Secret scalar d in hex with P = dQ; random when empty"`
	Outputs    int    `short:"n" long:"outputs" description:"Number of outputs to predict after recovery"`
	Drop       uint   `long:"drop" description:"Bits dropped from each output"`
	Workers    int    `short:"w" long:"workers" description:"Recovery goroutines; 0 uses every CPU"`
	Format     string `short:"f" long:"format" description:"Report format {text, yaml}"`
	LogFile    string `long:"logfile" description:"Also write the log to this file, rotated"`
	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}"`
}

// params is the validated form of config.
type params struct {
	curve   *dualec.Curve
	q       *dualec.Affine
	d       *big.Int
	seed    *big.Int
	trunc   dualec.Truncation
	outputs int
	workers int
	format  string
}

// loadConfig parses args into a config. Help requests are returned as a
// *flags.Error of type flags.ErrHelp.
func loadConfig(args []string) (*config, error) {
	cfg := config{
		Curve:      defaultCurve,
		Seed:       defaultSeed,
		Outputs:    defaultOutputs,
		Drop:       defaultDrop,
		Format:     defaultFormat,
		DebugLevel: defaultDebugLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}
	return &cfg, nil
}

// resolve checks the options and turns them into generator parameters.
func (cfg *config) resolve() (*params, error) {
	curve, q, err := curves.ByName(cfg.Curve)
	if err != nil {
		return nil, err
	}

	// P-256 uses the standard Q; other curves use their base point.
	if curve.Name == curves.NameP256 {
		_, q = curves.DualECP256Points(curve)
	}

	bits := uint(curve.P().BitLen())
	if cfg.Drop == 0 || cfg.Drop >= bits {
		return nil, fmt.Errorf("--drop must be in [1, %d), got %d", bits, cfg.Drop)
	}
	if cfg.Outputs < 1 {
		return nil, fmt.Errorf("--outputs must be positive, got %d", cfg.Outputs)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("--workers must not be negative, got %d", cfg.Workers)
	}

	format := strings.ToLower(cfg.Format)
	if format != "text" && format != "yaml" {
		return nil, fmt.Errorf("unknown --format %q", cfg.Format)
	}

	var seed *big.Int
	if cfg.Entropy != "" {
		entropy, err := hex.DecodeString(strings.TrimPrefix(cfg.Entropy, "0x"))
		if err != nil {
			return nil, fmt.Errorf("bad --entropy: %w", err)
		}
		seed = dualec.DeriveSeed(bits, entropy)
	} else {
		seed, err = parseHex(cfg.Seed, "seed")
		if err != nil {
			return nil, err
		}
	}

	var d *big.Int
	if cfg.Backdoor != "" {
		d, err = parseHex(cfg.Backdoor, "backdoor")
		if err != nil {
			return nil, err
		}
	} else {
		d, err = randomScalar(curve.P())
		if err != nil {
			return nil, err
		}
	}

	return &params{
		curve:   curve,
		q:       q,
		d:       d,
		seed:    seed,
		trunc:   dualec.Truncation{Bits: bits, Drop: cfg.Drop},
		outputs: cfg.Outputs,
		workers: cfg.Workers,
		format:  format,
	}, nil
}

func parseHex(s, name string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(s), "0x"), 16)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("bad --%s: %q is not a positive hex integer", name, s)
	}
	return v, nil
}

// randomScalar returns a uniform d in [2, p).
func randomScalar(p *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(p, big.NewInt(2))
	d, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("cannot draw backdoor scalar: %w", err)
	}
	return d.Add(d, big.NewInt(2)), nil
}
