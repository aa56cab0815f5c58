package main

import (
	"bytes"
	"context"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	flags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-dualec/internal/crypto/curves"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultCurve, cfg.Curve)
	assert.Equal(t, uint(defaultDrop), cfg.Drop)

	p, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, curves.NameP256, p.curve.Name)
	_, q := curves.DualECP256Points(p.curve)
	assert.True(t, q.Equal(p.q))
	assert.Equal(t, "240/256", p.trunc.String())
	assert.Equal(t, "text", p.format)

	// no --backdoor draws d at random
	assert.True(t, p.d.Cmp(big.NewInt(2)) >= 0)
	assert.True(t, p.d.Cmp(p.curve.P()) < 0)
}

func TestLoadConfigHelp(t *testing.T) {
	_, err := loadConfig([]string{"--help"})
	var e *flags.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, flags.ErrHelp, e.Type)
}

func TestResolve(t *testing.T) {
	cfg, err := loadConfig([]string{
		"--curve", "secp256k1", "-d", "0xABC", "--entropy", "00112233",
		"--drop", "8", "-n", "2", "--format", "YAML",
	})
	require.NoError(t, err)

	p, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, curves.NameSecp256k1, p.curve.Name)
	assert.True(t, curves.Secp256k1Generator(p.curve).Equal(p.q))
	assert.Equal(t, int64(0xabc), p.d.Int64())
	assert.Equal(t, "yaml", p.format)
	assert.Equal(t, 2, p.outputs)
	assert.LessOrEqual(t, p.seed.BitLen(), 256)
}

func TestResolveRejects(t *testing.T) {
	for _, args := range [][]string{
		{"--curve", "brainpool"},
		{"--drop", "0"},
		{"--drop", "256"},
		{"-n", "0"},
		{"--workers=-1"},
		{"--format", "json"},
		{"--seed", "xyz"},
		{"--seed", "0"},
		{"--entropy", "abc"},
		{"--backdoor=-5"},
	} {
		cfg, err := loadConfig(args)
		require.NoError(t, err, args)
		_, err = cfg.resolve()
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestSetLogLevels(t *testing.T) {
	require.NoError(t, setLogLevels("debug"))
	assert.Error(t, setLogLevels("loud"))
	require.NoError(t, setLogLevels("off"))
}

func TestInitLogRotator(t *testing.T) {
	require.NoError(t, initLogRotator(filepath.Join(t.TempDir(), "logs", "dualec.log")))
	defer func() {
		logRotator.Close()
		logRotator = nil
	}()
	mainLog.Infof("rotator test")
}

func runArgs(t *testing.T, args ...string) *params {
	t.Helper()
	cfg, err := loadConfig(args)
	require.NoError(t, err)
	p, err := cfg.resolve()
	require.NoError(t, err)
	return p
}

func TestRunPredictsP256(t *testing.T) {
	p := runArgs(t, "-d", "1f3c5a7e", "--drop", "4", "-n", "3", "-w", "2")

	rep, err := run(context.Background(), p)
	require.NoError(t, err)
	require.True(t, rep.Match)
	assert.Equal(t, rep.Actual, rep.Predicted)
	assert.Len(t, rep.Observed, 2)
	assert.Contains(t, rep.States, rep.State)

	var text bytes.Buffer
	require.NoError(t, rep.write(&text, "text"))
	assert.Contains(t, text.String(), "match:      true")
	assert.Contains(t, text.String(), rep.State)
}

func TestRunYAMLReport(t *testing.T) {
	p := runArgs(t, "-c", "secp256k1", "-d", "5eed", "--drop", "4", "-n", "1", "-f", "yaml")

	rep, err := run(context.Background(), p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.write(&buf, p.format))

	var decoded report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *rep, decoded)
	assert.True(t, decoded.Match)
	assert.Equal(t, curves.NameSecp256k1, decoded.Curve)
}

func TestRunCancelled(t *testing.T) {
	p := runArgs(t, "-d", "1f3c5a7e", "--drop", "4")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
