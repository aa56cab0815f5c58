// Command dualec runs a backdoored Dual_EC_DRBG, recovers its state from two
// outputs and checks that the recovered state predicts what comes next.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	flags "github.com/jessevdk/go-flags"
)

func dualecMain() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	if err := setLogLevels(cfg.DebugLevel); err != nil {
		return err
	}
	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile); err != nil {
			return err
		}
		defer logRotator.Close()
	}

	p, err := cfg.resolve()
	if err != nil {
		mainLog.Errorf("%v", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rep, err := run(ctx, p)
	if err != nil {
		mainLog.Errorf("%v", err)
		return err
	}
	if err := rep.write(os.Stdout, p.format); err != nil {
		return err
	}
	if !rep.Match {
		mainLog.Warnf("%v", errNoMatch)
		return errNoMatch
	}
	return nil
}

func main() {
	if err := dualecMain(); err != nil {
		os.Exit(1)
	}
}
