package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/smallyu/go-dualec/internal/protocol/backdoor"
	"github.com/smallyu/go-dualec/internal/protocol/drbg"
)

// logWriter implements an io.Writer that outputs to standard error and, once
// initialized, the log rotator. Standard output carries the report.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it will write to the backend.
var (
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is nil unless --logfile was given. It should be closed on
	// shutdown.
	logRotator *rotator.Rotator

	drbgLog = backendLog.Logger("DRBG")
	bkdrLog = backendLog.Logger("BKDR")
	mainLog = backendLog.Logger("MAIN")
)

func init() {
	drbg.UseLogger(drbgLog)
	backdoor.UseLogger(bkdrLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"DRBG": drbgLog,
	"BKDR": bkdrLog,
	"MAIN": mainLog,
}

// initLogRotator starts writing the log to logFile as well, keeping
// up to three rolled files next to it.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// setLogLevels sets every subsystem logger to logLevel, which must name a
// btclog level.
func setLogLevels(logLevel string) error {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}

// logClosure defers an expensive formatting step until the logger actually
// prints the value.
type logClosure func() string

func (c logClosure) String() string {
	return c()
}

func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}
