package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// setupLog routes structured logs to the file named by WHISPERWOOD_LOG.
// The TUI owns the terminal, so without that variable logging is discarded.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)
	log.SetLevel(log.FatalLevel)

	path := os.Getenv("WHISPERWOOD_LOG")
	if path == "" {
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("error setting up logging: %w", err)
	}

	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.Kitchen)
	return f.Close, nil
}
