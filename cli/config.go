package cli

import (
	"errors"
	"time"
)

// Config is the fully resolved, validated configuration for one piper run,
// whether it came from flags or from a --config file.
type Config struct {
	Input       string
	URLTemplate string
	Method      string
	Concurrent  int
	Timeout     time.Duration
	Insecure    bool
	Listen      string
	JSON        bool
	PlotPath    string
	TUI         bool
}

// Validate checks the parts of Config that every run depends on,
// independent of how the values were sourced.
func (c Config) Validate() error {
	if c.Method == "" {
		return errors.New("method must not be empty")
	}
	if c.Concurrent < 1 {
		return errors.New("concurrent must be >= 1")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	if c.Input != "" && c.Listen != "" {
		return errors.New("input and listen are mutually exclusive record sources")
	}
	return nil
}
