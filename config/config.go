// Package config loads default flag values from an optional TOML file, the
// same BurntSushi/toml-backed pattern the teacher's config package uses for
// its own run configuration, adapted to piper's flag set.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the shape of a piper --config file. Every field is optional and,
// when absent, the CLI's own flag default applies instead.
type File struct {
	Input      string
	URL        string
	Method     string
	Concurrent int
	Timeout    time.Duration
	Insecure   bool
	Listen     string
	JSON       bool
	Plot       string
	TUI        bool
}

// tomlFile mirrors File as TOML decodes it: BurntSushi/toml has no
// built-in time.Duration support, so timeout is read as a Go duration
// string ("5s") and converted after decoding.
type tomlFile struct {
	Input      string `toml:"input"`
	URL        string `toml:"url"`
	Method     string `toml:"method"`
	Concurrent int    `toml:"concurrent"`
	Timeout    string `toml:"timeout"`
	Insecure   bool   `toml:"insecure"`
	Listen     string `toml:"listen"`
	JSON       bool   `toml:"json"`
	Plot       string `toml:"plot"`
	TUI        bool   `toml:"tui"`
}

// Load decodes path as TOML into a File.
func Load(path string) (*File, error) {
	var raw tomlFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}

	f := &File{
		Input:      raw.Input,
		URL:        raw.URL,
		Method:     raw.Method,
		Concurrent: raw.Concurrent,
		Insecure:   raw.Insecure,
		Listen:     raw.Listen,
		JSON:       raw.JSON,
		Plot:       raw.Plot,
		TUI:        raw.TUI,
	}

	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("loading config %q: timeout: %w", path, err)
		}
		f.Timeout = d
	}

	return f, nil
}
