// Package cli assembles the §6 command-line surface with
// github.com/urfave/cli/v2, the same package-level-flag-vars-into-one-App
// pattern the teacher's cli package uses.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ChristianF88/piper/config"
	urfave "github.com/urfave/cli/v2"
)

var (
	inputFlag = &urfave.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Record source file (omit for stdin)",
	}
	urlFlag = &urfave.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "URL template with {n}, {lo,hi}, {lo,}, {0} and {} field placeholders",
		Value:   "{1}",
	}
	methodFlag = &urfave.StringFlag{
		Name:    "method",
		Aliases: []string{"X"},
		Usage:   "HTTP method",
		Value:   "GET",
	}
	concurrentFlag = &urfave.UintFlag{
		Name:    "concurrent",
		Aliases: []string{"C"},
		Usage:   "Max in-flight requests",
		Value:   1,
	}
	timeoutFlag = &urfave.UintFlag{
		Name:  "timeout",
		Usage: "Per-request timeout in seconds",
		Value: 10,
	}
	insecureFlag = &urfave.BoolFlag{
		Name:    "insecure",
		Aliases: []string{"k"},
		Usage:   "Disable TLS certificate and hostname verification",
	}
	listenFlag = &urfave.StringFlag{
		Name:  "listen",
		Usage: "Accept records over a lumberjack-protocol TCP listener instead of a file or stdin (e.g. ':5044')",
	}
	jsonFlag = &urfave.BoolFlag{
		Name:  "json",
		Usage: "Emit one JSON object per response instead of the bare body",
	}
	plotFlag = &urfave.StringFlag{
		Name:  "plot",
		Usage: "Write an interactive latency histogram to this HTML path when the run completes",
	}
	tuiFlag = &urfave.BoolFlag{
		Name:  "tui",
		Usage: "Show a live dashboard of in-flight/success/failure counts while the pipeline runs",
	}
	configFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Path to a TOML config file (mutually exclusive with the flags above)",
	}
)

// perRunFlags lists every flag that --config is exclusive with.
var perRunFlags = []string{
	"input", "url", "method", "concurrent", "timeout",
	"insecure", "listen", "json", "plot", "tui",
}

// ErrConfig tags a malformed CLI argument or config file (taxonomy tag
// ConfigError): fatal, reported to stderr, non-zero exit.
var ErrConfig = errors.New("config error")

func validateConfigExclusivity(c *urfave.Context) error {
	if !c.IsSet("config") {
		return nil
	}
	for _, name := range perRunFlags {
		if c.IsSet(name) {
			return fmt.Errorf("%w: --config cannot be combined with --%s", ErrConfig, name)
		}
	}
	return nil
}

// resolve builds the effective Config from the --config file if one is
// given, or from the flag values otherwise; the two are never combined.
func resolve(c *urfave.Context) (Config, error) {
	if err := validateConfigExclusivity(c); err != nil {
		return Config{}, err
	}

	if path := c.String("config"); path != "" {
		f, err := config.Load(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		cfg := Config{
			Input:      f.Input,
			URLTemplate: f.URL,
			Method:     f.Method,
			Concurrent: f.Concurrent,
			Timeout:    f.Timeout,
			Insecure:   f.Insecure,
			Listen:     f.Listen,
			JSON:       f.JSON,
			PlotPath:   f.Plot,
			TUI:        f.TUI,
		}
		if cfg.URLTemplate == "" {
			cfg.URLTemplate = "{1}"
		}
		if cfg.Method == "" {
			cfg.Method = "GET"
		}
		if cfg.Concurrent <= 0 {
			cfg.Concurrent = 1
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
		return cfg, nil
	}

	return Config{
		Input:       c.String("input"),
		URLTemplate: c.String("url"),
		Method:      c.String("method"),
		Concurrent:  int(c.Uint("concurrent")),
		Timeout:     time.Duration(c.Uint("timeout")) * time.Second,
		Insecure:    c.Bool("insecure"),
		Listen:      c.String("listen"),
		JSON:        c.Bool("json"),
		PlotPath:    c.String("plot"),
		TUI:         c.Bool("tui"),
	}, nil
}

func run(c *urfave.Context) error {
	cfg, err := resolve(c)
	if err != nil {
		Logger.Printf("fatal: %v", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", ErrConfig, err)
		Logger.Printf("fatal: %v", err)
		return err
	}
	return Execute(cfg, os.Stdout, os.Stderr)
}

// App is the piper command-line application.
var App = &urfave.App{
	Name:  "piper",
	Usage: "fan out parameterised HTTP requests from a stream of records",
	Flags: []urfave.Flag{
		inputFlag, urlFlag, methodFlag, concurrentFlag, timeoutFlag,
		insecureFlag, listenFlag, jsonFlag, plotFlag, tuiFlag, configFlag,
	},
	Action: run,
}
