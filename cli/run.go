package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ChristianF88/piper/httpclient"
	"github.com/ChristianF88/piper/output"
	"github.com/ChristianF88/piper/pipeline"
	"github.com/ChristianF88/piper/record"
	"github.com/ChristianF88/piper/template"
	"github.com/ChristianF88/piper/tui"
)

// ErrTemplateSyntax tags a URL template that failed to parse (taxonomy tag
// TemplateSyntax): fatal, before the pipeline starts.
var ErrTemplateSyntax = fmt.Errorf("template syntax error")

// ErrIO tags a record source open/read failure (taxonomy tag IO): fatal,
// shuts down the pipeline.
var ErrIO = fmt.Errorf("io error")

// Execute parses cfg.URLTemplate, opens the configured record source, runs
// the request pipeline to completion, and optionally writes a latency plot
// once it finishes. It is the single entry point both the CLI action and
// integration tests drive.
func Execute(cfg Config, stdout, stderr io.Writer) error {
	Logger.Printf("starting run: method=%s concurrent=%d timeout=%s", cfg.Method, cfg.Concurrent, cfg.Timeout)

	tmpl, err := template.Parse(cfg.URLTemplate)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
		Logger.Printf("fatal: %v", err)
		return err
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrIO, err)
		Logger.Printf("fatal: %v", err)
		return err
	}
	defer closeSource()

	client := httpclient.Build(httpclient.Config{Timeout: cfg.Timeout, Insecure: cfg.Insecure})

	var stats *pipeline.Stats
	if cfg.TUI {
		stats = pipeline.NewStats()
	}

	var elapsed []time.Duration
	format := func(r pipeline.ResponseContext) (string, error) {
		if cfg.PlotPath != "" {
			elapsed = append(elapsed, r.Elapsed)
		}
		if !cfg.JSON {
			return r.Body, nil
		}
		var b strings.Builder
		if err := output.WriteJSONLine(&b, r); err != nil {
			return "", err
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}

	driver := &pipeline.Driver{
		Source:     source,
		Template:   tmpl,
		Method:     cfg.Method,
		Separator:  ' ',
		Client:     client,
		Concurrent: cfg.Concurrent,
		Out:        stdout,
		ErrOut:     stderr,
		Format:     format,
		Stats:      stats,
	}

	var dash *tui.Dashboard
	if cfg.TUI {
		dash = tui.NewDashboard(stats)
		go dash.Run() //nolint:errcheck // the dashboard's own event loop error is not actionable here
	}

	runErr := driver.Run(context.Background())

	if dash != nil {
		dash.Stop()
	}

	if runErr != nil {
		err := fmt.Errorf("%w: %v", ErrIO, runErr)
		Logger.Printf("fatal: %v", err)
		return err
	}

	if cfg.PlotPath != "" {
		if err := output.PlotLatencyHistogram(elapsed, cfg.PlotPath); err != nil {
			err = fmt.Errorf("writing latency plot: %w", err)
			Logger.Printf("fatal: %v", err)
			return err
		}
	}

	Logger.Printf("run complete")
	return nil
}

// openSource builds the record.Reader cfg selects: a lumberjack listener,
// a file, or stdin.
func openSource(cfg Config) (record.Reader, func(), error) {
	if cfg.Listen != "" {
		ls, err := record.ListenLumber(cfg.Listen, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return ls, func() { ls.Close() }, nil
	}

	s, err := record.Open(cfg.Input)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
