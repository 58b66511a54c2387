package cli

import (
	"log"
	"os"
)

// Logger is piper's one lifecycle logger: startup, shutdown, and fatal
// config/template/IO errors go through it, the same standard `log` package
// the teacher's cli.api.go reaches for around its own fatal paths
// (ingestor creation, jail reads, accept failures). Per-request failures
// stay on the `error! `-prefixed fmt.Fprintf path in pipeline.runReaper;
// this logger is only for the run's own lifecycle.
var Logger = log.New(os.Stderr, "piper: ", log.LstdFlags)
