// Package pipeline implements the three-stage concurrent request pipeline:
// a request-constructor, an in-flight reaper bounded by a concurrency cap,
// and an output sink, linked by bounded channels that propagate
// back-pressure from the sink all the way to the record source.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ChristianF88/piper/fields"
	"github.com/ChristianF88/piper/httpclient"
	"github.com/ChristianF88/piper/record"
	"github.com/ChristianF88/piper/template"
)

// defaultChannelCapacity is the default bound on each of the three
// records/futures/responses queues.
const defaultChannelCapacity = 256

// fieldHint pre-sizes each record's offset slice; most templates reference
// only a handful of fields.
const fieldHint = 8

// RequestContext is constructed once per record and consumed by the HTTP
// client façade. It is never mutated after construction.
type RequestContext struct {
	URL    string
	Method string
	ID     uint64
}

// ResponseContext is constructed when a response is fully received and is
// owned by the output sink.
type ResponseContext struct {
	Request RequestContext
	Status  uint16
	Body    string
	Elapsed time.Duration
}

// Future is a constructed-but-not-yet-awaited unit of work: invoking it
// performs exactly one HTTP call and, on success, pushes the resulting
// ResponseContext onto the responses channel itself.
type Future func() error

// Driver owns the three pipeline stages and drives the record source.
type Driver struct {
	Source    record.Reader
	Template  template.Template
	Method    string
	Separator byte
	Client    *httpclient.Client

	// Concurrent bounds the number of simultaneously in-flight HTTP
	// requests. Zero defaults to 1.
	Concurrent int
	// ChannelCapacity bounds each of the three internal queues. Zero
	// defaults to 256.
	ChannelCapacity int

	Out    io.Writer
	ErrOut io.Writer

	// Format renders a response to the line written to Out. Nil defaults
	// to the decoded response body, exactly as §6 mandates.
	Format LineFormatter

	// Stats, if non-nil, receives live in-flight/success/failure counts
	// for consumers such as the TUI dashboard.
	Stats *Stats
}

// LineFormatter renders one ResponseContext to the line the sink writes.
type LineFormatter func(ResponseContext) (string, error)

func defaultFormatter(r ResponseContext) (string, error) {
	return r.Body, nil
}

// Run drives the record source to completion: it reads every record,
// renders its URL, and feeds the pipeline, then awaits the constructor,
// reaper, and sink in that order. A record-source read error is fatal and
// returned wrapped (taxonomy tag IO); per-request HTTP errors are isolated
// to their record and never returned from Run.
func (d *Driver) Run(ctx context.Context) error {
	capacity := d.ChannelCapacity
	if capacity <= 0 {
		capacity = defaultChannelCapacity
	}
	concurrent := d.Concurrent
	if concurrent <= 0 {
		concurrent = 1
	}

	records := make(chan RequestContext, capacity)
	futures := make(chan Future, capacity)
	responses := make(chan ResponseContext, capacity)

	constructorDone := make(chan struct{})
	reaperDone := make(chan struct{})
	sinkDone := make(chan struct{})

	go func() {
		defer close(constructorDone)
		defer close(futures)
		runConstructor(ctx, records, futures, d.Client, responses, d.Stats)
	}()
	go func() {
		defer close(reaperDone)
		defer close(responses)
		runReaper(futures, concurrent, d.ErrOut)
	}()
	format := d.Format
	if format == nil {
		format = defaultFormatter
	}
	go func() {
		defer close(sinkDone)
		runSink(responses, d.Out, format)
	}()

	var readErr error
readLoop:
	for {
		rec, err := d.Source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("record source: %w", err)
			break
		}

		rc := d.buildRequest(rec)
		select {
		case records <- rc:
		case <-ctx.Done():
			readErr = ctx.Err()
			break readLoop
		}
	}
	close(records)

	<-constructorDone
	<-reaperDone
	<-sinkDone

	return readErr
}

// buildRequest interpolates rec's fields into the URL template using a
// pooled builder, the same reuse pattern the teacher applies to its own
// per-record scratch buffers.
func (d *Driver) buildRequest(rec record.Record) RequestContext {
	fv := fields.Parse(rec.Bytes, d.Separator, fieldHint)

	b := getBuilder()
	defer putBuilder(b)

	// A strings.Builder's Write never fails, so the render error is
	// structurally unreachable here.
	_ = template.Render(d.Template, fv, b)

	return RequestContext{URL: b.String(), Method: d.Method, ID: rec.ID}
}

// runConstructor receives RequestContexts from records and, for each,
// builds (but does not await) a Future, forwarding it to futures. It exits
// once records is closed and drained, or ctx is cancelled.
func runConstructor(ctx context.Context, records <-chan RequestContext, futures chan<- Future, client *httpclient.Client, responses chan<- ResponseContext, stats *Stats) {
	for {
		select {
		case rc, ok := <-records:
			if !ok {
				return
			}
			future := buildFuture(ctx, rc, client, responses, stats)
			select {
			case futures <- future:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// buildFuture closes over everything one HTTP call needs. Calling it
// performs the call and, on success, pushes the ResponseContext onto
// responses; the returned error (if any) is what the reaper logs.
func buildFuture(ctx context.Context, rc RequestContext, client *httpclient.Client, responses chan<- ResponseContext, stats *Stats) Future {
	return func() error {
		if stats != nil {
			stats.markStart(rc.ID)
			defer stats.markDone(rc.ID)
		}

		status, body, elapsed, err := client.Send(ctx, rc.Method, rc.URL)
		if err != nil {
			if stats != nil {
				stats.Failure.Add(1)
			}
			return fmt.Errorf("id=%d %s %s: %w", rc.ID, rc.Method, rc.URL, err)
		}

		if stats != nil {
			stats.Success.Add(1)
		}
		responses <- ResponseContext{Request: rc, Status: uint16(status), Body: body, Elapsed: elapsed}
		return nil
	}
}

// runReaper maintains at most concurrent in-flight futures, continuously
// drawing new ones from futures to refill. Futures complete in no
// particular order. A failing future is logged to errOut with the
// "error! " prefix the output-format contract requires; the pipeline
// continues regardless. It exits once futures is closed and every
// in-flight future has completed.
func runReaper(futures <-chan Future, concurrent int, errOut io.Writer) {
	sem := make(chan struct{}, concurrent)
	var wg sync.WaitGroup

	for future := range futures {
		sem <- struct{}{}
		wg.Add(1)
		go func(f Future) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := f(); err != nil {
				fmt.Fprintf(errOut, "error! %v\n", err)
			}
		}(future)
	}
	wg.Wait()
}

// runSink writes one line per response to out: the string format returns
// (the decoded body by default) followed by '\n'. A response whose format
// call fails is skipped without a line. Writes are line-grained from a
// single goroutine, so lines never interleave.
func runSink(responses <-chan ResponseContext, out io.Writer, format LineFormatter) {
	w := bufio.NewWriter(out)
	defer w.Flush()

	for resp := range responses {
		line, err := format(resp)
		if err != nil {
			continue
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
}
