package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ChristianF88/piper/httpclient"
	"github.com/ChristianF88/piper/record"
	"github.com/ChristianF88/piper/template"
)

func newClient(t *testing.T, timeout time.Duration) *httpclient.Client {
	t.Helper()
	return httpclient.Build(httpclient.Config{Timeout: timeout})
}

// S1 — ping/pong at concurrency 1.
func TestPingPongConcurrency1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))
	defer srv.Close()

	tmpl, err := template.Parse(srv.URL + "/ping?id={1}")
	if err != nil {
		t.Fatal(err)
	}

	src := record.FromReader(strings.NewReader("1\n2\n3\n4\n5"))
	var out, errOut bytes.Buffer

	d := &Driver{
		Source:     src,
		Template:   tmpl,
		Method:     "GET",
		Separator:  ' ',
		Client:     newClient(t, 2*time.Second),
		Concurrent: 1,
		Out:        &out,
		ErrOut:     &errOut,
	}

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5: %q", len(lines), out.String())
	}
	for _, l := range lines {
		if l != "pong" {
			t.Errorf("line = %q, want %q", l, "pong")
		}
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}

// S2 — template field interpolation.
func TestFieldInterpolation(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.RequestURI()
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	tmpl, err := template.Parse(srv.URL + "/{2}?values={3}")
	if err != nil {
		t.Fatal(err)
	}

	src := record.FromReader(strings.NewReader("api uuid a,b,c"))
	var out bytes.Buffer

	d := &Driver{
		Source:     src,
		Template:   tmpl,
		Method:     "GET",
		Separator:  ' ',
		Client:     newClient(t, 2*time.Second),
		Concurrent: 1,
		Out:        &out,
		ErrOut:     &bytes.Buffer{},
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotURL != "/uuid?values=a,b,c" {
		t.Errorf("server saw %q, want %q", gotURL, "/uuid?values=a,b,c")
	}
}

// S4 — concurrency reordering tolerated and evidence of parallel execution:
// three requests that sleep for their record's value in milliseconds (30,
// 10, 20) should complete well under 3x the longest sleep when run at
// concurrency 20.
func TestConcurrentExecution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("ms"))
		time.Sleep(time.Duration(n) * time.Millisecond)
		fmt.Fprintf(w, "slept-%d", n)
	}))
	defer srv.Close()

	tmpl, err := template.Parse(srv.URL + "/sleep?ms={1}")
	if err != nil {
		t.Fatal(err)
	}

	src := record.FromReader(strings.NewReader("30\n10\n20"))
	var out bytes.Buffer

	d := &Driver{
		Source:     src,
		Template:   tmpl,
		Method:     "GET",
		Separator:  ' ',
		Client:     newClient(t, 2*time.Second),
		Concurrent: 20,
		Out:        &out,
		ErrOut:     &bytes.Buffer{},
	}

	start := time.Now()
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	if elapsed > 90*time.Millisecond {
		t.Errorf("pipeline took %v, expected well under 3x30ms (evidence of serial execution)", elapsed)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
}

// At no instant are more than `concurrent` requests simultaneously in
// flight.
func TestConcurrencyBound(t *testing.T) {
	var mu sync.Mutex
	current, peak := 0, 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(15 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	tmpl, err := template.Parse(srv.URL + "/x?id={1}")
	if err != nil {
		t.Fatal(err)
	}

	records := make([]string, 40)
	for i := range records {
		records[i] = strconv.Itoa(i)
	}
	src := record.FromReader(strings.NewReader(strings.Join(records, "\n")))
	var out bytes.Buffer

	const concurrency = 4
	d := &Driver{
		Source:     src,
		Template:   tmpl,
		Method:     "GET",
		Separator:  ' ',
		Client:     newClient(t, 2*time.Second),
		Concurrent: concurrency,
		Out:        &out,
		ErrOut:     &bytes.Buffer{},
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > concurrency {
		t.Errorf("peak concurrent requests = %d, want <= %d", peak, concurrency)
	}
}

// Per-request HTTP errors are isolated and never abort the run: successes
// plus failures equal N.
func TestPerRequestErrorsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "2" {
			// Simulate an unreachable endpoint via a connection that is
			// immediately closed without a response.
			hj, ok := w.(http.Hijacker)
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		fmt.Fprintf(w, "body-%s", id)
	}))
	defer srv.Close()

	tmpl, err := template.Parse(srv.URL + "/x?id={1}")
	if err != nil {
		t.Fatal(err)
	}

	src := record.FromReader(strings.NewReader("1\n2\n3"))
	var out, errOut bytes.Buffer

	d := &Driver{
		Source:     src,
		Template:   tmpl,
		Method:     "GET",
		Separator:  ' ',
		Client:     newClient(t, 2*time.Second),
		Concurrent: 1,
		Out:        &out,
		ErrOut:     &errOut,
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	successLines := strings.Count(out.String(), "body-")
	failureLines := strings.Count(errOut.String(), "error! ")
	if successLines+failureLines != 3 {
		t.Errorf("successes(%d) + failures(%d) != 3", successLines, failureLines)
	}
	if successLines != 2 {
		t.Errorf("got %d successes, want 2", successLines)
	}
}
