package record

import (
	"fmt"
	"io"
	"net"
	"time"

	lj "github.com/elastic/go-lumber/lj"
	srv2 "github.com/elastic/go-lumber/server/v2"
)

// LumberSource is an alternate Record Source: instead of a file or stdin,
// records arrive as "message" fields of events shipped over the
// lumberjack wire protocol (the same transport the teacher's log
// ingestion pipeline accepts batches on). Each event's message becomes one
// Record, numbered by the same monotonic id counter a file/stdin Source
// uses.
type LumberSource struct {
	listener    net.Listener
	readTimeout time.Duration
	events      chan *lj.Batch
	server      *srv2.Server

	nextID  uint64
	pending []string
}

// ListenLumber opens a TCP listener at addr and starts accepting
// lumberjack batches. The caller must call Close when done.
func ListenLumber(addr string, readTimeout time.Duration) (*LumberSource, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	ls := &LumberSource{
		listener:    ln,
		readTimeout: readTimeout,
		events:      make(chan *lj.Batch, 256),
	}

	srv, err := srv2.NewWithListener(ln, srv2.Timeout(readTimeout))
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("starting lumberjack server: %w", err)
	}
	ls.server = srv

	go func() {
		for batch := range ls.server.ReceiveChan() {
			ls.events <- batch
			batch.ACK()
		}
		close(ls.events)
	}()

	return ls, nil
}

// Next blocks until a message event is available and returns it as a
// Record, or returns io.EOF once the listener has been closed and drained,
// matching the file/stdin Source's end-of-input signal.
func (ls *LumberSource) Next() (Record, error) {
	for len(ls.pending) == 0 {
		batch, ok := <-ls.events
		if !ok {
			return Record{}, io.EOF
		}
		for _, evt := range batch.Events {
			m, ok := evt.(map[string]interface{})
			if !ok {
				continue
			}
			msg, ok := m["message"].(string)
			if !ok {
				continue
			}
			ls.pending = append(ls.pending, msg)
		}
	}

	msg := ls.pending[0]
	ls.pending = ls.pending[1:]
	ls.nextID++
	return Record{Bytes: []byte(msg), ID: ls.nextID}, nil
}

// Close shuts down the server and listener.
func (ls *LumberSource) Close() error {
	if ls.server != nil {
		ls.server.Close()
	}
	return ls.listener.Close()
}
