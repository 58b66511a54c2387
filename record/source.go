// Package record streams newline-delimited records from a file or standard
// input, tagging each with a monotonic id in read order.
package record

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// bufSize matches the buffered-read granularity called for by the record
// source contract (8 KiB).
const bufSize = 8 * 1024

// Reader is anything that yields Records one at a time, terminating the
// sequence with io.EOF. *Source (file/stdin) and *LumberSource (TCP
// lumberjack listener) both satisfy it, so pipeline.Driver can be driven by
// either without caring which.
type Reader interface {
	Next() (Record, error)
}

// Record is one input line (the trailing '\n' stripped, CR left intact)
// plus the 1-based position at which it was read. ID is purely
// observational: the pipeline is not required to emit in ID order.
type Record struct {
	Bytes []byte
	ID    uint64
}

// Source is a finite, non-restartable, synchronous sequence of Records. It
// performs its own buffered reads; callers drive it with Next in a loop.
type Source struct {
	r       *bufio.Reader
	closer  io.Closer
	nextID  uint64
	drained bool
}

// Open returns a Source reading from path, or from os.Stdin if path is
// empty. The returned Source owns the file handle (if any) and must be
// closed with Close once exhausted.
func Open(path string) (*Source, error) {
	if path == "" {
		return &Source{r: bufio.NewReaderSize(os.Stdin, bufSize)}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record source %q: %w", path, err)
	}
	return &Source{r: bufio.NewReaderSize(f, bufSize), closer: f}, nil
}

// FromReader wraps an already-open reader (used by tests).
func FromReader(r io.Reader) *Source {
	return &Source{r: bufio.NewReaderSize(r, bufSize)}
}

// Next returns the next Record, or io.EOF once the source is exhausted. A
// read error other than EOF is returned wrapped so callers can recognize it
// as fatal (taxonomy tag IO).
func (s *Source) Next() (Record, error) {
	if s.drained {
		return Record{}, io.EOF
	}

	line, err := s.r.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			return Record{}, fmt.Errorf("reading record: %w", err)
		}
		s.drained = true
		if len(line) == 0 {
			return Record{}, io.EOF
		}
		// Final, unterminated record.
		s.nextID++
		return Record{Bytes: line, ID: s.nextID}, nil
	}

	line = line[:len(line)-1] // strip '\n'; CR (if any) is left untouched
	s.nextID++
	return Record{Bytes: line, ID: s.nextID}, nil
}

// Close releases the underlying file handle, if any.
func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
