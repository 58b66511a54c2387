package record

import (
	"io"
	"strings"
	"testing"
)

func drain(t *testing.T, s *Source) []Record {
	t.Helper()
	var out []Record
	for {
		r, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next() = %v", err)
		}
		out = append(out, r)
	}
}

func TestBasicRecords(t *testing.T) {
	s := FromReader(strings.NewReader("1\n2\n3\n4\n5"))
	recs := drain(t, s)
	if len(recs) != 5 {
		t.Fatalf("got %d records, want 5", len(recs))
	}
	for i, r := range recs {
		want := byte('1' + i)
		if len(r.Bytes) != 1 || r.Bytes[0] != want {
			t.Errorf("record[%d] = %q, want %q", i, r.Bytes, want)
		}
		if r.ID != uint64(i+1) {
			t.Errorf("record[%d].ID = %d, want %d", i, r.ID, i+1)
		}
	}
}

func TestUnterminatedFinalRecord(t *testing.T) {
	s := FromReader(strings.NewReader("a\nb"))
	recs := drain(t, s)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if string(recs[1].Bytes) != "b" {
		t.Errorf("final record = %q, want %q", recs[1].Bytes, "b")
	}
}

func TestEmptyInputYieldsNoRecords(t *testing.T) {
	s := FromReader(strings.NewReader(""))
	recs := drain(t, s)
	if len(recs) != 0 {
		t.Fatalf("got %d records, want 0", len(recs))
	}
}

func TestCRNotStripped(t *testing.T) {
	s := FromReader(strings.NewReader("a\r\nb\r\n"))
	recs := drain(t, s)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if string(recs[0].Bytes) != "a\r" {
		t.Errorf("record[0] = %q, want %q", recs[0].Bytes, "a\r")
	}
}

func TestIDsIncrementMonotonically(t *testing.T) {
	s := FromReader(strings.NewReader("x\ny\nz\n"))
	recs := drain(t, s)
	for i := 1; i < len(recs); i++ {
		if recs[i].ID <= recs[i-1].ID {
			t.Fatalf("IDs not strictly increasing: %v", recs)
		}
	}
}
