// Package fields splits a raw record into fields on a single separator byte and
// provides 1-indexed, allocation-free access to single fields, ranges, and
// unbounded tails.
package fields

// View is a non-owning view over a record's bytes plus the offsets of every
// separator byte found in it. Fields are 1-indexed: for a record containing
// K separators there are K+1 fields, and requesting field K+2 or higher
// always yields an empty slice.
//
// offsets is strictly increasing and every value lies in [0, len(record)).
type View struct {
	record  []byte
	offsets []int
}

// Parse scans record once, recording the offset of every byte equal to sep.
// hint pre-sizes the offset slice to avoid reallocation when the caller has
// an estimate of the expected field count (0 is a safe default).
func Parse(record []byte, sep byte, hint int) View {
	offsets := make([]int, 0, hint)
	for i, b := range record {
		if b == sep {
			offsets = append(offsets, i)
		}
	}
	return View{record: record, offsets: offsets}
}

// Count returns the number of separators found, i.e. one less than the
// number of addressable fields.
func (v View) Count() int {
	return len(v.offsets)
}

func (v View) start(n int) int {
	if n <= 1 {
		return 0
	}
	idx := n - 2
	if idx >= len(v.offsets) {
		return len(v.record)
	}
	return v.offsets[idx] + 1
}

func (v View) end(n int) int {
	idx := n - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(v.offsets) {
		return len(v.record)
	}
	return v.offsets[idx]
}

// Single returns field n (1-indexed). Fields beyond the last one are empty.
func (v View) Single(n int) []byte {
	if n < 1 {
		n = 1
	}
	return v.record[v.start(n):v.end(n)]
}

// Range returns the bytes spanning fields [lo, hi] inclusive, including any
// interior separator bytes verbatim. The caller must ensure hi >= lo.
func (v View) Range(lo, hi int) []byte {
	if lo < 1 {
		lo = 1
	}
	return v.record[v.start(lo):v.end(hi)]
}

// Unbounded returns the bytes from field lo through the end of the record.
func (v View) Unbounded(lo int) []byte {
	if lo < 1 {
		lo = 1
	}
	return v.record[v.start(lo):len(v.record)]
}
